// session публикует текущего пользователя для остальных компонентов клиента.
//
// Provider подписывается на источник аутентификации один раз и
// ретранслирует последнее состояние {User, Loading} всем наблюдателям.
// Loading истинно до первого уведомления источника и после него
// больше не возвращается в true.
package session

import (
	"context"
	"sync"

	"github.com/pribylovaa/go-diary/internal/models"
)

// Source — источник изменений аутентификации (client.Client, identity.Service).
type Source interface {
	OnAuthStateChanged(fn func(user *models.User)) (unsubscribe func())
}

// State — снимок сессии.
type State struct {
	User    *models.User
	Loading bool
}

// SignedIn сообщает, что пользователь известен.
func (s State) SignedIn() bool { return s.User != nil }

// Provider — наблюдаемая сессия.
// Наблюдатели вызываются по одному, в порядке смены состояния; внутри
// обратного вызова нельзя вызывать Watch и инициировать смену пользователя.
type Provider struct {
	src Source

	// deliver упорядочивает рассылку: держится от записи состояния до
	// последнего вызова наблюдателя. Берётся раньше mu.
	deliver sync.Mutex

	mu          sync.Mutex
	state       State
	started     bool
	closed      bool
	unsubscribe func()
	ready       chan struct{}
	nextID      int
	watchers    map[int]func(State)
}

// New создаёт провайдера в состоянии Loading. Подписка начинается в Start.
func New(src Source) *Provider {
	return &Provider{
		src:      src,
		state:    State{Loading: true},
		ready:    make(chan struct{}),
		watchers: make(map[int]func(State)),
	}
}

// Start подписывается на источник. Повторные вызовы ничего не делают.
func (p *Provider) Start() {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	// Источник может уведомить синхронно, поэтому подписка идёт без блокировки.
	unsub := p.src.OnAuthStateChanged(p.set)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		unsub()
		return
	}
	p.unsubscribe = unsub
	p.mu.Unlock()
}

// Current возвращает текущее состояние.
func (p *Provider) Current() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Wait блокируется до первого уведомления источника или отмены ctx.
func (p *Provider) Wait(ctx context.Context) (State, error) {
	select {
	case <-p.ready:
		return p.Current(), nil
	case <-ctx.Done():
		return p.Current(), ctx.Err()
	}
}

// Watch сразу передаёт fn текущее состояние, а затем каждое изменение.
// Возвращает функцию отмены.
func (p *Provider) Watch(fn func(State)) (cancel func()) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	cur := p.snapshot()
	p.mu.Unlock()

	fn(cur)

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// Close отписывается от источника. Поздние уведомления игнорируются.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	unsub := p.unsubscribe
	p.unsubscribe = nil
	p.watchers = make(map[int]func(State))
	p.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (p *Provider) set(user *models.User) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	if user != nil {
		u := *user
		user = &u
	}

	first := p.state.Loading
	p.state = State{User: user, Loading: false}
	if first {
		close(p.ready)
	}

	cur := p.snapshot()
	fns := make([]func(State), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(cur)
	}
}

// snapshot копирует состояние; вызывается под p.mu.
func (p *Provider) snapshot() State {
	s := p.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
