// cli — терминальный клиент дневника: календарь, список, просмотр и
// редактирование записей поверх diary-service.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pribylovaa/go-diary/internal/client"
	"github.com/pribylovaa/go-diary/internal/form"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/session"
	"github.com/pribylovaa/go-diary/internal/view"
	"github.com/pribylovaa/go-diary/pkg/log"
)

// Backend — всё, что приложению нужно от diary-service. Реализуется client.Client.
type Backend interface {
	form.Repository
	session.Source

	Init(ctx context.Context) error
	Register(ctx context.Context, email, password, displayName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	List(ctx context.Context, userID string) ([]models.Entry, error)
	UploadImage(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error)
}

var _ Backend = (*client.Client)(nil)

var errSignedOut = errors.New("not signed in")

// App — состояние терминального клиента.
type App struct {
	api  Backend
	sess *session.Provider
	loc  *time.Location
	in   *bufio.Reader
	out  io.Writer
	now  func() time.Time

	mu      sync.Mutex
	current models.Day
	public  bool
	model   *view.Model
	// liked — локальные отметки "いいね" по id записи; на сервер не уходят.
	liked map[string]bool
}

// NewApp создаёт приложение. loc == nil — time.Local.
func NewApp(api Backend, loc *time.Location, in io.Reader, out io.Writer) *App {
	if loc == nil {
		loc = time.Local
	}

	a := &App{
		api:  api,
		sess: session.New(api),
		loc:  loc,
		in:   bufio.NewReader(in),
		out:  out,
		now:  time.Now,

		liked: make(map[string]bool),
	}
	a.current = a.today()

	return a
}

// Run восстанавливает сессию и запускает REPL до exit или EOF.
func (a *App) Run(ctx context.Context) {
	a.sess.Start()
	defer a.sess.Close()

	// Смена пользователя сбрасывает загруженные записи.
	stop := a.sess.Watch(func(session.State) {
		a.mu.Lock()
		a.model = nil
		a.liked = make(map[string]bool)
		a.mu.Unlock()
	})
	defer stop()

	if err := a.api.Init(ctx); err != nil {
		log.From(ctx).Warn("session restore failed", "err", err)
		fmt.Fprintf(a.out, "セッションを復元できませんでした: %v\n", err)
	}

	if a.signedIn() {
		fmt.Fprintf(a.out, "ようこそ、%s さん\n", a.userLabel())
		_ = a.Calendar(ctx)
	} else {
		fmt.Fprintln(a.out, "login または register でサインインしてください（help でコマンド一覧）")
	}

	runREPL(ctx, a, a.status, a.in, a.out)
}

func (a *App) today() models.Day {
	return models.DayOf(a.now().In(a.loc))
}

func (a *App) signedIn() bool {
	return a.sess.Current().SignedIn()
}

func (a *App) userLabel() string {
	u := a.sess.Current().User
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

func (a *App) uid() (string, error) {
	u := a.sess.Current().User
	if u == nil {
		fmt.Fprintln(a.out, "ログインが必要です")
		return "", errSignedOut
	}
	return u.UID, nil
}

// status — строка приглашения REPL.
func (a *App) status() string {
	a.mu.Lock()
	cur, public := a.current, a.public
	a.mu.Unlock()

	who := "ゲスト"
	if a.signedIn() {
		who = a.userLabel()
	}

	s := fmt.Sprintf("%s %04d-%02d", who, cur.Year, int(cur.Month))
	if public {
		s += " " + view.VisibilityLabel(true)
	}

	return s
}

// entries возвращает модель текущего пользователя, загружая её при необходимости.
// Ошибка загрузки предлагает повтор.
func (a *App) entries(ctx context.Context) (*view.Model, error) {
	a.mu.Lock()
	m, public := a.model, a.public
	a.mu.Unlock()
	if m != nil {
		return m.WithPublicView(public), nil
	}

	uid, err := a.uid()
	if err != nil {
		return nil, err
	}

	for {
		list, err := a.api.List(ctx, uid)
		if err == nil {
			m = view.New(list, a.loc)
			a.mu.Lock()
			a.model = m
			a.mu.Unlock()
			return m.WithPublicView(public), nil
		}

		log.From(ctx).Warn("load entries failed", "err", err)
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(a.out, "セッションが切れました。もう一度ログインしてください")
			return nil, err
		}

		fmt.Fprintf(a.out, "日記を読み込めませんでした: %v\n", err)
		if !confirm(a.in, "再試行しますか？", a.out) {
			return nil, err
		}
	}
}

func (a *App) invalidate() {
	a.mu.Lock()
	a.model = nil
	a.mu.Unlock()
}

func (a *App) month() models.Day {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
