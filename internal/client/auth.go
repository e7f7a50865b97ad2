package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/go-diary/internal/api"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/pkg/log"
)

// Init восстанавливает сохранённую сессию и проверяет её на сервере.
// После Init подписчики получают первое состояние (пользователь или nil).
// Недоступный сервер не мешает: сессия остаётся локальной до первого 401.
func (c *Client) Init(ctx context.Context) error {
	const op = "client.auth.Init"

	lg := log.From(ctx).With("op", op)

	stored, err := c.tokens.load()
	if err != nil {
		lg.Warn("stored session ignored", "err", err)
		stored = nil
	}

	if stored != nil && !stored.ExpiresAt.IsZero() && time.Now().After(stored.ExpiresAt) {
		lg.Info("stored session expired")
		_ = c.tokens.clear()
		stored = nil
	}

	c.mu.Lock()
	c.session = stored
	c.mu.Unlock()

	if stored != nil {
		var me models.User
		err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &me)
		switch {
		case err == nil:
			c.mu.Lock()
			if c.session != nil {
				c.session.User = me
			}
			c.mu.Unlock()
		case errors.Is(err, ErrUnauthorized):
			// do уже сбросил сессию.
		default:
			lg.Warn("session check failed, keeping local session", "err", err)
		}
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()

	c.notify()
	return nil
}

// Register создаёт учётную запись и открывает сессию.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil,
		api.RegisterRequest{Email: email, Password: password, DisplayName: displayName}, &out); err != nil {
		return nil, err
	}

	return c.openSession(ctx, out.ToModel())
}

// Login открывает сессию по email+паролю.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		api.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}

	return c.openSession(ctx, out.ToModel())
}

// Logout отзывает токен на сервере и закрывает локальную сессию.
// Локальная сессия закрывается даже при ошибке сервера.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}

	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.dropSession(ctx)

	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

// CurrentUser возвращает пользователя сессии или nil.
func (c *Client) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	u := c.session.User
	return &u
}

// Token возвращает токен доступа или пустую строку.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// OnAuthStateChanged подписывает fn на изменения сессии. Если Init уже
// выполнен, fn сразу получает текущее состояние. Возвращает отписку.
func (c *Client) OnAuthStateChanged(fn func(user *models.User)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	ready := c.initialized
	c.mu.Unlock()

	if ready {
		fn(c.CurrentUser())
	}

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) openSession(ctx context.Context, t models.Token) (*models.User, error) {
	c.mu.Lock()
	c.session = &t
	c.initialized = true
	c.mu.Unlock()

	if err := c.tokens.save(t); err != nil {
		log.From(ctx).Warn("session not persisted", "err", err)
	}

	c.notify()

	u := t.User
	return &u, nil
}

func (c *Client) dropSession(ctx context.Context) {
	c.mu.Lock()
	had := c.session != nil
	ready := c.initialized
	c.session = nil
	c.mu.Unlock()

	if err := c.tokens.clear(); err != nil {
		log.From(ctx).Warn("token file not removed", "err", err)
	}

	if had && ready {
		c.notify()
	}
}

// notify вызывает подписчиков вне блокировки.
func (c *Client) notify() {
	c.mu.Lock()
	fns := make([]func(*models.User), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	user := c.CurrentUser()
	for _, fn := range fns {
		fn(user)
	}
}
