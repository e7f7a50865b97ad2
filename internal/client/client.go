// client — типизированный HTTP-клиент diary-service для терминального клиента.
//
// Client хранит сессию (токен и пользователя), сохраняет её в файл между
// запусками и публикует изменения через OnAuthStateChanged, поэтому
// подходит как источник для session.Provider. Методы записей совпадают
// по форме с service.Service, поэтому Client годится и как form.Repository.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/pkg/log"
)

// Config — параметры клиента.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	TokenFile string // пусто — сессия живёт только в памяти
}

// Client — HTTP-клиент diary-service.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens *tokenStore

	mu          sync.Mutex
	session     *models.Token
	initialized bool
	nextID      int
	listeners   map[int]func(*models.User)
}

// New создаёт клиента. hc == nil — http.Client с cfg.Timeout.
func New(cfg Config, hc *http.Client) (*Client, error) {
	const op = "client.New"

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, cfg.BaseURL)
	}

	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		base:      base,
		http:      hc,
		tokens:    newTokenStore(cfg.TokenFile),
		listeners: make(map[int]func(*models.User)),
	}, nil
}

// endpoint собирает URL относительно базового адреса.
func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do выполняет запрос: in кодируется в JSON, ответ 2xx декодируется в out.
// Ответ 401 на запрос с токеном завершает локальную сессию.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := c.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s %s: %v: %w", method, path, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			log.From(ctx).Info("session rejected by server", "code", apiErr.Code)
			c.dropSession(ctx)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func decodeError(resp *http.Response) *APIError {
	var env struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}

	out := &APIError{Status: resp.StatusCode}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env); err == nil {
		out.Code = env.Error.Code
		out.Message = env.Error.Message
		out.RequestID = env.Error.RequestID
	}

	if out.Code == "" {
		out.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(resp.StatusCode), " ", "_"))
	}
	if out.Message == "" {
		out.Message = http.StatusText(resp.StatusCode)
	}

	return out
}
