package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
)

// tokenStore хранит сессию в файле с правами 0600.
type tokenStore struct {
	path string
}

type storedToken struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func newTokenStore(path string) *tokenStore {
	return &tokenStore{path: path}
}

// load возвращает nil без ошибки, если файла нет или он не настроен.
func (s *tokenStore) load() (*models.Token, error) {
	if s.path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}

	if st.Token == "" {
		return nil, nil
	}

	return &models.Token{AccessToken: st.Token, ExpiresAt: st.ExpiresAt, User: st.User}, nil
}

func (s *tokenStore) save(t models.Token) error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	raw, err := json.Marshal(storedToken{Token: t.AccessToken, ExpiresAt: t.ExpiresAt, User: t.User})
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}

	return os.Rename(tmp, s.path)
}

func (s *tokenStore) clear() error {
	if s.path == "" {
		return nil
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}

	return nil
}
