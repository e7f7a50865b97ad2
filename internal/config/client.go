package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ClientConfig — конфигурация терминального клиента.
type ClientConfig struct {
	Env    string           `yaml:"env" env:"ENV" env-default:"local"`
	API    APIConfig        `yaml:"api"`
	Client HTTPClientConfig `yaml:"client"`
	View   ViewConfig       `yaml:"view"`
}

// APIConfig — адрес diary-service.
type APIConfig struct {
	BaseURL string `yaml:"base_url" env:"DIARY_API_URL" env-default:"http://127.0.0.1:50090"`
}

// HTTPClientConfig — параметры HTTP-клиента.
type HTTPClientConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"DIARY_CLIENT_TIMEOUT" env-default:"10s"`
	// TokenFile — куда сохранять токен между запусками. Пусто: ~/.diary/token.
	TokenFile string `yaml:"token_file" env:"DIARY_TOKEN_FILE"`
}

// ViewConfig — параметры отображения.
type ViewConfig struct {
	// Location — часовой пояс для меток времени (IANA), по умолчанию Local.
	Location string `yaml:"location" env:"DIARY_LOCATION" env-default:"Local"`
}

// Loc возвращает часовой пояс отображения.
func (v ViewConfig) Loc() (*time.Location, error) {
	if v.Location == "" || v.Location == "Local" {
		return time.Local, nil
	}

	return time.LoadLocation(v.Location)
}

// LoadClient загружает конфигурацию клиента по тому же приоритету, что и Load.
func LoadClient(path string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := load(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Client.TokenFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}

		cfg.Client.TokenFile = filepath.Join(home, ".diary", "token")
	}

	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL")
	}

	if c.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be > 0")
	}

	if _, err := c.View.Loc(); err != nil {
		return fmt.Errorf("view.location: %w", err)
	}

	return nil
}
