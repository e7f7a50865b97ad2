// config реализует конфигурацию diary-service и терминального клиента:
// загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	DB       DBConfig      `yaml:"db"`
	Auth     AuthConfig    `yaml:"auth"`
	Redis    RedisConfig   `yaml:"redis"`
	S3       S3Config      `yaml:"s3"`
	Images   ImagesConfig  `yaml:"images"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — общий дедлайн обработки запроса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"5s"`
}

// HTTPConfig — публичный REST-сервер.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — подключение к MongoDB (записи и профили).
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// AuthConfig — учётные записи и токены доступа.
// Пустой DatabaseURL выключает /api/auth/*; тогда Required должен быть false.
type AuthConfig struct {
	DatabaseURL string        `yaml:"db_url"     env:"AUTH_DATABASE_URL"`
	JWTSecret   string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL    time.Duration `yaml:"token_ttl"  env:"TOKEN_TTL" env-default:"24h"`
	Issuer      string        `yaml:"issuer"     env:"ISSUER"    env-default:"diary-service"`
	Audience    string        `yaml:"audience"   env:"AUDIENCE"  env-default:"diary"`
	// Required — маршруты /api/diary требуют bearer-токен.
	Required bool `yaml:"required" env:"AUTH_REQUIRED" env-default:"false"`
}

// Enabled сообщает, что сервис учётных записей сконфигурирован.
func (a AuthConfig) Enabled() bool {
	return strings.TrimSpace(a.DatabaseURL) != ""
}

// RedisConfig — список отозванных токенов. Пустой URL: отзыв только на клиенте.
type RedisConfig struct {
	URL    string `yaml:"url"    env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"diary:revoked:"`
}

// S3Config — MinIO/S3 для изображений записей. Пустой Endpoint выключает /api/images/*.
type S3Config struct {
	Endpoint      string        `yaml:"endpoint"        env:"S3_ENDPOINT"`
	RootUser      string        `yaml:"root_user"       env:"S3_ROOT_USER"`
	RootPassword  string        `yaml:"root_password"   env:"S3_ROOT_PASSWORD"`
	Bucket        string        `yaml:"bucket"          env:"S3_BUCKET"      env-default:"diary"`
	PresignTTL    time.Duration `yaml:"presign_ttl"     env:"S3_PRESIGN_TTL" env-default:"10m"`
	PublicBaseURL string        `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
}

// Enabled сообщает, что хранилище изображений сконфигурировано.
func (s S3Config) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != ""
}

// ImagesConfig — ограничения на загружаемые изображения.
type ImagesConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes"        env:"IMAGES_MAX_SIZE_BYTES" env-default:"5242880"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"IMAGES_ALLOWED_TYPES"  env-default:"image/jpeg,image/png,image/webp"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию сервиса по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// load — общий порядок источников для сервиса и клиента.
func load(path string, dst any) error {
	readFile := func(p string) error {
		if p == "" {
			return fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, dst); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(dst); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}

		return nil
	}

	// 1) Явный путь.
	if path != "" {
		return readFile(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", dst); err != nil {
			return fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(dst); err != nil {
			return fmt.Errorf("failed to overlay env: %w", err)
		}

		return nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(dst); err != nil {
		return fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if strings.TrimSpace(c.DB.URL) == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.Timeouts.Service < 0 {
		return fmt.Errorf("timeouts.service must be >= 0")
	}

	if c.Auth.Required && !c.Auth.Enabled() {
		return fmt.Errorf("auth.required needs auth.db_url")
	}

	if c.Auth.Enabled() {
		if len(c.Auth.JWTSecret) < 16 {
			return fmt.Errorf("auth.jwt_secret must be at least 16 bytes")
		}

		if c.Auth.TokenTTL <= 0 {
			return fmt.Errorf("auth.token_ttl must be > 0")
		}
	}

	if c.S3.Enabled() {
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required")
		}

		if c.S3.PresignTTL <= 0 {
			return fmt.Errorf("s3.presign_ttl must be > 0")
		}

		if c.Images.MaxSizeBytes <= 0 {
			return fmt.Errorf("images.max_size_bytes must be > 0")
		}

		if len(c.Images.AllowedContentTypes) == 0 {
			return fmt.Errorf("images.allowed_content_types must not be empty")
		}
	}

	return nil
}
