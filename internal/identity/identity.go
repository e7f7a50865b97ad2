// identity — учётные записи diary-service: регистрация и вход по email/паролю,
// выпуск и проверка токенов доступа, выход с отзывом токена,
// уведомления о смене состояния аутентификации.
//
// Экземпляр Service безопасен для конкурентного использования,
// если переданные хранилища потокобезопасны.
package identity

import (
	"errors"
	"sync"
	"time"

	"github.com/pribylovaa/go-diary/internal/cache"
	"github.com/pribylovaa/go-diary/internal/config"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"
)

var (
	// ErrInvalidEmail — e-mail пустой или некорректного формата. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")
	// ErrWeakPassword — пароль короче минимума. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")
	// ErrEmailTaken — e-mail уже занят. HTTP 409.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCredentials — пара логин/пароль неверна. HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — токен некорректен по формату/подписи. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenRevoked — токен отозван выходом. HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrInternal — ошибка хранилища. HTTP 500.
	ErrInternal = errors.New("internal")
)

// MinPasswordLen — минимальная длина пароля в рунах.
const MinPasswordLen = 6

// Listener получает текущего пользователя; nil означает выход.
type Listener func(user *models.User)

// Service описывает учётные записи и токены.
type Service struct {
	users    storage.UsersStorage
	profiles storage.ProfilesStorage // может быть nil
	revoked  cache.Revocations       // может быть nil: выход без серверного отзыва
	cfg      config.AuthConfig
	now      func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

// New создаёт новый экземпляр Service.
func New(users storage.UsersStorage, profiles storage.ProfilesStorage, cfg config.AuthConfig) *Service {
	return &Service{
		users:     users,
		profiles:  profiles,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		listeners: make(map[int]Listener),
	}
}

// SetRevocations устанавливает список отозванных токенов (опционально).
func (s *Service) SetRevocations(r cache.Revocations) {
	s.revoked = r
}

// OnAuthStateChanged подписывает fn на вход/регистрацию (пользователь) и выход (nil).
// Возвращает функцию отписки; повторный вызов отписки безопасен.
func (s *Service) OnAuthStateChanged(fn func(user *models.User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notify вызывает подписчиков вне блокировки.
func (s *Service) notify(user *models.User) {
	s.mu.Lock()
	snapshot := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		snapshot = append(snapshot, l)
	}
	s.mu.Unlock()

	for _, l := range snapshot {
		var u *models.User
		if user != nil {
			cp := *user
			u = &cp
		}

		l(u)
	}
}
