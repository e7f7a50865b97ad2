package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"
	"github.com/pribylovaa/go-diary/pkg/log"
	"github.com/pribylovaa/go-diary/pkg/redact"
	"golang.org/x/crypto/bcrypt"
)

// Register создаёт пользователя, выпускает токен и создаёт профиль.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*models.Token, error) {
	const op = "identity.auth.Register"

	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	normEmail, err := validateEmail(email)
	if err != nil {
		lg.Warn("invalid email")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(password); err != nil {
		lg.Warn("invalid password", "reason", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		lg.Error("bcrypt failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	now := s.now()
	creds := &models.Credentials{
		ID:           uuid.New(),
		Email:        normEmail,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, creds); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Info("email taken")
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("save user failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return s.signIn(ctx, creds.User())
}

// Login выполняет вход по email+пароль.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Token, error) {
	const op = "identity.auth.Login"

	lg := log.From(ctx).With("op", op, "email", redact.Email(email))

	normEmail, err := validateEmail(email)
	if err != nil {
		lg.Warn("invalid email")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if password == "" {
		lg.Warn("empty password")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	creds, err := s.users.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Info("unknown email")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("lookup failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password)) != nil {
		lg.Info("password mismatch")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.signIn(ctx, creds.User())
}

// Logout отзывает токен до момента его истечения и уведомляет подписчиков.
// Без списка отзыва выход только локальный: токен живёт до exp.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "identity.auth.Logout"

	lg := log.From(ctx).With("op", op)

	claims, err := s.parseToken(token)
	if err != nil {
		// Истёкший токен уже недействителен: выход считаем успешным.
		if errors.Is(err, ErrTokenExpired) {
			s.notify(nil)
			return nil
		}

		lg.Warn("invalid token on logout")
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.revoked != nil {
		ttl := claims.ExpiresAt.Time.Sub(s.now())
		if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
			lg.Error("revoke failed", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("signed out", "user_id", claims.Subject)
	s.notify(nil)

	return nil
}

// Verify проверяет токен доступа и возвращает пользователя из его claims.
func (s *Service) Verify(ctx context.Context, token string) (*models.User, error) {
	const op = "identity.auth.Verify"

	claims, err := s.parseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.From(ctx).Error("revocation lookup failed", "op", op, "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}

		if revoked {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
		}
	}

	return claims.user(), nil
}

// signIn выпускает токен, создаёт профиль при первом входе и уведомляет подписчиков.
func (s *Service) signIn(ctx context.Context, user models.User) (*models.Token, error) {
	const op = "identity.auth.signIn"

	lg := log.From(ctx).With("op", op, "user_id", user.UID)

	token, err := s.issueToken(user)
	if err != nil {
		lg.Error("sign token failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.ensureProfile(ctx, user)

	lg.Info("signed in")
	s.notify(&user)

	return token, nil
}

// ensureProfile создаёт профиль; ошибка не мешает входу и только логируется.
func (s *Service) ensureProfile(ctx context.Context, user models.User) {
	if s.profiles == nil {
		return
	}

	created, err := s.profiles.EnsureProfile(ctx, models.ProfileOf(user, s.now()))
	if err != nil {
		log.From(ctx).Error("ensure profile failed", "user_id", user.UID, "err", err)
		return
	}

	if created {
		log.From(ctx).Info("profile created", "user_id", user.UID)
	}
}

// validateEmail проверяет формат email и приводит его к нижнему регистру.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(email), nil
}

// validatePassword: непустой и не короче MinPasswordLen рун.
func validatePassword(pw string) error {
	if pw == "" {
		return ErrEmptyPassword
	}

	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return ErrWeakPassword
	}

	return nil
}
