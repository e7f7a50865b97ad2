package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-diary/internal/models"
	apierrors "github.com/pribylovaa/go-diary/internal/transport/http/errors"
	logctx "github.com/pribylovaa/go-diary/pkg/log"
	"github.com/pribylovaa/go-diary/pkg/redact"
)

// Verifier проверяет токен доступа.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Authenticate извлекает Bearer-токен из Authorization и, если он есть,
// проверяет его через v. Пользователь и "сырой" токен кладутся в контекст.
// Ошибка проверки тоже кладётся в контекст (AuthErrFrom) и отдаётся как 401
// хендлером или RequireUser уже после валидации запроса: 400 важнее 401.
// Запрос без токена проходит дальше анонимно.
// v == nil: заголовок игнорируется.
func Authenticate(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := v.Verify(r.Context(), token)
			if err != nil {
				logctx.From(r.Context()).Info("token rejected", "token", redact.Token(token), "err", err)
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxAuthErr, err)))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, user)
			ctx = context.WithValue(ctx, ctxToken, token)
			ctx = logctx.With(ctx, "user_id", user.UID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser отвечает 401, если Authenticate не положил пользователя в контекст.
// Код ошибки берётся из отклонённого токена, если он был.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := AuthErrFrom(r.Context()); err != nil {
				apierrors.WriteError(w, r, err)
				return
			}
			if UserFrom(r.Context()) == nil {
				apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFrom возвращает аутентифицированного пользователя или nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUser).(*models.User)
	return u
}

// TokenFrom возвращает проверенный токен запроса.
func TokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(ctxToken).(string)
	return t
}

// AuthErrFrom возвращает ошибку проверки предъявленного токена или nil.
func AuthErrFrom(ctx context.Context) error {
	err, _ := ctx.Value(ctxAuthErr).(error)
	return err
}

func bearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
