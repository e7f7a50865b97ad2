// errors стандартизирует ответы об ошибках HTTP-слоя diary-service.
// На вход принимает ошибку сервисного слоя (sentinel, обёрнутый через %w),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-diary/internal/identity"
	"github.com/pribylovaa/go-diary/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrInvalidArgument — тело/параметры запроса не прошли разбор на уровне транспорта.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — нет токена там, где он обязателен.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — userId запроса не совпадает с владельцем токена.
	ErrPermissionDenied = errors.New("permission denied")
)

// APIError — единый формат ошибки для клиентов.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type mapping struct {
	target error
	status int
	code   string
	msg    string
}

// table — порядок важен: первое совпадение по errors.Is побеждает.
var table = []mapping{
	{ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrNotConfigured, http.StatusBadRequest, "invalid_argument", "user id is required"},
	{identity.ErrInvalidEmail, http.StatusBadRequest, "invalid_email", "invalid email format"},
	{identity.ErrEmptyPassword, http.StatusBadRequest, "empty_password", "password is required"},
	{identity.ErrWeakPassword, http.StatusBadRequest, "weak_password", "password should be at least 6 characters"},

	{ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "unauthenticated"},
	{identity.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid email or password"},
	{identity.ErrTokenExpired, http.StatusUnauthorized, "token_expired", "token expired"},
	{identity.ErrTokenRevoked, http.StatusUnauthorized, "token_revoked", "token revoked"},
	{identity.ErrInvalidToken, http.StatusUnauthorized, "unauthenticated", "invalid token"},

	{ErrPermissionDenied, http.StatusForbidden, "permission_denied", "permission denied"},
	{service.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
	{identity.ErrEmailTaken, http.StatusConflict, "already_exists", "email already in use"},
	{service.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "service unavailable"},

	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal, чтобы не послать
//     "200 OK" с телом ошибки и не маскировать баг;
//   - известный sentinel — статус из table;
//   - прочее — 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if errors.Is(err, m.target) {
				return m.status, ErrorResponse{Error: APIError{Code: m.code, Message: m.msg}}
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров и мидлваров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
