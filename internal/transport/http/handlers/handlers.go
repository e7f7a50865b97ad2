package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"
	apierrors "github.com/pribylovaa/go-diary/internal/transport/http/errors"
	"github.com/pribylovaa/go-diary/internal/transport/http/middleware"
)

// Diary — адаптер репозитория записей и изображений (service.Service).
type Diary interface {
	List(ctx context.Context, userID string) ([]models.Entry, error)
	ByDate(ctx context.Context, userID, date string) (*models.Entry, error)
	Create(ctx context.Context, userID string, entry models.Entry) (string, error)
	Update(ctx context.Context, userID, entryID string, patch models.EntryPatch) error
	ImageUploadURL(ctx context.Context, userID, contentType string, contentLength int64) (*storage.UploadInfo, error)
	ConfirmImage(ctx context.Context, userID, key string) (string, error)
}

// Identity — учётные записи (identity.Service).
type Identity interface {
	Register(ctx context.Context, email, password, displayName string) (*models.Token, error)
	Login(ctx context.Context, email, password string) (*models.Token, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*models.User, error)
}

// Handlers агрегирует зависимости хендлеров.
// Identity может быть nil: тогда /api/auth/* отвечают 503.
type Handlers struct {
	Diary        Diary
	Identity     Identity
	AuthRequired bool
}

func New(d Diary, id Identity, authRequired bool) *Handlers {
	return &Handlers{Diary: d, Identity: id, AuthRequired: authRequired}
}

// owner определяет, от чьего имени выполняется запрос.
// Вызывается после валидации тела и параметров.
//   - токен предъявлен, но отклонён — ошибка проверки (401);
//   - есть токен и claimed пуст либо совпадает — владелец из токена;
//   - есть токен, claimed чужой — 403;
//   - токена нет и он обязателен — 401;
//   - токена нет, claimed задан — claimed;
//   - иначе 400.
func (h *Handlers) owner(r *http.Request, claimed string) (string, error) {
	claimed = strings.TrimSpace(claimed)
	u := middleware.UserFrom(r.Context())

	if err := middleware.AuthErrFrom(r.Context()); err != nil {
		return "", err
	}

	switch {
	case u != nil && claimed != "" && claimed != u.UID:
		return "", apierrors.ErrPermissionDenied
	case u != nil:
		return u.UID, nil
	case h.AuthRequired:
		return "", apierrors.ErrUnauthenticated
	case claimed == "":
		return "", fmt.Errorf("user id is required: %w", apierrors.ErrInvalidArgument)
	default:
		return claimed, nil
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// maxBodyBytes — ограничение тела запроса.
const maxBodyBytes = 1 << 20

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и хвост после объекта.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, apierrors.ErrInvalidArgument)
	}

	if dec.More() {
		return fmt.Errorf("decode body: trailing data: %w", apierrors.ErrInvalidArgument)
	}

	return nil
}
