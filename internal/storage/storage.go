package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-diary/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument — нарушены ограничения запроса (тип/размер/ключ).
	ErrInvalidArgument = errors.New("invalid argument")
)

// EntriesStorage описывает операции над записями дневника.
// Все операции ограничены владельцем userID.
type EntriesStorage interface {
	// Entries возвращает все записи пользователя в порядке хранилища.
	Entries(ctx context.Context, userID string) ([]models.Entry, error)

	// EntryByDate возвращает первую запись, у которой date хранится строкой
	// и точно совпадает с date. Записи с датой-меткой времени не находятся.
	// Если записи нет — ErrNotFound.
	EntryByDate(ctx context.Context, userID, date string) (*models.Entry, error)

	// CreateEntry сохраняет запись: проставляет user_id и created_at, возвращает новый id.
	CreateEntry(ctx context.Context, userID string, entry models.Entry) (string, error)

	// UpdateEntry меняет только переданные поля.
	// Некорректный id и чужая запись трактуются как ErrNotFound.
	UpdateEntry(ctx context.Context, userID, entryID string, patch models.EntryPatch) error
}

// ProfilesStorage — документы профилей пользователей.
type ProfilesStorage interface {
	// EnsureProfile создаёт профиль, если его ещё нет. created=true, если документ создан сейчас.
	EnsureProfile(ctx context.Context, p models.Profile) (created bool, err error)
}

// UsersStorage — учётные записи (email + хэш пароля).
type UsersStorage interface {
	// SaveUser создаёт пользователя. Email уже занят — ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.Credentials) error
	// UserByEmail ищет пользователя по email (без учёта регистра). Нет — ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.Credentials, error)
	// UserByID ищет пользователя по id. Нет — ErrNotFound.
	UserByID(ctx context.Context, id uuid.UUID) (*models.Credentials, error)
}

// UploadInfo — информация для клиента о presigned PUT загрузке.
//   - UploadURL: конечная URL для PUT-запроса.
//   - Key: ключ будущего объекта в бакете.
//   - Expires: время жизни подписи.
//   - RequiredHeaders: заголовки, которые клиент обязан передать при PUT.
type UploadInfo struct {
	UploadURL       string
	Key             string
	Expires         time.Duration
	RequiredHeaders map[string]string
}

// ImagesStorage — presigned загрузка изображений записей и подтверждение загрузки.
type ImagesStorage interface {
	// UploadURL валидирует тип и размер и выдаёт presigned PUT.
	UploadURL(ctx context.Context, userID, contentType string, contentLength int64) (*UploadInfo, error)
	// ConfirmUpload проверяет, что объект загружен и принадлежит пользователю.
	// Возвращает URL, который кладётся в images записи.
	ConfirmUpload(ctx context.Context, userID, key string) (string, error)
}
