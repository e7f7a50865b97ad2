// service содержит бизнес-логику diary-service: записи дневника и изображения к ним.
package service

import (
	"errors"

	"github.com/pribylovaa/go-diary/internal/storage"
)

var (
	// ErrNotConfigured — не указан владелец (userID пуст).
	ErrNotConfigured = errors.New("user not configured")
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable — функция не сконфигурирована (например, нет S3).
	ErrUnavailable = errors.New("unavailable")
	// ErrInternal — внутренняя ошибка (стораж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — адаптер репозитория записей.
type Service struct {
	entries storage.EntriesStorage
	images  storage.ImagesStorage
}

// New создаёт сервис. images может быть nil: тогда операции с изображениями
// возвращают ErrUnavailable.
func New(entries storage.EntriesStorage, images storage.ImagesStorage) *Service {
	return &Service{
		entries: entries,
		images:  images,
	}
}
