package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/pkg/log"
)

// List возвращает все записи пользователя в порядке хранилища.
//
// Ошибки:
//   - ErrNotConfigured — пустой userID;
//   - ErrInternal — ошибки стораджа.
func (s *Service) List(ctx context.Context, userID string) ([]models.Entry, error) {
	const op = "service/entries/List"

	userID = strings.TrimSpace(userID)
	lg := log.From(ctx).With("op", op, "user_id", userID)

	if userID == "" {
		lg.Warn("user id is not set")
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	entries, err := s.entries.Entries(ctx, userID)
	if err != nil {
		return nil, mapStorageErr(ctx, lg, op, "Entries", err)
	}

	return entries, nil
}

// ByDate возвращает первую запись с date, строго равной строке date.
// Нормализации нет: записи, сохранённые с меткой времени, не находятся.
//
// Ошибки:
//   - ErrNotConfigured — пустой userID;
//   - ErrInvalidArgument — пустая дата;
//   - ErrNotFound — записи нет;
//   - ErrInternal — ошибки стораджа (залогированы).
func (s *Service) ByDate(ctx context.Context, userID, date string) (*models.Entry, error) {
	const op = "service/entries/ByDate"

	userID = strings.TrimSpace(userID)
	lg := log.From(ctx).With("op", op, "user_id", userID, "date", date)

	if userID == "" {
		lg.Warn("user id is not set")
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	if date == "" {
		lg.Warn("invalid argument: empty date")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	entry, err := s.entries.EntryByDate(ctx, userID, date)
	if err != nil {
		return nil, mapStorageErr(ctx, lg, op, "EntryByDate", err)
	}

	return entry, nil
}

// Create сохраняет новую запись владельца userID и возвращает её id.
// ID, UserID, CreatedAt и IsLiked из входа игнорируются.
//
// Ошибки:
//   - ErrNotConfigured — пустой userID;
//   - ErrInvalidArgument — дата не сводится к дню или неизвестные weather/mood;
//   - ErrInternal — ошибки стораджа.
func (s *Service) Create(ctx context.Context, userID string, entry models.Entry) (string, error) {
	const op = "service/entries/Create"

	userID = strings.TrimSpace(userID)
	lg := log.From(ctx).With("op", op, "user_id", userID, "date", entry.Date.String())

	if userID == "" {
		lg.Warn("user id is not set")
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	if err := validateEntry(entry); err != nil {
		lg.Warn("invalid argument", "reason", err.Error())
		return "", fmt.Errorf("%s: %w: %s", op, ErrInvalidArgument, err.Error())
	}

	entry.ID = ""
	entry.IsLiked = false

	id, err := s.entries.CreateEntry(ctx, userID, entry)
	if err != nil {
		return "", mapStorageErr(ctx, lg, op, "CreateEntry", err)
	}

	lg.Info("entry created", "entry_id", id)
	return id, nil
}

// Update меняет только переданные поля записи.
//
// Ошибки:
//   - ErrNotConfigured — пустой userID;
//   - ErrInvalidArgument — пустой entryID, пустой патч, неверные значения;
//   - ErrNotFound — у пользователя нет такой записи;
//   - ErrInternal — ошибки стораджа.
func (s *Service) Update(ctx context.Context, userID, entryID string, patch models.EntryPatch) error {
	const op = "service/entries/Update"

	userID = strings.TrimSpace(userID)
	entryID = strings.TrimSpace(entryID)
	lg := log.From(ctx).With("op", op, "user_id", userID, "entry_id", entryID)

	if userID == "" {
		lg.Warn("user id is not set")
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	if entryID == "" {
		lg.Warn("invalid argument: empty entry id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if patch.IsEmpty() {
		lg.Warn("invalid argument: empty patch")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := validatePatch(patch); err != nil {
		lg.Warn("invalid argument", "reason", err.Error())
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidArgument, err.Error())
	}

	if err := s.entries.UpdateEntry(ctx, userID, entryID, patch); err != nil {
		return mapStorageErr(ctx, lg, op, "UpdateEntry", err)
	}

	lg.Info("entry updated")
	return nil
}

func validateEntry(e models.Entry) error {
	if _, ok := e.Date.Day(nil); !ok {
		return errors.New("date must be a calendar date or a timestamp")
	}

	if !e.Weather.Valid() {
		return fmt.Errorf("unknown weather %q", e.Weather)
	}

	if !e.Mood.Valid() {
		return fmt.Errorf("unknown mood %q", e.Mood)
	}

	return nil
}

func validatePatch(p models.EntryPatch) error {
	if p.Date != nil {
		if _, ok := p.Date.Day(nil); !ok {
			return errors.New("date must be a calendar date or a timestamp")
		}
	}

	if p.Weather != nil && !p.Weather.Valid() {
		return fmt.Errorf("unknown weather %q", *p.Weather)
	}

	if p.Mood != nil && !p.Mood.Valid() {
		return fmt.Errorf("unknown mood %q", *p.Mood)
	}

	return nil
}
