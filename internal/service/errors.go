package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/go-diary/internal/storage"
)

// mapStorageErr переводит ошибку стораджа в сервисную и логирует её.
// Ошибки контекста пробрасываются как есть: транспорт отличает 499/504 от 500.
func mapStorageErr(ctx context.Context, lg *slog.Logger, op, call string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		lg.Info("not found")
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, storage.ErrInvalidArgument):
		lg.Warn("storage rejected argument", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		lg.Warn("context done", "call", call, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	case ctx.Err() != nil:
		lg.Warn("context done", "call", call, "err", ctx.Err())
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		lg.Error("storage error", "call", call, "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}
}
