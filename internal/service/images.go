package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-diary/internal/storage"
	"github.com/pribylovaa/go-diary/pkg/log"
)

// ImageUploadURL выдаёт presigned PUT для изображения записи.
func (s *Service) ImageUploadURL(ctx context.Context, userID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service/images/ImageUploadURL"

	userID = strings.TrimSpace(userID)
	lg := log.From(ctx).With("op", op, "user_id", userID, "content_type", contentType, "content_length", contentLength)

	if s.images == nil {
		lg.Warn("images storage is not configured")
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	if userID == "" {
		lg.Warn("user id is not set")
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	info, err := s.images.UploadURL(ctx, userID, strings.TrimSpace(contentType), contentLength)
	if err != nil {
		return nil, mapStorageErr(ctx, lg, op, "UploadURL", err)
	}

	return info, nil
}

// ConfirmImage подтверждает загрузку и возвращает URL для поля images.
func (s *Service) ConfirmImage(ctx context.Context, userID, key string) (string, error) {
	const op = "service/images/ConfirmImage"

	userID = strings.TrimSpace(userID)
	key = strings.TrimSpace(key)
	lg := log.From(ctx).With("op", op, "user_id", userID, "key", key)

	if s.images == nil {
		lg.Warn("images storage is not configured")
		return "", fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	if userID == "" {
		lg.Warn("user id is not set")
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	if key == "" {
		lg.Warn("invalid argument: empty key")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	u, err := s.images.ConfirmUpload(ctx, userID, key)
	if err != nil {
		return "", mapStorageErr(ctx, lg, op, "ConfirmUpload", err)
	}

	lg.Info("image confirmed")
	return u, nil
}
