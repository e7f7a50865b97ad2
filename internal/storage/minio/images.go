package minio

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/pribylovaa/go-diary/internal/storage"
)

const keyRoot = "entries"

// UploadURL генерирует presigned PUT URL для изображения записи.
// Ключ имеет вид "entries/<userID>/<uuid>.<ext>".
func (s *ImagesStorage) UploadURL(ctx context.Context, userID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "storage/minio/UploadURL"

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	if contentLength <= 0 || contentLength > s.limits.MaxSizeBytes {
		return nil, fmt.Errorf("%s: size %d: %w", op, contentLength, storage.ErrInvalidArgument)
	}

	if !slices.Contains(s.limits.AllowedContentTypes, contentType) {
		return nil, fmt.Errorf("%s: content type %q: %w", op, contentType, storage.ErrInvalidArgument)
	}

	key := path.Join(keyRoot, userID, uuid.NewString()+extFor(contentType))

	u, err := s.client.PresignedPutObject(ctx, s.s3.Bucket, key, s.s3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.UploadInfo{
		UploadURL: u.String(),
		Key:       key,
		Expires:   s.s3.PresignTTL,
		RequiredHeaders: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": fmt.Sprintf("%d", contentLength),
		},
	}, nil
}

// ConfirmUpload подтверждает загрузку по key: объект существует, лежит под
// префиксом пользователя и удовлетворяет ограничениям размера/типа.
func (s *ImagesStorage) ConfirmUpload(ctx context.Context, userID, key string) (string, error) {
	const op = "storage/minio/ConfirmUpload"

	if !ownsKey(userID, key) {
		return "", fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	info, err := s.client.StatObject(ctx, s.s3.Bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		resp := mclient.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if info.Size <= 0 || info.Size > s.limits.MaxSizeBytes {
		return "", fmt.Errorf("%s: size %d: %w", op, info.Size, storage.ErrInvalidArgument)
	}

	if ct := info.ContentType; ct != "" && !slices.Contains(s.limits.AllowedContentTypes, ct) {
		return "", fmt.Errorf("%s: content type %q: %w", op, ct, storage.ErrInvalidArgument)
	}

	return publicURL(s.s3.PublicBaseURL, key), nil
}

// ownsKey: ключ лежит ровно под entries/<userID>/ и не выходит за него.
func ownsKey(userID, key string) bool {
	if strings.TrimSpace(userID) == "" || strings.Contains(key, "..") {
		return false
	}

	prefix := keyRoot + "/" + userID + "/"
	return strings.HasPrefix(key, prefix) && len(key) > len(prefix)
}

// publicURL склеивает публичную базу и ключ; без базы возвращается сам ключ.
func publicURL(base, key string) string {
	if base == "" {
		return key
	}

	return strings.TrimRight(base, "/") + "/" + key
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	default:
		return ""
	}
}
