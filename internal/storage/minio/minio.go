// Package minio реализует storage.ImagesStorage на базе MinIO/S3.
// minio.go — конструктор клиента: нормализует endpoint, настраивает Secure/creds
// и проверяет наличие бакета. images.go — presigned PUT и подтверждение загрузки.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/go-diary/internal/config"
	"github.com/pribylovaa/go-diary/internal/storage"
)

// ImagesStorage — адаптер MinIO для изображений записей.
type ImagesStorage struct {
	s3     config.S3Config
	limits config.ImagesConfig
	client *mclient.Client
}

// New создаёт клиент MinIO и выполняет fail-fast-проверку бакета.
func New(ctx context.Context, s3 config.S3Config, limits config.ImagesConfig) (*ImagesStorage, error) {
	const op = "storage/minio/New"

	endpoint, secure := splitEndpoint(s3.Endpoint)

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(s3.RootUser, s3.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, s3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, s3.Bucket)
	}

	return &ImagesStorage{s3: s3, limits: limits, client: client}, nil
}

// splitEndpoint убирает схему из endpoint и выводит из неё Secure.
func splitEndpoint(raw string) (string, bool) {
	endpoint := raw
	secure := strings.HasPrefix(raw, "https://")

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	return endpoint, secure
}

var _ storage.ImagesStorage = (*ImagesStorage)(nil)
