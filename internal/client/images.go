package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/go-diary/internal/api"
)

// UploadImage загружает изображение в три шага: presign, PUT в хранилище, confirm.
// Возвращает URL для поля images записи.
func (c *Client) UploadImage(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	const op = "client.images.UploadImage"

	var pr api.PresignResponse
	if err := c.do(ctx, http.MethodPost, "/api/images/presign", nil,
		api.PresignRequest{UserID: userID, ContentType: contentType, ContentLength: size}, &pr); err != nil {
		return "", fmt.Errorf("%s: presign: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, pr.UploadURL, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.ContentLength = size
	for k, v := range pr.RequiredHeaders {
		if k == "Content-Length" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: upload: %v: %w", op, err, ErrUnavailable)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: upload status %d: %w", op, resp.StatusCode, ErrServer)
	}

	var cr api.ConfirmResponse
	if err := c.do(ctx, http.MethodPost, "/api/images/confirm", nil,
		api.ConfirmRequest{UserID: userID, Key: pr.Key}, &cr); err != nil {
		return "", fmt.Errorf("%s: confirm: %w", op, err)
	}

	return cr.URL, nil
}
