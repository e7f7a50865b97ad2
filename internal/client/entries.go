package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-diary/internal/api"
	"github.com/pribylovaa/go-diary/internal/models"
)

// List — все записи пользователя.
func (c *Client) List(ctx context.Context, userID string) ([]models.Entry, error) {
	var out []api.Entry
	if err := c.do(ctx, http.MethodGet, "/api/diary", url.Values{"userId": {userID}}, nil, &out); err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(out))
	for _, e := range out {
		entries = append(entries, e.ToModel())
	}

	return entries, nil
}

// ByDate — запись за дату (точное совпадение строки). Нет записи — ErrNotFound.
func (c *Client) ByDate(ctx context.Context, userID, date string) (*models.Entry, error) {
	var out []api.Entry
	q := url.Values{"userId": {userID}, "date": {date}}
	if err := c.do(ctx, http.MethodGet, "/api/diary", q, nil, &out); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}

	e := out[0].ToModel()
	return &e, nil
}

// Create создаёт запись и возвращает её id.
func (c *Client) Create(ctx context.Context, userID string, entry models.Entry) (string, error) {
	in := api.EntryFromModel(entry)
	in.ID = ""
	in.UserID = ""
	in.CreatedAt = nil
	in.IsLiked = entry.IsLiked

	var out api.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/api/diary", nil, api.CreateRequest{UserID: userID, Entry: &in}, &out); err != nil {
		return "", err
	}

	return out.EntryID, nil
}

// Update применяет частичное обновление.
func (c *Client) Update(ctx context.Context, userID, entryID string, patch models.EntryPatch) error {
	data := api.UpdatedDataFromPatch(patch)

	var out api.UpdateResponse
	return c.do(ctx, http.MethodPut, "/api/diary", nil,
		api.UpdateRequest{UserID: userID, EntryID: entryID, UpdatedData: &data}, &out)
}
