// api — входные/выходные модели REST-поверхности diary-service.
// Общие для HTTP-сервера и терминального клиента.
package api

import (
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
)

// Entry — запись дневника в JSON.
type Entry struct {
	ID        string           `json:"id,omitempty"`
	UserID    string           `json:"userId,omitempty"`
	Date      models.EntryDate `json:"date"`
	Content   string           `json:"content"`
	Images    []string         `json:"images"`
	Tags      []string         `json:"tags"`
	Weather   models.Weather   `json:"weather"`
	Mood      models.Mood      `json:"mood"`
	IsPublic  bool             `json:"isPublic"`
	IsLiked   bool             `json:"isLiked"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
}

// UpdatedData — частичное обновление записи; отсутствующие поля не меняются.
// isLiked принимается ради совместимости с клиентами и игнорируется.
type UpdatedData struct {
	Date     *models.EntryDate `json:"date,omitempty"`
	Content  *string           `json:"content,omitempty"`
	Images   *[]string         `json:"images,omitempty"`
	Tags     *[]string         `json:"tags,omitempty"`
	Weather  *models.Weather   `json:"weather,omitempty"`
	Mood     *models.Mood      `json:"mood,omitempty"`
	IsPublic *bool             `json:"isPublic,omitempty"`
	IsLiked  *bool             `json:"isLiked,omitempty"`
}

// CreateRequest — тело POST /api/diary.
type CreateRequest struct {
	UserID string `json:"userId"`
	Entry  *Entry `json:"entry"`
}

// CreateResponse — ответ POST /api/diary.
type CreateResponse struct {
	Success bool   `json:"success"`
	EntryID string `json:"entryId"`
}

// UpdateRequest — тело PUT /api/diary.
type UpdateRequest struct {
	UserID      string       `json:"userId"`
	EntryID     string       `json:"entryId"`
	UpdatedData *UpdatedData `json:"updatedData"`
}

// UpdateResponse — ответ PUT /api/diary.
type UpdateResponse struct {
	Success bool `json:"success"`
}
