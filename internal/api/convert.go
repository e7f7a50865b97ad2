package api

import (
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"
)

// EntryFromModel переводит доменную запись в JSON-представление.
// isLiked сервер всегда отдаёт как false.
func EntryFromModel(e models.Entry) Entry {
	out := Entry{
		ID:       e.ID,
		UserID:   e.UserID,
		Date:     e.Date,
		Content:  e.Content,
		Images:   nonNil(e.Images),
		Tags:     nonNil(e.Tags),
		Weather:  e.Weather,
		Mood:     e.Mood,
		IsPublic: e.IsPublic,
	}

	if !e.CreatedAt.IsZero() {
		t := e.CreatedAt.UTC()
		out.CreatedAt = &t
	}

	return out
}

// EntriesFromModel — то же для среза; nil превращается в [].
func EntriesFromModel(in []models.Entry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		out = append(out, EntryFromModel(e))
	}

	return out
}

// ToModel переводит JSON-запись в доменную.
func (e Entry) ToModel() models.Entry {
	out := models.Entry{
		ID:       e.ID,
		UserID:   e.UserID,
		Date:     e.Date,
		Content:  e.Content,
		Images:   nonNil(e.Images),
		Tags:     nonNil(e.Tags),
		Weather:  e.Weather,
		Mood:     e.Mood,
		IsPublic: e.IsPublic,
		IsLiked:  e.IsLiked,
	}

	if e.CreatedAt != nil {
		out.CreatedAt = *e.CreatedAt
	}

	return out
}

// ToPatch переводит UpdatedData в доменный патч. isLiked отбрасывается.
func (u UpdatedData) ToPatch() models.EntryPatch {
	return models.EntryPatch{
		Date:     u.Date,
		Content:  u.Content,
		Images:   u.Images,
		Tags:     u.Tags,
		Weather:  u.Weather,
		Mood:     u.Mood,
		IsPublic: u.IsPublic,
	}
}

// UpdatedDataFromPatch — обратное преобразование для клиента.
func UpdatedDataFromPatch(p models.EntryPatch) UpdatedData {
	return UpdatedData{
		Date:     p.Date,
		Content:  p.Content,
		Images:   p.Images,
		Tags:     p.Tags,
		Weather:  p.Weather,
		Mood:     p.Mood,
		IsPublic: p.IsPublic,
	}
}

func AuthFromModel(t *models.Token) AuthResponse {
	if t == nil {
		return AuthResponse{}
	}

	return AuthResponse{
		Token:     t.AccessToken,
		ExpiresAt: t.ExpiresAt.UTC().Unix(),
		User:      t.User,
	}
}

// ToModel — обратное преобразование для клиента.
func (a AuthResponse) ToModel() models.Token {
	return models.Token{
		AccessToken: a.Token,
		ExpiresAt:   time.Unix(a.ExpiresAt, 0).UTC(),
		User:        a.User,
	}
}

func PresignFromStorage(info *storage.UploadInfo) PresignResponse {
	if info == nil {
		return PresignResponse{}
	}

	return PresignResponse{
		UploadURL:       info.UploadURL,
		Key:             info.Key,
		ExpiresIn:       int64(info.Expires / time.Second),
		RequiredHeaders: info.RequiredHeaders,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
