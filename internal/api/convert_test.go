package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/stretchr/testify/require"
)

func TestEntryFromModel_ServerNeverLikes(t *testing.T) {
	e := models.Entry{ID: "1", Date: models.DateFromString("2024-05-01"), IsLiked: true}

	out := EntryFromModel(e)
	require.False(t, out.IsLiked)
	require.Equal(t, []string{}, out.Images)
	require.Equal(t, []string{}, out.Tags)
	require.Nil(t, out.CreatedAt)
}

func TestEntry_JSONShape(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := EntryFromModel(models.Entry{
		ID:        "abc",
		UserID:    "u1",
		Date:      models.DateFromString("2024-05-01"),
		Content:   "Hello",
		Tags:      []string{"trip"},
		Weather:   models.WeatherSunny,
		Mood:      models.MoodGood,
		CreatedAt: created,
	})

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Equal(t, "abc", m["id"])
	require.Equal(t, "u1", m["userId"])
	require.Equal(t, "2024-05-01", m["date"])
	require.Equal(t, "sunny", m["weather"])
	require.Equal(t, false, m["isPublic"])
	require.Equal(t, false, m["isLiked"])
	require.Equal(t, "2024-05-01T10:00:00Z", m["createdAt"])
}

func TestUpdatedData_ToPatch_OnlySupplied(t *testing.T) {
	var u UpdatedData
	require.NoError(t, json.Unmarshal([]byte(`{"content":"new","isLiked":true}`), &u))

	p := u.ToPatch()
	require.NotNil(t, p.Content)
	require.Equal(t, "new", *p.Content)
	require.Nil(t, p.Tags)
	require.Nil(t, p.Weather)
	require.Nil(t, p.IsPublic)
	require.False(t, p.IsEmpty())

	var onlyLiked UpdatedData
	require.NoError(t, json.Unmarshal([]byte(`{"isLiked":true}`), &onlyLiked))
	require.True(t, onlyLiked.ToPatch().IsEmpty())
}

func TestCreateRequest_TimestampDate(t *testing.T) {
	var req CreateRequest
	body := `{"userId":"u1","entry":{"date":{"_seconds":1714521600,"_nanoseconds":0},"content":"x","images":[],"tags":[],"weather":"rainy","mood":"bad","isPublic":true,"isLiked":false}}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NotNil(t, req.Entry)

	e := req.Entry.ToModel()
	require.Equal(t, models.DateTimestamp, e.Date.Kind())
	d, ok := e.Date.Day(time.UTC)
	require.True(t, ok)
	require.Equal(t, "2024-05-01", d.String())
}

func TestAuth_RoundTrip(t *testing.T) {
	exp := time.Unix(1714521600, 0).UTC()
	tok := &models.Token{AccessToken: "t", ExpiresAt: exp, User: models.User{UID: "u1"}}

	resp := AuthFromModel(tok)
	require.Equal(t, int64(1714521600), resp.ExpiresAt)
	require.Equal(t, *tok, resp.ToModel())
}
