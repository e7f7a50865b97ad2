package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pribylovaa/go-diary/internal/identity"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/service"
	"github.com/pribylovaa/go-diary/internal/storage"
	diaryhttp "github.com/pribylovaa/go-diary/internal/transport/http"
	"github.com/pribylovaa/go-diary/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	client   *Client
	diary    *mocks.MockDiary
	identity *mocks.MockIdentity
	srv      *httptest.Server
}

func newFixture(t *testing.T, tokenFile string) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := fixture{
		diary:    mocks.NewMockDiary(ctrl),
		identity: mocks.NewMockIdentity(ctrl),
	}
	f.srv = httptest.NewServer(diaryhttp.NewRouter(f.diary, diaryhttp.Options{
		AuthRequired: true,
		Identity:     f.identity,
		Registerer:   prometheus.NewRegistry(),
	}))
	t.Cleanup(f.srv.Close)

	c, err := New(Config{BaseURL: f.srv.URL, Timeout: 2 * time.Second, TokenFile: tokenFile}, nil)
	require.NoError(t, err)
	f.client = c

	return f
}

func token(uid string) *models.Token {
	return &models.Token{
		AccessToken: "tok-" + uid,
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		User:        models.User{UID: uid, Email: uid + "@example.com"},
	}
}

type recorder struct {
	mu    sync.Mutex
	users []*models.User
}

func (r *recorder) fn(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
}

func (r *recorder) snapshot() []*models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.User(nil), r.users...)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, nil)
	require.Error(t, err)
}

func TestLogin_PersistsAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "token")
	f := newFixture(t, path)

	var rec recorder
	defer f.client.OnAuthStateChanged(rec.fn)()

	f.identity.EXPECT().Login(gomock.Any(), "u1@example.com", "secret1").Return(token("u1"), nil)

	u, err := f.client.Login(context.Background(), "u1@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", u.UID)
	require.Equal(t, "tok-u1", f.client.Token())

	got := rec.snapshot()
	require.Len(t, got, 1)
	require.Equal(t, "u1", got[0].UID)

	st, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t, "")

	f.identity.EXPECT().Login(gomock.Any(), "a@b.co", "bad").Return(nil, identity.ErrInvalidCredentials)

	_, err := f.client.Login(context.Background(), "a@b.co", "bad")
	require.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "invalid_credentials", apiErr.Code)
	require.NotEmpty(t, apiErr.RequestID)
	require.Nil(t, f.client.CurrentUser())
}

func TestInit_RestoresSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, newTokenStore(path).save(*token("u1")))

	f := newFixture(t, path)

	f.identity.EXPECT().Verify(gomock.Any(), "tok-u1").Return(&models.User{UID: "u1", DisplayName: "Aoi"}, nil)

	var rec recorder
	defer f.client.OnAuthStateChanged(rec.fn)()
	require.Empty(t, rec.snapshot())

	require.NoError(t, f.client.Init(context.Background()))

	got := rec.snapshot()
	require.Len(t, got, 1)
	require.Equal(t, "Aoi", got[0].DisplayName)

	// Подписка после Init сразу получает текущее состояние.
	var late recorder
	defer f.client.OnAuthStateChanged(late.fn)()
	require.Len(t, late.snapshot(), 1)
}

func TestInit_RevokedSessionIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, newTokenStore(path).save(*token("u1")))

	f := newFixture(t, path)
	f.identity.EXPECT().Verify(gomock.Any(), "tok-u1").Return(nil, identity.ErrTokenRevoked)

	var rec recorder
	defer f.client.OnAuthStateChanged(rec.fn)()

	require.NoError(t, f.client.Init(context.Background()))

	got := rec.snapshot()
	require.Len(t, got, 1)
	require.Nil(t, got[0])

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestInit_ExpiredLocally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	old := token("u1")
	old.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, newTokenStore(path).save(*old))

	f := newFixture(t, path)
	require.NoError(t, f.client.Init(context.Background()))
	require.Nil(t, f.client.CurrentUser())
}

func TestLogout(t *testing.T) {
	f := newFixture(t, "")

	f.identity.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(token("u1"), nil)
	f.identity.EXPECT().Verify(gomock.Any(), "tok-u1").Return(&models.User{UID: "u1"}, nil)
	f.identity.EXPECT().Logout(gomock.Any(), "tok-u1").Return(nil)

	_, err := f.client.Login(context.Background(), "u1@example.com", "secret1")
	require.NoError(t, err)

	var rec recorder
	defer f.client.OnAuthStateChanged(rec.fn)()

	require.NoError(t, f.client.Logout(context.Background()))
	require.Nil(t, f.client.CurrentUser())

	got := rec.snapshot()
	require.Len(t, got, 2) // текущее состояние при подписке + выход
	require.Nil(t, got[1])

	// Повторный выход без сессии — no-op.
	require.NoError(t, f.client.Logout(context.Background()))
}

func loggedIn(t *testing.T, f fixture) {
	t.Helper()
	f.identity.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(token("u1"), nil)
	f.identity.EXPECT().Verify(gomock.Any(), "tok-u1").Return(&models.User{UID: "u1"}, nil).AnyTimes()
	_, err := f.client.Login(context.Background(), "u1@example.com", "secret1")
	require.NoError(t, err)
}

func TestEntries_CreateListByDateUpdate(t *testing.T) {
	f := newFixture(t, "")
	loggedIn(t, f)
	ctx := context.Background()

	entry := models.Entry{
		Date:    models.DateFromString("2024-05-01"),
		Content: "Hello",
		Images:  []string{},
		Tags:    []string{"trip"},
		Weather: models.WeatherSunny,
		Mood:    models.MoodGood,
	}

	f.diary.EXPECT().Create(gomock.Any(), "u1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, e models.Entry) (string, error) {
			require.Equal(t, "Hello", e.Content)
			require.Empty(t, e.ID)
			return "e1", nil
		})

	id, err := f.client.Create(ctx, "u1", entry)
	require.NoError(t, err)
	require.Equal(t, "e1", id)

	stored := entry
	stored.ID = "e1"
	stored.UserID = "u1"
	f.diary.EXPECT().List(gomock.Any(), "u1").Return([]models.Entry{stored}, nil)

	list, err := f.client.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "e1", list[0].ID)
	require.Equal(t, "2024-05-01", list[0].Date.String())

	f.diary.EXPECT().ByDate(gomock.Any(), "u1", "2024-05-01").Return(&stored, nil)
	f.diary.EXPECT().ByDate(gomock.Any(), "u1", "2024-05-02").Return(nil, service.ErrNotFound)

	got, err := f.client.ByDate(ctx, "u1", "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Content)

	_, err = f.client.ByDate(ctx, "u1", "2024-05-02")
	require.ErrorIs(t, err, ErrNotFound)

	content := "updated"
	f.diary.EXPECT().Update(gomock.Any(), "u1", "e1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ string, p models.EntryPatch) error {
			require.Equal(t, "updated", *p.Content)
			require.Nil(t, p.Tags)
			return nil
		})
	require.NoError(t, f.client.Update(ctx, "u1", "e1", models.EntryPatch{Content: &content}))
}

func TestEntries_ForbiddenAndUnauthorized(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.client.List(ctx, "u1")
	require.ErrorIs(t, err, ErrUnauthorized)

	loggedIn(t, f)

	_, err = f.client.List(ctx, "u2")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDo_ServerDown(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 500 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = c.List(context.Background(), "u1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUploadImage(t *testing.T) {
	var (
		mu       sync.Mutex
		uploaded string
	)
	bucket := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "image/png", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		uploaded = string(b)
		mu.Unlock()
	}))
	defer bucket.Close()

	f := newFixture(t, "")
	loggedIn(t, f)

	f.diary.EXPECT().ImageUploadURL(gomock.Any(), "u1", "image/png", int64(4)).Return(&storage.UploadInfo{
		UploadURL:       bucket.URL + "/diary/entries/u1/x.png",
		Key:             "entries/u1/x.png",
		Expires:         time.Minute,
		RequiredHeaders: map[string]string{"Content-Type": "image/png", "Content-Length": "4"},
	}, nil)
	f.diary.EXPECT().ConfirmImage(gomock.Any(), "u1", "entries/u1/x.png").Return("entries/u1/x.png", nil)

	u, err := f.client.UploadImage(context.Background(), "u1", "image/png", 4, strings.NewReader("\x89PNG"))
	require.NoError(t, err)
	require.Equal(t, "entries/u1/x.png", u)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "\x89PNG", uploaded)
}
