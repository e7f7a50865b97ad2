package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-diary/internal/config"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"
	"github.com/pribylovaa/go-diary/mocks"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		DatabaseURL: "postgres://unit",
		JWTSecret:   "unit-secret-unit-secret",
		TokenTTL:    time.Hour,
		Issuer:      "diary-service",
		Audience:    "diary",
	}
}

type fixture struct {
	svc      *Service
	users    *mocks.MockUsersStorage
	profiles *mocks.MockProfilesStorage
	revoked  *mocks.MockRevocations
}

func newSvc(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := fixture{
		users:    mocks.NewMockUsersStorage(ctrl),
		profiles: mocks.NewMockProfilesStorage(ctrl),
		revoked:  mocks.NewMockRevocations(ctrl),
	}
	f.svc = New(f.users, f.profiles, testCfg())
	f.svc.SetRevocations(f.revoked)

	return f
}

func mustCreds(t *testing.T, email, pw string) *models.Credentials {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)

	return &models.Credentials{ID: uuid.New(), Email: email, PasswordHash: h, DisplayName: "Aoi"}
}

func TestRegister_OK(t *testing.T) {
	f := newSvc(t)

	var saved *models.Credentials
	f.users.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c *models.Credentials) error {
			saved = c
			return nil
		})
	f.profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p models.Profile) (bool, error) {
			require.Equal(t, models.DefaultUsername, p.Username)
			require.Equal(t, "user@example.com", p.Email)
			return true, nil
		})

	tok, err := f.svc.Register(context.Background(), " User@Example.com ", "secret1", "")
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)
	require.Equal(t, saved.ID.String(), tok.User.UID)
	require.Equal(t, "user@example.com", tok.User.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword(saved.PasswordHash, []byte("secret1")))
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 2*time.Second)
}

func TestRegister_Validation(t *testing.T) {
	f := newSvc(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "not-an-email", "secret1", "")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.Register(ctx, "", "secret1", "")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.Register(ctx, "a@b.co", "", "")
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = f.svc.Register(ctx, "a@b.co", "12345", "")
	require.ErrorIs(t, err, ErrWeakPassword)

	// 6 рун, хотя байт больше.
	f.users.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)
	f.profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).Return(false, nil)
	_, err = f.svc.Register(ctx, "a@b.co", "日記日記日記", "")
	require.NoError(t, err)
}

func TestRegister_EmailTaken(t *testing.T) {
	f := newSvc(t)

	f.users.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := f.svc.Register(context.Background(), "a@b.co", "secret1", "")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_StorageError(t *testing.T) {
	f := newSvc(t)

	f.users.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err := f.svc.Register(context.Background(), "a@b.co", "secret1", "")
	require.ErrorIs(t, err, ErrInternal)
}

func TestLogin_OK(t *testing.T) {
	f := newSvc(t)
	creds := mustCreds(t, "a@b.co", "secret1")

	f.users.EXPECT().UserByEmail(gomock.Any(), "a@b.co").Return(creds, nil)
	f.profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).Return(false, nil)

	tok, err := f.svc.Login(context.Background(), "A@B.co", "secret1")
	require.NoError(t, err)
	require.Equal(t, creds.ID.String(), tok.User.UID)
	require.Equal(t, "Aoi", tok.User.DisplayName)
}

func TestLogin_ProfileErrorIgnored(t *testing.T) {
	f := newSvc(t)
	creds := mustCreds(t, "a@b.co", "secret1")

	f.users.EXPECT().UserByEmail(gomock.Any(), "a@b.co").Return(creds, nil)
	f.profiles.EXPECT().EnsureProfile(gomock.Any(), gomock.Any()).Return(false, errors.New("mongo down"))

	_, err := f.svc.Login(context.Background(), "a@b.co", "secret1")
	require.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newSvc(t)
	creds := mustCreds(t, "a@b.co", "secret1")

	f.users.EXPECT().UserByEmail(gomock.Any(), "a@b.co").Return(creds, nil)
	_, err := f.svc.Login(context.Background(), "a@b.co", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	f.users.EXPECT().UserByEmail(gomock.Any(), "x@b.co").Return(nil, storage.ErrNotFound)
	_, err = f.svc.Login(context.Background(), "x@b.co", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_EmptyPassword(t *testing.T) {
	f := newSvc(t)

	_, err := f.svc.Login(context.Background(), "a@b.co", "")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_OK(t *testing.T) {
	f := newSvc(t)

	tok, err := f.svc.issueToken(models.User{UID: "u1", Email: "a@b.co", DisplayName: "Aoi"})
	require.NoError(t, err)

	f.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(false, nil)

	u, err := f.svc.Verify(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, &models.User{UID: "u1", Email: "a@b.co", DisplayName: "Aoi"}, u)
}

func TestVerify_Revoked(t *testing.T) {
	f := newSvc(t)

	tok, err := f.svc.issueToken(models.User{UID: "u1"})
	require.NoError(t, err)

	f.revoked.EXPECT().IsRevoked(gomock.Any(), gomock.Any()).Return(true, nil)

	_, err = f.svc.Verify(context.Background(), tok.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestVerify_Expired(t *testing.T) {
	f := newSvc(t)
	f.svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := f.svc.issueToken(models.User{UID: "u1"})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now() }

	_, err = f.svc.Verify(context.Background(), tok.AccessToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Invalid(t *testing.T) {
	f := newSvc(t)
	ctx := context.Background()

	_, err := f.svc.Verify(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.Verify(ctx, "garbage.token.value")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Чужой секрет.
	other := New(nil, nil, config.AuthConfig{JWTSecret: "another-secret-value", TokenTTL: time.Hour, Issuer: "diary-service", Audience: "diary"})
	tok, err := other.issueToken(models.User{UID: "u1"})
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Чужая аудитория.
	cfg := testCfg()
	cfg.Audience = "someone-else"
	tok, err = New(nil, nil, cfg).issueToken(models.User{UID: "u1"})
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, tok.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// alg=none отклоняется.
	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": "u1"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, s)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	f := newSvc(t)

	tok, err := f.svc.issueToken(models.User{UID: "u1"})
	require.NoError(t, err)

	f.revoked.EXPECT().Revoke(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, jti string, ttl time.Duration) error {
			require.NotEmpty(t, jti)
			require.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
			return nil
		})

	require.NoError(t, f.svc.Logout(context.Background(), tok.AccessToken))
}

func TestLogout_WithoutRevocations(t *testing.T) {
	svc := New(nil, nil, testCfg())

	tok, err := svc.issueToken(models.User{UID: "u1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), tok.AccessToken))
	require.ErrorIs(t, svc.Logout(context.Background(), "bad"), ErrInvalidToken)
}

func TestOnAuthStateChanged(t *testing.T) {
	svc := New(nil, nil, testCfg())

	var (
		mu  sync.Mutex
		got []*models.User
	)
	unsubscribe := svc.OnAuthStateChanged(func(u *models.User) {
		mu.Lock()
		got = append(got, u)
		mu.Unlock()
	})

	tok, err := svc.signIn(context.Background(), models.User{UID: "u1"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(context.Background(), tok.AccessToken))

	unsubscribe()
	unsubscribe()
	_, err = svc.signIn(context.Background(), models.User{UID: "u2"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	require.Equal(t, "u1", got[0].UID)
	require.Nil(t, got[1])
}
