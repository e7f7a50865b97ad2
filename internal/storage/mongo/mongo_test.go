package mongo

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"
	"github.com/stretchr/testify/require"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"go.mongodb.org/mongo-driver/bson"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB в контейнере один раз на весь пакет.
// Каждый тест работает в своей БД (см. newTestURI).
//
// Запуск:
//
//	GO_TEST_INTEGRATION=1 go test ./internal/storage/mongo -v -count=1
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	_ = os.Setenv("DATABASE_URL", fmt.Sprintf("mongodb://%s:%s", host, port.Port()))

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// newTestURI возвращает URI отдельной тестовой БД.
func newTestURI(t *testing.T) string {
	t.Helper()

	base := os.Getenv("DATABASE_URL")
	if base == "" {
		base = "mongodb://localhost:27017"
	}

	return strings.TrimRight(base, "/") + "/diary_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// mustNewMongo подключается к тестовой БД; удаляет её по завершении теста.
func mustNewMongo(t *testing.T) *Mongo {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, newTestURI(t))
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func sampleEntry() models.Entry {
	return models.Entry{
		Date:     models.DateFromString("2024-05-01"),
		Content:  "Hello",
		Images:   []string{},
		Tags:     []string{"trip"},
		Weather:  models.WeatherSunny,
		Mood:     models.MoodGood,
		IsPublic: false,
		IsLiked:  true,
	}
}

func TestDatabaseFromURI(t *testing.T) {
	require.Equal(t, "diary", databaseFromURI("mongodb://localhost:27017"))
	require.Equal(t, "diary", databaseFromURI("mongodb://localhost:27017/"))
	require.Equal(t, "journal", databaseFromURI("mongodb://localhost:27017/journal?retryWrites=true"))
	require.Equal(t, "diary", databaseFromURI("::not a uri"))
}

func TestPatchToSet(t *testing.T) {
	content := "x"
	public := true
	set := patchToSet(models.EntryPatch{Content: &content, IsPublic: &public})

	require.Equal(t, bson.D{{Key: "content", Value: "x"}, {Key: "is_public", Value: true}}, set)
	require.Empty(t, patchToSet(models.EntryPatch{}))
}

// Сценарий: создать запись и увидеть её в списке ровно один раз.
func TestIntegration_CreateThenList(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	id, err := m.CreateEntry(ctx, "u1", sampleEntry())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := m.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	require.Equal(t, id, got.ID)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "Hello", got.Content)
	require.Equal(t, []string{"trip"}, got.Tags)
	require.Equal(t, models.WeatherSunny, got.Weather)
	require.Equal(t, models.MoodGood, got.Mood)
	require.False(t, got.IsPublic)
	require.False(t, got.IsLiked)
	require.False(t, got.CreatedAt.IsZero())

	s, ok := got.Date.Text()
	require.True(t, ok)
	require.Equal(t, "2024-05-01", s)

	// Записи другого пользователя не видны.
	other, err := m.Entries(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestIntegration_EntryByDate_ExactMatch(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	_, err := m.CreateEntry(ctx, "u1", sampleEntry())
	require.NoError(t, err)

	got, err := m.EntryByDate(ctx, "u1", "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "Hello", got.Content)

	for _, miss := range []string{"2024-05-1", "2024-05", "2024-05-01 ", "2024-05-01T00:00:00Z"} {
		_, err := m.EntryByDate(ctx, "u1", miss)
		require.ErrorIs(t, err, storage.ErrNotFound, miss)
	}

	_, err = m.EntryByDate(ctx, "u2", "2024-05-01")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Запись с датой-меткой времени не находится строковым запросом.
func TestIntegration_EntryByDate_TimestampNotMatched(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	e := sampleEntry()
	e.Date = models.DateFromTime(time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC))
	_, err := m.CreateEntry(ctx, "u1", e)
	require.NoError(t, err)

	_, err = m.EntryByDate(ctx, "u1", "2024-05-02")
	require.ErrorIs(t, err, storage.ErrNotFound)

	list, err := m.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.DateTimestamp, list[0].Date.Kind())
}

// Частичное обновление меняет только content.
func TestIntegration_UpdateEntry_Partial(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	e := sampleEntry()
	e.Images = []string{"http://cdn/a.png"}
	id, err := m.CreateEntry(ctx, "u1", e)
	require.NoError(t, err)

	content := "Updated"
	require.NoError(t, m.UpdateEntry(ctx, "u1", id, models.EntryPatch{Content: &content}))

	got, err := m.EntryByDate(ctx, "u1", "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, "Updated", got.Content)
	require.Equal(t, e.Tags, got.Tags)
	require.Equal(t, e.Weather, got.Weather)
	require.Equal(t, e.Mood, got.Mood)
	require.Equal(t, e.Images, got.Images)
	require.Equal(t, e.IsPublic, got.IsPublic)
}

func TestIntegration_UpdateEntry_NotFound(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	id, err := m.CreateEntry(ctx, "u1", sampleEntry())
	require.NoError(t, err)

	content := "x"
	patch := models.EntryPatch{Content: &content}

	// Чужая запись.
	require.ErrorIs(t, m.UpdateEntry(ctx, "u2", id, patch), storage.ErrNotFound)
	// Битый id.
	require.ErrorIs(t, m.UpdateEntry(ctx, "u1", "not-an-id", patch), storage.ErrNotFound)
	// Пустой патч.
	require.ErrorIs(t, m.UpdateEntry(ctx, "u1", id, models.EntryPatch{}), storage.ErrInvalidArgument)
}

// Дубли за один день не запрещены.
func TestIntegration_DuplicateDateAllowed(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	_, err := m.CreateEntry(ctx, "u1", sampleEntry())
	require.NoError(t, err)
	_, err = m.CreateEntry(ctx, "u1", sampleEntry())
	require.NoError(t, err)

	list, err := m.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestIntegration_EnsureProfile_OnlyOnce(t *testing.T) {
	m := mustNewMongo(t)
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	p := models.ProfileOf(models.User{UID: "u1", Email: "a@example.com"}, time.Now())

	created, err := m.EnsureProfile(ctx, p)
	require.NoError(t, err)
	require.True(t, created)

	p.Username = "changed"
	created, err = m.EnsureProfile(ctx, p)
	require.NoError(t, err)
	require.False(t, created)

	var doc bson.M
	require.NoError(t, m.profiles.FindOne(ctx, bson.D{{Key: "_id", Value: "u1"}}).Decode(&doc))
	require.Equal(t, models.DefaultUsername, doc["username"])

	_, err = m.EnsureProfile(ctx, models.Profile{})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
}
