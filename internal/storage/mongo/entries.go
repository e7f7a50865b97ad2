package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// entryDoc — форма записи в коллекции entries.
type entryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Date      models.EntryDate   `bson:"date"`
	Content   string             `bson:"content"`
	Images    []string           `bson:"images"`
	Tags      []string           `bson:"tags"`
	Weather   string             `bson:"weather,omitempty"`
	Mood      string             `bson:"mood,omitempty"`
	IsPublic  bool               `bson:"is_public"`
	CreatedAt time.Time          `bson:"created_at"`
}

func docFromEntry(e models.Entry) entryDoc {
	return entryDoc{
		UserID:    e.UserID,
		Date:      e.Date,
		Content:   e.Content,
		Images:    nonNil(e.Images),
		Tags:      nonNil(e.Tags),
		Weather:   string(e.Weather),
		Mood:      string(e.Mood),
		IsPublic:  e.IsPublic,
		CreatedAt: e.CreatedAt,
	}
}

func (d entryDoc) toModel() models.Entry {
	return models.Entry{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Date:      d.Date,
		Content:   d.Content,
		Images:    nonNil(d.Images),
		Tags:      nonNil(d.Tags),
		Weather:   models.Weather(d.Weather),
		Mood:      models.Mood(d.Mood),
		IsPublic:  d.IsPublic,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

// Entries возвращает все записи пользователя. Порядок — как отдаёт хранилище.
func (m *Mongo) Entries(ctx context.Context, userID string) ([]models.Entry, error) {
	const op = "storage/mongo/Entries"

	cur, err := m.entries.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	out := make([]models.Entry, 0)
	for cur.Next(ctx) {
		var d entryDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		out = append(out, d.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// EntryByDate ищет запись по строгому равенству строки date.
// Фильтр строковый, поэтому документы с BSON datetime в date не совпадают.
func (m *Mongo) EntryByDate(ctx context.Context, userID, date string) (*models.Entry, error) {
	const op = "storage/mongo/EntryByDate"

	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "date", Value: date},
	}

	var d entryDoc
	if err := m.entries.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	e := d.toModel()
	return &e, nil
}

// CreateEntry вставляет запись владельца userID. IsLiked не сохраняется.
func (m *Mongo) CreateEntry(ctx context.Context, userID string, entry models.Entry) (string, error) {
	const op = "storage/mongo/CreateEntry"

	// MongoDB DateTime хранит миллисекунды.
	entry.UserID = userID
	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	res, err := m.entries.InsertOne(ctx, docFromEntry(entry))
	if err != nil {
		return "", fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%s: inserted id type", op)
	}

	return oid.Hex(), nil
}

// UpdateEntry выполняет $set только по переданным полям патча.
func (m *Mongo) UpdateEntry(ctx context.Context, userID, entryID string, patch models.EntryPatch) error {
	const op = "storage/mongo/UpdateEntry"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(entryID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set := patchToSet(patch)
	if len(set) == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	res, err := m.entries.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// patchToSet собирает документ $set из непустых полей патча.
func patchToSet(p models.EntryPatch) bson.D {
	set := bson.D{}

	if p.Date != nil {
		set = append(set, bson.E{Key: "date", Value: *p.Date})
	}
	if p.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *p.Content})
	}
	if p.Images != nil {
		set = append(set, bson.E{Key: "images", Value: nonNil(*p.Images)})
	}
	if p.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: nonNil(*p.Tags)})
	}
	if p.Weather != nil {
		set = append(set, bson.E{Key: "weather", Value: string(*p.Weather)})
	}
	if p.Mood != nil {
		set = append(set, bson.E{Key: "mood", Value: string(*p.Mood)})
	}
	if p.IsPublic != nil {
		set = append(set, bson.E{Key: "is_public", Value: *p.IsPublic})
	}

	return set
}

// Проверка на соответствие интерфейсу.
var _ storage.EntriesStorage = (*Mongo)(nil)
