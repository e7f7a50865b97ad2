package mongo

import (
	"context"
	"fmt"

	"github.com/pribylovaa/go-diary/internal/models"
	"github.com/pribylovaa/go-diary/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureProfile создаёт документ users/{uid} только при первом входе.
// Существующий профиль не трогается ($setOnInsert).
func (m *Mongo) EnsureProfile(ctx context.Context, p models.Profile) (bool, error) {
	const op = "storage/mongo/EnsureProfile"

	if p.UID == "" {
		return false, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	res, err := m.profiles.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: p.UID}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "uid", Value: p.UID},
			{Key: "email", Value: p.Email},
			{Key: "username", Value: p.Username},
			{Key: "created_at", Value: p.CreatedAt.UTC()},
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return res.UpsertedCount > 0, nil
}

var _ storage.ProfilesStorage = (*Mongo)(nil)
