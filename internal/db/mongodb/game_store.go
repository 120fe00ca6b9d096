package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bingoloco/backend/internal/game/models"
)

// currentSnapshotID is the fixed document id for the live game snapshot.
// The store keeps exactly one current document; durability across restarts
// is an external concern layered on top of the in-memory state.
const currentSnapshotID = "current"

// GameStore persists full-state snapshots at operation boundaries.
type GameStore struct {
	snapshots *mongo.Collection
}

// NewGameStore creates a snapshot store on the given database.
func NewGameStore(client *mongo.Client, dbName, collName string) *GameStore {
	return &GameStore{
		snapshots: client.Database(dbName).Collection(collName),
	}
}

// SaveSnapshot upserts the current snapshot document.
func (s *GameStore) SaveSnapshot(ctx context.Context, snap models.AdminState) error {
	_, err := s.snapshots.UpdateOne(
		ctx,
		bson.M{"_id": currentSnapshotID},
		bson.M{"$set": bson.M{
			"state":     snap,
			"updatedAt": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the last saved snapshot, or nil when none exists.
func (s *GameStore) LoadSnapshot(ctx context.Context) (*models.AdminState, error) {
	var doc struct {
		State models.AdminState `bson:"state"`
	}
	err := s.snapshots.FindOne(ctx, bson.M{"_id": currentSnapshotID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &doc.State, nil
}
