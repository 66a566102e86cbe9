package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"frontdesk/pkg/config"
	"frontdesk/pkg/model"
)

const LockCollectionName = "Room_locks"

// RoomLockRepository stores advisory locks on a hotel room. Create fails
// with a duplicate key error while another holder's lock exists.
type RoomLockRepository interface {
	Create(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error)
	Delete(ctx context.Context, lockID, owner string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoRoomLockRepository struct {
	collection *mongo.Collection
}

func NewRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create takes over a lock whose holder let it expire.
func (r *mongoRoomLockRepository) Create(ctx context.Context, lock *model.RoomLock) (*model.RoomLock, error) {
	lock.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, lock)
	if mongo.IsDuplicateKeyError(err) {
		stale, delErr := r.collection.DeleteOne(ctx, bson.M{
			"_id":        lock.ID,
			"expires_at": bson.M{"$lte": lock.CreatedAt},
		})
		if delErr == nil && stale.DeletedCount == 1 {
			_, err = r.collection.InsertOne(ctx, lock)
		}
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}

// Delete only removes the lock if owner still holds it, so a lock that
// expired and was retaken by someone else survives.
func (r *mongoRoomLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
	return err
}

// PurgeExpired removes stale locks left by crashed requests. The TTL index
// does the same eventually; this keeps the window short.
func (r *mongoRoomLockRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired room locks: %w", err)
	}
	return result.DeletedCount, nil
}
