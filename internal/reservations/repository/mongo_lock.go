package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	reservationerrors "github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/errors"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/config"
)

const LockCollectionName = "Room_locks"

// roomLock is an advisory lock document. The unique _id makes insertion the
// acquisition; a TTL index on expires_at reclaims locks left behind by
// crashed holders.
type roomLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoRoomLocker is a ResourceLocker backed by an advisory-lock collection,
// so check-then-commit stays serialized per room across service instances.
// Contention is resolved by bounded retry with a fixed interval.
type MongoRoomLocker struct {
	collection    *mongo.Collection
	ttl           time.Duration
	retryInterval time.Duration
	maxAttempts   int
}

func NewMongoRoomLocker(cfg *config.Config) *MongoRoomLocker {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &MongoRoomLocker{
		collection:    db.Collection(LockCollectionName),
		ttl:           cfg.LockTTL,
		retryInterval: cfg.LockRetryInterval,
		maxAttempts:   cfg.LockMaxAttempts,
	}
}

func (l *MongoRoomLocker) Acquire(ctx context.Context, roomID string) (func(), error) {
	lockID := "room_lock_" + roomID

	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		now := time.Now()
		_, err := l.collection.InsertOne(ctx, roomLock{
			ID:        lockID,
			ExpiresAt: now.Add(l.ttl),
			CreatedAt: now,
		})
		if err == nil {
			return func() { l.release(lockID) }, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to acquire room lock: %w", err)
		}

		select {
		case <-time.After(l.retryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, reservationerrors.ErrLockHeld
}

func (l *MongoRoomLocker) release(lockID string) {
	// Release must not inherit a cancelled request context, or the lock
	// would only expire via TTL.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = l.collection.DeleteOne(ctx, bson.M{"_id": lockID})
}
