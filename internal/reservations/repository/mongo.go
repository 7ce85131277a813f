package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	reservationerrors "github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/errors"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/config"
	mongotx "github.com/SahilMindbowser/mb-meetings-poc/pkg/db/mongo"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationStore struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationStore(cfg *config.Config) ReservationStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationStore{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a
// transaction. SessionContexts pass through unchanged; wrapping them breaks
// transaction semantics.
func (s *mongoReservationStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (s *mongoReservationStore) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	reservation.ID = uuid.New().String()
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := s.collection.InsertOne(ctx, reservation); err != nil {
		reservation.ID = ""
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (s *mongoReservationStore) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (s *mongoReservationStore) Update(ctx context.Context, id string, reservation *model.Reservation) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"start_time":  reservation.StartTime,
			"end_time":    reservation.EndTime,
			"title":       reservation.Title,
			"description": reservation.Description,
		},
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.MatchedCount == 0 {
		return reservationerrors.ErrNotFound
	}

	return nil
}

func (s *mongoReservationStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %s", reservationerrors.ErrInvalidID, id)
	}

	// Idempotent: a zero DeletedCount is success.
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return nil
}

func (s *mongoReservationStore) ListByRoom(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"room_id": roomID}
	if window != nil {
		filter["start_time"] = bson.M{"$lt": window.End}
		filter["end_time"] = bson.M{"$gt": window.Start}
	}

	return s.find(ctx, filter)
}

func (s *mongoReservationStore) ListByOwner(ctx context.Context, ownerID string) ([]*model.Reservation, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	return s.find(ctx, bson.M{"owner_id": ownerID})
}

func (s *mongoReservationStore) find(ctx context.Context, filter bson.M) ([]*model.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (s *mongoReservationStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return s.txManager.ExecuteTransaction(ctx, fn)
}
