package repository

import (
	"context"

	mongotx "github.com/SahilMindbowser/mb-meetings-poc/pkg/db/mongo"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

// ReservationStore is the only boundary to durable storage. Implementations
// never enforce business conflicts; overlap policy lives in the service.
//
// Listing operations return finite snapshots ordered by start time
// ascending. When a window is given, only reservations overlapping it are
// returned (half-open semantics, so a window ending exactly where a
// reservation starts excludes it).
type ReservationStore interface {
	// Create assigns the reservation id and persists the record.
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	// Update replaces the mutable fields of an existing record.
	Update(ctx context.Context, id string, reservation *model.Reservation) error
	// Delete is idempotent: deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	ListByRoom(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Reservation, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

// ResourceLocker serializes check-then-commit per room. Acquire blocks until
// the room lock is held, the context is done, or the implementation's retry
// budget runs out; the returned func releases the lock.
type ResourceLocker interface {
	Acquire(ctx context.Context, roomID string) (release func(), err error)
}
