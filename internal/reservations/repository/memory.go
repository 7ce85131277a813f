package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	reservationerrors "github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/errors"
	mongotx "github.com/SahilMindbowser/mb-meetings-poc/pkg/db/mongo"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

// MemoryReservationStore satisfies ReservationStore without external
// dependencies, for tests and single-process deployments. Listings return
// sorted copies, so callers never observe later mutations.
type MemoryReservationStore struct {
	mu           sync.RWMutex
	reservations map[string]*model.Reservation
}

func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{
		reservations: make(map[string]*model.Reservation),
	}
}

func (s *MemoryReservationStore) Create(_ context.Context, reservation *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation.ID = uuid.New().String()
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	stored := *reservation
	s.reservations[stored.ID] = &stored
	return nil
}

func (s *MemoryReservationStore) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, reservationerrors.ErrNotFound
	}

	found := *reservation
	return &found, nil
}

func (s *MemoryReservationStore) Update(_ context.Context, id string, reservation *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.reservations[id]
	if !ok {
		return reservationerrors.ErrNotFound
	}

	existing.StartTime = reservation.StartTime
	existing.EndTime = reservation.EndTime
	existing.Title = reservation.Title
	existing.Description = reservation.Description
	return nil
}

func (s *MemoryReservationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent: deleting an absent id is a no-op.
	delete(s.reservations, id)
	return nil
}

func (s *MemoryReservationStore) ListByRoom(_ context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(r *model.Reservation) bool {
		if r.RoomID != roomID {
			return false
		}
		if window == nil {
			return true
		}
		return window.Overlaps(r.Interval())
	}), nil
}

func (s *MemoryReservationStore) ListByOwner(_ context.Context, ownerID string) ([]*model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(r *model.Reservation) bool {
		return r.OwnerID == ownerID
	}), nil
}

func (s *MemoryReservationStore) collect(match func(*model.Reservation) bool) []*model.Reservation {
	out := make([]*model.Reservation, 0)
	for _, r := range s.reservations {
		if match(r) {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// ExecuteTransaction runs fn directly. Atomicity of check-then-commit comes
// from the per-room ResourceLocker the service holds around it.
func (s *MemoryReservationStore) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}
