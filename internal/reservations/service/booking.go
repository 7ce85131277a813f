package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/availability"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/conflict"
	reservationerrors "github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/errors"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/repository"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/validator"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/rooms"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/config"
	apperrors "github.com/SahilMindbowser/mb-meetings-poc/pkg/errors"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/events"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/sanitizer"
)

// BookingService orchestrates reservation mutations: validate, check
// conflicts, commit — atomically per room. Every rejection is terminal for
// that request; nothing is retried and nothing is partially applied.
type BookingService interface {
	Create(ctx context.Context, callerID string, reservation *model.Reservation) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	Update(ctx context.Context, id string, callerID string, updates *model.ReservationUpdate) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, callerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Reservation, error)
	RoomSchedule(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error)
	FreeSlots(ctx context.Context, roomID string, day time.Time, loc *time.Location) ([]model.Interval, error)
	IsFullDayAvailable(ctx context.Context, roomID string, day time.Time, loc *time.Location) (bool, error)
}

type bookingService struct {
	store     repository.ReservationStore
	locker    repository.ResourceLocker
	checker   *conflict.Checker
	planner   *availability.Planner
	registry  *rooms.Registry
	validator *validator.ReservationValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	store repository.ReservationStore,
	locker repository.ResourceLocker,
	registry *rooms.Registry,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		store:     store,
		locker:    locker,
		checker:   conflict.NewChecker(store),
		planner:   availability.NewPlanner(store),
		registry:  registry,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, callerID string, reservation *model.Reservation) (*model.Reservation, error) {
	if callerID == "" {
		return nil, apperrors.InvalidInput("caller identity is required")
	}
	reservation.OwnerID = callerID
	reservation.ID = ""

	s.sanitize(reservation)
	if err := s.validate(reservation); err != nil {
		return nil, err
	}
	if !s.registry.Known(reservation.RoomID) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown room: %s", reservation.RoomID))
	}

	release, err := s.acquireRoomLock(ctx, reservation.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.store.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.rejectConflicts(txCtx, reservation.RoomID, reservation.Interval(), ""); err != nil {
			return err
		}
		if err := s.store.Create(txCtx, reservation); err != nil {
			return apperrors.Unavailable("reservation store", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"room_id", reservation.RoomID,
			"owner_id", reservation.OwnerID,
			"error", err,
		)
		return nil, asAppError(err)
	}

	s.cfg.Log.Info("Reservation created",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"owner_id", reservation.OwnerID,
		"start_time", reservation.StartTime,
	)
	s.publish(ctx, events.TypeReservationCreated, reservation)
	return reservation, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return reservation, nil
}

func (s *bookingService) Update(ctx context.Context, id string, callerID string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if callerID == "" {
		return nil, apperrors.InvalidInput("caller identity is required")
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	if existing.OwnerID != callerID {
		return nil, apperrors.Forbidden("only the reservation owner may modify it")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	release, err := s.acquireRoomLock(ctx, merged.RoomID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.store.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// The reservation's own prior interval is excluded, so shrinking or
		// shifting within it always succeeds.
		if err := s.rejectConflicts(txCtx, merged.RoomID, merged.Interval(), id); err != nil {
			return err
		}
		if err := s.store.Update(txCtx, id, merged); err != nil {
			if errors.Is(err, reservationerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", id)
			}
			return apperrors.Unavailable("reservation store", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return nil, asAppError(err)
	}

	s.cfg.Log.Info("Reservation updated", "id", id, "room_id", merged.RoomID)
	s.publish(ctx, events.TypeReservationUpdated, merged)
	return merged, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string, callerID string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if callerID == "" {
		return apperrors.InvalidInput("caller identity is required")
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		// Cancelling an already-gone reservation succeeds; cancel is
		// idempotent.
		if errors.Is(err, reservationerrors.ErrNotFound) || errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil
		}
		return apperrors.Unavailable("reservation store", err)
	}
	if existing.OwnerID != callerID {
		return apperrors.Forbidden("only the reservation owner may cancel it")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return apperrors.Unavailable("reservation store", err)
	}

	s.cfg.Log.Info("Reservation cancelled", "id", id, "room_id", existing.RoomID)
	s.publish(ctx, events.TypeReservationCancelled, existing)
	return nil
}

func (s *bookingService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Reservation, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("owner_id is required")
	}

	reservations, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations by owner", "owner_id", ownerID, "error", err)
		return nil, apperrors.Unavailable("reservation store", err)
	}
	return reservations, nil
}

func (s *bookingService) RoomSchedule(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error) {
	if !s.registry.Known(roomID) {
		return nil, apperrors.NotFoundWithID("Room", roomID)
	}

	reservations, err := s.store.ListByRoom(ctx, roomID, window)
	if err != nil {
		s.cfg.Log.Error("Failed to list room schedule", "room_id", roomID, "error", err)
		return nil, apperrors.Unavailable("reservation store", err)
	}
	return reservations, nil
}

func (s *bookingService) FreeSlots(ctx context.Context, roomID string, day time.Time, loc *time.Location) ([]model.Interval, error) {
	if !s.registry.Known(roomID) {
		return nil, apperrors.NotFoundWithID("Room", roomID)
	}

	slots, err := s.planner.FreeSlots(ctx, roomID, day, loc)
	if err != nil {
		s.cfg.Log.Error("Failed to compute free slots", "room_id", roomID, "error", err)
		return nil, apperrors.Unavailable("reservation store", err)
	}
	return slots, nil
}

func (s *bookingService) IsFullDayAvailable(ctx context.Context, roomID string, day time.Time, loc *time.Location) (bool, error) {
	if !s.registry.Known(roomID) {
		return false, apperrors.NotFoundWithID("Room", roomID)
	}

	available, err := s.planner.IsFullDayAvailable(ctx, roomID, day, loc)
	if err != nil {
		return false, apperrors.Unavailable("reservation store", err)
	}
	return available, nil
}

// --- Helpers ---

func (s *bookingService) mapLookupError(err error, id string) error {
	if errors.Is(err, reservationerrors.ErrNotFound) || errors.Is(err, reservationerrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Reservation", id)
	}
	return apperrors.Unavailable("reservation store", err)
}

func (s *bookingService) sanitize(r *model.Reservation) {
	r.Title = sanitizer.NormalizeTitle(r.Title)
	r.Description = sanitizer.NormalizeDescription(r.Description)
}

func (s *bookingService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) mergeUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	return &merged
}

func (s *bookingService) rejectConflicts(ctx context.Context, roomID string, interval model.Interval, excludeID string) error {
	conflicts, err := s.checker.FindConflicts(ctx, roomID, interval, excludeID)
	if err != nil {
		return apperrors.Unavailable("reservation store", err)
	}
	if len(conflicts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(conflicts))
	blocked := make([]map[string]any, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.ID)
		blocked = append(blocked, map[string]any{
			"id":         c.ID,
			"start_time": c.StartTime.Format(time.RFC3339),
			"end_time":   c.EndTime.Format(time.RFC3339),
		})
	}

	return apperrors.ScheduleConflict(
		fmt.Sprintf("Requested time overlaps %d existing reservation(s)", len(conflicts)),
		map[string]any{
			"conflicting_reservation_ids": ids,
			"conflicts":                   blocked,
		},
	)
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (func(), error) {
	release, err := s.locker.Acquire(ctx, roomID)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrLockHeld) {
			return nil, apperrors.Unavailable("room lock", err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, apperrors.Timeout("timed out waiting for room lock")
		}
		return nil, apperrors.Internal("Failed to acquire room lock", err)
	}
	return release, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	msg := events.NewMessage().
		WithKey(reservation.RoomID).
		WithEventType(eventType).
		WithSource("reservations").
		WithValue(reservation).
		Build()

	// Eventing is best effort; a broker outage must not fail a committed
	// booking.
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}

func asAppError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Unavailable("reservation store", err)
}
