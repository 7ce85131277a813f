package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/repository"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/validator"
	"github.com/SahilMindbowser/mb-meetings-poc/internal/rooms"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/config"
	apperrors "github.com/SahilMindbowser/mb-meetings-poc/pkg/errors"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/events"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/logger"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

type capturingPublisher struct {
	mu       sync.Mutex
	messages []events.Message
}

func (p *capturingPublisher) Publish(_ context.Context, msg events.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []events.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Message
	for _, m := range p.messages {
		if m.Headers[events.HeaderEventType] == eventType {
			out = append(out, m)
		}
	}
	return out
}

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

func newTestService(t *testing.T) (BookingService, *capturingPublisher) {
	t.Helper()
	cfg := testConfig()
	publisher := &capturingPublisher{}
	svc := NewBookingService(
		repository.NewMemoryReservationStore(),
		repository.NewKeyedMutexLocker(),
		rooms.NewRegistry([]model.Room{
			{ID: "room-a", Name: "Conference Room A"},
			{ID: "room-b", Name: "Conference Room B"},
		}),
		validator.NewReservationValidator(cfg.Log),
		publisher,
		cfg,
	)
	return svc, publisher
}

func draft(roomID string, start, end time.Time) *model.Reservation {
	return &model.Reservation{
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
		Title:     "Design review",
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.AsAppError(err).Code; got != code {
		t.Fatalf("expected code %s, got %s (%v)", code, got, err)
	}
}

func TestCreate_Succeeds(t *testing.T) {
	svc, publisher := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an assigned id")
	}
	if created.OwnerID != "alice" {
		t.Errorf("owner should come from the caller identity, got %q", created.OwnerID)
	}

	msgs := publisher.byType(events.TypeReservationCreated)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(msgs))
	}
	if msgs[0].Key != "room-a" {
		t.Errorf("events must be keyed by room for per-room ordering, got %q", msgs[0].Key)
	}
}

func TestCreate_RequiresCallerIdentity(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "", draft("room-a", at(10), at(11)))
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestCreate_RejectsUnknownRoom(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "alice", draft("room-z", at(10), at(11)))
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestCreate_RejectsEmptyInterval(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "alice", draft("room-a", at(10), at(10)))
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCreate_RejectsBlankTitle(t *testing.T) {
	svc, _ := newTestService(t)

	r := draft("room-a", at(10), at(11))
	r.Title = "   "
	_, err := svc.Create(context.Background(), "alice", r)
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCreate_RejectsOverlap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	existing, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(12)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(ctx, "bob", draft("room-a", at(11), at(13)))
	assertCode(t, err, apperrors.CodeConflict)

	details := apperrors.AsAppError(err).Details
	ids, ok := details["conflicting_reservation_ids"].([]string)
	if !ok || len(ids) != 1 || ids[0] != existing.ID {
		t.Errorf("conflict details should name the blocking reservation, got %+v", details)
	}
}

func TestCreate_AllowsBackToBack(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "bob", draft("room-a", at(11), at(12))); err != nil {
		t.Errorf("adjacent reservation must be allowed, got %v", err)
	}
	if _, err := svc.Create(ctx, "carol", draft("room-a", at(9), at(10))); err != nil {
		t.Errorf("adjacent reservation before must be allowed, got %v", err)
	}
}

func TestCreate_OverlapAllowedAcrossRooms(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "bob", draft("room-b", at(10), at(11))); err != nil {
		t.Errorf("same slot in another room must be allowed, got %v", err)
	}
}

func TestCreate_ConcurrentRequestsCommitExactlyOne(t *testing.T) {
	svc, _ := newTestService(t)
	const workers = 16

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), "alice", draft("room-a", at(10), at(11)))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
			t.Errorf("losing request should see a conflict, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one winner, got %d", succeeded)
	}
}

func TestCreate_FullDayBlockedByAnyReservation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	fullDay := model.FullDay(day, time.UTC)
	_, err := svc.Create(ctx, "bob", draft("room-a", fullDay.Start, fullDay.End))
	assertCode(t, err, apperrors.CodeConflict)
}

func TestCreate_FullDayReservationExcludesWholeDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	fullDay := model.FullDay(day, time.UTC)
	if _, err := svc.Create(ctx, "alice", draft("room-a", fullDay.Start, fullDay.End)); err != nil {
		t.Fatalf("full-day create on an empty day should succeed: %v", err)
	}

	_, err := svc.Create(ctx, "bob", draft("room-a", at(10), at(11)))
	assertCode(t, err, apperrors.CodeConflict)

	// The neighboring days stay bookable.
	if _, err := svc.Create(ctx, "bob", draft("room-a", fullDay.End, fullDay.End.Add(time.Hour))); err != nil {
		t.Errorf("next day should be unaffected, got %v", err)
	}
}

func TestUpdate_ShiftWithinOwnSlot(t *testing.T) {
	svc, publisher := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(12)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newStart, newEnd := at(11), at(13)
	updated, err := svc.Update(ctx, created.ID, "alice", &model.ReservationUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if err != nil {
		t.Fatalf("a reservation must not conflict with itself on edit: %v", err)
	}
	if !updated.StartTime.Equal(newStart) || !updated.EndTime.Equal(newEnd) {
		t.Errorf("update not applied: %+v", updated)
	}

	if len(publisher.byType(events.TypeReservationUpdated)) != 1 {
		t.Error("expected an updated event")
	}
}

func TestUpdate_RejectedWhenOverlappingAnother(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mine, err := svc.Create(ctx, "alice", draft("room-a", at(12), at(13)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newStart := at(10).Add(30 * time.Minute)
	newEnd := at(12)
	_, err = svc.Update(ctx, mine.ID, "alice", &model.ReservationUpdate{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	assertCode(t, err, apperrors.CodeConflict)
}

func TestUpdate_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Hijacked"
	_, err = svc.Update(ctx, created.ID, "mallory", &model.ReservationUpdate{Title: title})
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	start, end := at(10), at(11)
	_, err := svc.Update(context.Background(), "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", "alice", &model.ReservationUpdate{
		StartTime: &start,
		EndTime:   &end,
	})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestUpdate_RejectsInvertedPatchInterval(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	start, end := at(12), at(11)
	_, err = svc.Update(ctx, created.ID, "alice", &model.ReservationUpdate{
		StartTime: &start,
		EndTime:   &end,
	})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestCancel_Succeeds(t *testing.T) {
	svc, publisher := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Cancel(ctx, created.ID, "alice"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err == nil {
		t.Error("cancelled reservation should be gone")
	}
	if len(publisher.byType(events.TypeReservationCancelled)) != 1 {
		t.Error("expected a cancelled event")
	}

	// The freed slot is immediately bookable again.
	if _, err := svc.Create(ctx, "bob", draft("room-a", at(10), at(11))); err != nil {
		t.Errorf("slot should be free after cancel, got %v", err)
	}
}

func TestCancel_AbsentIDIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	if err := svc.Cancel(context.Background(), "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee", "alice"); err != nil {
		t.Errorf("cancelling an absent reservation must succeed, got %v", err)
	}
	if err := svc.Cancel(context.Background(), "not-even-a-uuid", "alice"); err != nil {
		t.Errorf("cancelling a malformed id must succeed, got %v", err)
	}
}

func TestCancel_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(11)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	assertCode(t, svc.Cancel(ctx, created.ID, "mallory"), apperrors.CodeForbidden)

	// Still there.
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Errorf("reservation should survive a forbidden cancel: %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(14), at(15))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "alice", draft("room-b", at(9), at(10))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "bob", draft("room-a", at(9), at(10))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := svc.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(mine))
	}
	if !mine[0].StartTime.Equal(at(9)) {
		t.Errorf("expected chronological order, got %+v", mine)
	}

	_, err = svc.ListByOwner(ctx, "")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestRoomSchedule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(9), at(10))); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "bob", draft("room-a", at(14), at(15))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	window, _ := model.NewInterval(at(13), at(16))
	schedule, err := svc.RoomSchedule(ctx, "room-a", &window)
	if err != nil {
		t.Fatalf("RoomSchedule: %v", err)
	}
	if len(schedule) != 1 || !schedule[0].StartTime.Equal(at(14)) {
		t.Errorf("expected only the afternoon reservation, got %+v", schedule)
	}

	_, err = svc.RoomSchedule(ctx, "room-z", nil)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestFreeSlots_ThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Create(ctx, "alice", draft("room-a", at(10), at(12))); err != nil {
		t.Fatalf("Create: %v", err)
	}

	slots, err := svc.FreeSlots(ctx, "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 free slots, got %+v", slots)
	}

	available, err := svc.IsFullDayAvailable(ctx, "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("IsFullDayAvailable: %v", err)
	}
	if available {
		t.Error("day with a reservation must not be fully available")
	}

	available, err = svc.IsFullDayAvailable(ctx, "room-b", day, time.UTC)
	if err != nil {
		t.Fatalf("IsFullDayAvailable: %v", err)
	}
	if !available {
		t.Error("untouched room should be fully available")
	}

	_, err = svc.FreeSlots(ctx, "room-z", day, time.UTC)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreate_NilPublisherIsAllowed(t *testing.T) {
	cfg := testConfig()
	svc := NewBookingService(
		repository.NewMemoryReservationStore(),
		repository.NewKeyedMutexLocker(),
		rooms.NewRegistry([]model.Room{{ID: "room-a", Name: "Conference Room A"}}),
		validator.NewReservationValidator(cfg.Log),
		nil,
		cfg,
	)

	if _, err := svc.Create(context.Background(), "alice", draft("room-a", at(10), at(11))); err != nil {
		t.Fatalf("Create without publisher: %v", err)
	}
}
