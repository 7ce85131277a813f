package availability

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

type mockLister struct {
	ListByRoomFunc func(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error)
}

func (m *mockLister) ListByRoom(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error) {
	return m.ListByRoomFunc(ctx, roomID, window)
}

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func busy(id string, start, end time.Time) *model.Reservation {
	return &model.Reservation{
		ID:        id,
		RoomID:    "room-a",
		OwnerID:   "alice",
		StartTime: start,
		EndTime:   end,
		Title:     "Busy",
	}
}

func plannerWith(reservations ...*model.Reservation) *Planner {
	return NewPlanner(&mockLister{
		ListByRoomFunc: func(_ context.Context, _ string, _ *model.Interval) ([]*model.Reservation, error) {
			return reservations, nil
		},
	})
}

func assertSlots(t *testing.T, got []model.Interval, want []model.Interval) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("slot %d = [%v, %v), want [%v, %v)", i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestFreeSlots_EmptyDayIsOneFullSlot(t *testing.T) {
	planner := plannerWith()

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	assertSlots(t, slots, []model.Interval{model.FullDay(day, time.UTC)})
}

func TestFreeSlots_SingleReservationSplitsDay(t *testing.T) {
	planner := plannerWith(busy("r1", at(10), at(12)))

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	assertSlots(t, slots, []model.Interval{
		{Start: at(0), End: at(10)},
		{Start: at(12), End: at(24)},
	})
}

func TestFreeSlots_MergesOverlappingAndAdjacentBlocks(t *testing.T) {
	planner := plannerWith(
		busy("r1", at(9), at(11)),
		busy("r2", at(10), at(12)),
		busy("r3", at(12), at(13)),
		busy("r4", at(15), at(16)),
	)

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	assertSlots(t, slots, []model.Interval{
		{Start: at(0), End: at(9)},
		{Start: at(13), End: at(15)},
		{Start: at(16), End: at(24)},
	})
}

func TestFreeSlots_ClampsBlocksSpanningMidnight(t *testing.T) {
	planner := plannerWith(
		busy("overnight", day.Add(-2*time.Hour), at(1)),
		busy("late", at(23), at(26)),
	)

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	assertSlots(t, slots, []model.Interval{
		{Start: at(1), End: at(23)},
	})
}

func TestFreeSlots_FullyBookedDayIsEmpty(t *testing.T) {
	planner := plannerWith(busy("all-day", at(0), at(24)))

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("fully booked day should yield no slots, got %+v", slots)
	}
}

func TestFreeSlots_SlotsAreChronological(t *testing.T) {
	planner := plannerWith(
		busy("r2", at(14), at(15)),
		busy("r1", at(8), at(9)),
	)

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].End.Before(slots[i].Start) && !slots[i-1].End.Equal(slots[i].Start) {
			t.Errorf("slots out of order: %+v", slots)
		}
	}
}

func TestFreeSlots_UnionWithBusyBlocksReconstructsDay(t *testing.T) {
	reservations := []*model.Reservation{
		busy("r1", at(9), at(11)),
		busy("r2", at(10), at(12)),
		busy("r3", at(12), at(13)),
		busy("r4", at(18), at(20)),
		busy("overnight", day.Add(-time.Hour), at(1)),
	}
	planner := plannerWith(reservations...)

	slots, err := planner.FreeSlots(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}

	dayInterval := model.FullDay(day, time.UTC)

	// No free slot may share an instant with any reservation.
	for _, slot := range slots {
		for _, r := range reservations {
			if slot.Overlaps(r.Interval()) {
				t.Errorf("slot [%v, %v) overlaps reservation %s", slot.Start, slot.End, r.ID)
			}
		}
	}

	// Free slots plus busy intervals (clamped to the day) must cover the
	// whole day with no gap left over.
	segments := make([]model.Interval, 0, len(slots)+len(reservations))
	segments = append(segments, slots...)
	for _, r := range reservations {
		ivl := r.Interval()
		if !ivl.Overlaps(dayInterval) {
			continue
		}
		if ivl.Start.Before(dayInterval.Start) {
			ivl.Start = dayInterval.Start
		}
		if ivl.End.After(dayInterval.End) {
			ivl.End = dayInterval.End
		}
		segments = append(segments, ivl)
	}
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start.Before(segments[j].Start)
	})

	cursor := dayInterval.Start
	for _, seg := range segments {
		if seg.Start.After(cursor) {
			t.Fatalf("uncovered gap [%v, %v)", cursor, seg.Start)
		}
		if seg.End.After(cursor) {
			cursor = seg.End
		}
	}
	if cursor.Before(dayInterval.End) {
		t.Fatalf("day not covered past %v", cursor)
	}
}

func TestIsFullDayAvailable(t *testing.T) {
	free := plannerWith()
	available, err := free.IsFullDayAvailable(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("IsFullDayAvailable: %v", err)
	}
	if !available {
		t.Error("empty schedule should leave the full day available")
	}

	booked := plannerWith(busy("r1", at(10), at(10).Add(time.Minute)))
	available, err = booked.IsFullDayAvailable(context.Background(), "room-a", day, time.UTC)
	if err != nil {
		t.Fatalf("IsFullDayAvailable: %v", err)
	}
	if available {
		t.Error("a single reservation must block full-day availability")
	}
}
