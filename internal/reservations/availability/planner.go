// Package availability computes the free/busy structure of a room's day.
// Like the conflict checker it is pure over a store snapshot.
package availability

import (
	"context"
	"sort"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/internal/reservations/conflict"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

type Planner struct {
	store conflict.Lister
}

func NewPlanner(store conflict.Lister) *Planner {
	return &Planner{store: store}
}

// FreeSlots returns the gaps of the room's day in chronological order: the
// day interval minus the merged union of reservations overlapping it.
// A fully booked day yields an empty slice, not an error.
func (p *Planner) FreeSlots(ctx context.Context, roomID string, day time.Time, loc *time.Location) ([]model.Interval, error) {
	dayInterval := model.FullDay(day, loc)

	reservations, err := p.store.ListByRoom(ctx, roomID, &dayInterval)
	if err != nil {
		return nil, err
	}

	busy := mergeIntervals(reservations)
	return subtract(dayInterval, busy), nil
}

// IsFullDayAvailable reports whether the day is completely free, i.e. the
// free slots are exactly the single full-day interval.
func (p *Planner) IsFullDayAvailable(ctx context.Context, roomID string, day time.Time, loc *time.Location) (bool, error) {
	slots, err := p.FreeSlots(ctx, roomID, day, loc)
	if err != nil {
		return false, err
	}
	return len(slots) == 1 && slots[0].Equal(model.FullDay(day, loc)), nil
}

// mergeIntervals sorts by start and coalesces overlapping or adjacent
// reservations into maximal busy blocks.
func mergeIntervals(reservations []*model.Reservation) []model.Interval {
	if len(reservations) == 0 {
		return nil
	}

	intervals := make([]model.Interval, 0, len(reservations))
	for _, r := range reservations {
		intervals = append(intervals, r.Interval())
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].Start.Before(intervals[j].Start)
	})

	merged := []model.Interval{intervals[0]}
	for _, ivl := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !ivl.Start.After(last.End) {
			if ivl.End.After(last.End) {
				last.End = ivl.End
			}
			continue
		}
		merged = append(merged, ivl)
	}
	return merged
}

// subtract removes the sorted, disjoint busy blocks from the day window and
// returns the remaining positive-length gaps.
func subtract(day model.Interval, busy []model.Interval) []model.Interval {
	free := make([]model.Interval, 0, len(busy)+1)
	cursor := day.Start

	for _, block := range busy {
		if !block.Overlaps(day) {
			continue
		}
		start := block.Start
		if start.Before(day.Start) {
			start = day.Start
		}
		if cursor.Before(start) {
			free = append(free, model.Interval{Start: cursor, End: start})
		}
		if block.End.After(cursor) {
			cursor = block.End
		}
	}

	if cursor.Before(day.End) {
		free = append(free, model.Interval{Start: cursor, End: day.End})
	}
	return free
}
