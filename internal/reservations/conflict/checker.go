// Package conflict decides whether a candidate interval collides with the
// existing schedule of a room. The checker only reads store snapshots; it
// never mutates anything.
package conflict

import (
	"context"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

// Lister is the slice of the reservation store the checker needs.
type Lister interface {
	ListByRoom(ctx context.Context, roomID string, window *model.Interval) ([]*model.Reservation, error)
}

type Checker struct {
	store Lister
}

func NewChecker(store Lister) *Checker {
	return &Checker{store: store}
}

// FindConflicts returns the reservations whose intervals overlap the
// candidate, ordered by start time. excludeID skips the reservation being
// edited so an update never conflicts with itself; pass "" for creates.
//
// The store already windows by the candidate interval, but results are
// re-checked with the half-open overlap rule so a store with loose
// windowing cannot produce false conflicts (adjacency in particular).
func (c *Checker) FindConflicts(ctx context.Context, roomID string, interval model.Interval, excludeID string) ([]*model.Reservation, error) {
	existing, err := c.store.ListByRoom(ctx, roomID, &interval)
	if err != nil {
		return nil, err
	}

	conflicts := make([]*model.Reservation, 0)
	for _, reservation := range existing {
		if excludeID != "" && reservation.ID == excludeID {
			continue
		}
		if !interval.Overlaps(reservation.Interval()) {
			continue
		}
		conflicts = append(conflicts, reservation)
	}
	return conflicts, nil
}

func (c *Checker) HasConflict(ctx context.Context, roomID string, interval model.Interval, excludeID string) (bool, error) {
	conflicts, err := c.FindConflicts(ctx, roomID, interval, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
