package model

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when an interval would be empty or inverted.
var ErrInvalidRange = errors.New("interval end must be after start")

// Interval is a half-open time range [Start, End). Two intervals that only
// touch at a boundary (a.End == b.Start) do not overlap, so back-to-back
// reservations are allowed.
type Interval struct {
	Start time.Time `json:"start_time" bson:"start_time"`
	End   time.Time `json:"end_time" bson:"end_time"`
}

// NewInterval builds an interval, rejecting zero-length and inverted ranges.
func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidRange
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open ranges share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t falls inside the half-open range.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) IsZero() bool {
	return i.Start.IsZero() && i.End.IsZero()
}

func (i Interval) Equal(other Interval) bool {
	return i.Start.Equal(other.Start) && i.End.Equal(other.End)
}

// FullDay returns the [midnight, midnight+24h) interval covering day in the
// given location, expressed as UTC instants.
func FullDay(day time.Time, loc *time.Location) Interval {
	if loc == nil {
		loc = time.UTC
	}
	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Interval{
		Start: start.UTC(),
		End:   start.Add(24 * time.Hour).UTC(),
	}
}
