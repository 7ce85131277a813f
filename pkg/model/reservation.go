package model

import (
	"time"
)

type Reservation struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	RoomID      string    `json:"room_id" bson:"room_id" validate:"required,min=1,max=100"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required,min=1,max=100"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Title       string    `json:"title" bson:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Interval returns the reserved time range as a half-open interval.
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// ReservationUpdate is a partial patch; nil/empty fields keep the existing
// value. RoomID and OwnerID are immutable through updates.
type ReservationUpdate struct {
	StartTime   *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Title       string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
}
