package model

// Room is a bookable resource. Rooms are reference data owned by
// configuration; the booking engine never mutates them.
type Room struct {
	ID   string `json:"id" bson:"_id" validate:"required,min=1,max=100"`
	Name string `json:"name" bson:"name" validate:"required,min=1,max=200"`
}
