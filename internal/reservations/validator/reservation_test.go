package validator

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/logger"
	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

func newValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
}

func valid() *model.Reservation {
	return &model.Reservation{
		RoomID:    "room-a",
		OwnerID:   "alice",
		StartTime: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		Title:     "Design review",
	}
}

func TestValidate_AcceptsValidReservation(t *testing.T) {
	if err := newValidator().Validate(valid()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsMissingFields(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name   string
		mutate func(*model.Reservation)
		field  string
	}{
		{"missing room", func(r *model.Reservation) { r.RoomID = "" }, "RoomID"},
		{"missing owner", func(r *model.Reservation) { r.OwnerID = "" }, "OwnerID"},
		{"missing title", func(r *model.Reservation) { r.Title = "" }, "Title"},
		{"missing start", func(r *model.Reservation) { r.StartTime = time.Time{} }, "StartTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)

			err := v.Validate(r)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should mention %s, got %q", tt.field, err.Error())
			}
		})
	}
}

func TestValidate_RejectsNonPositiveInterval(t *testing.T) {
	v := newValidator()

	r := valid()
	r.EndTime = r.StartTime
	if err := v.Validate(r); err == nil {
		t.Error("zero-length reservation must be rejected")
	}

	r = valid()
	r.EndTime = r.StartTime.Add(-time.Hour)
	if err := v.Validate(r); err == nil {
		t.Error("inverted reservation must be rejected")
	}
}

func TestValidate_RejectsWhitespaceTitle(t *testing.T) {
	r := valid()
	r.Title = "   \t"
	if err := newValidator().Validate(r); err == nil {
		t.Error("whitespace-only title must be rejected")
	}
}

func TestValidate_RejectsOversizedFields(t *testing.T) {
	v := newValidator()

	r := valid()
	r.Title = strings.Repeat("x", 201)
	if err := v.Validate(r); err == nil {
		t.Error("title over 200 characters must be rejected")
	}

	r = valid()
	r.Description = strings.Repeat("x", 1001)
	if err := v.Validate(r); err == nil {
		t.Error("description over 1000 characters must be rejected")
	}
}

func TestValidate_RejectsMalformedID(t *testing.T) {
	r := valid()
	r.ID = "not-a-uuid"
	if err := newValidator().Validate(r); err == nil {
		t.Error("malformed id must be rejected")
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newValidator()

	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	if err := v.ValidateUpdate(&model.ReservationUpdate{StartTime: &start, EndTime: &end}); err != nil {
		t.Errorf("valid pair rejected: %v", err)
	}
	if err := v.ValidateUpdate(&model.ReservationUpdate{}); err != nil {
		t.Errorf("empty patch rejected: %v", err)
	}
	if err := v.ValidateUpdate(&model.ReservationUpdate{StartTime: &end, EndTime: &start}); err == nil {
		t.Error("inverted pair must be rejected")
	}

	long := strings.Repeat("x", 201)
	if err := v.ValidateUpdate(&model.ReservationUpdate{Title: long}); err == nil {
		t.Error("oversized title must be rejected")
	}
}

func TestValidationErrors_Message(t *testing.T) {
	errs := ValidationErrors{
		{Field: "Title", Message: "Title is required"},
		{Field: "RoomID", Message: "RoomID is required"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 error(s)") {
		t.Errorf("expected error count in message, got %q", msg)
	}
	if !strings.Contains(msg, "Title is required") {
		t.Errorf("expected field message, got %q", msg)
	}
}
