package rooms

import (
	"testing"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := NewRegistry([]model.Room{
		{ID: "room-b", Name: "Conference Room B"},
		{ID: "room-a", Name: "Conference Room A"},
	})

	if !reg.Known("room-a") {
		t.Error("expected room-a to be known")
	}
	if reg.Known("room-z") {
		t.Error("expected room-z to be unknown")
	}

	room, ok := reg.Get("room-b")
	if !ok || room.Name != "Conference Room B" {
		t.Errorf("Get(room-b) = %+v, %v", room, ok)
	}
}

func TestRegistry_ListOrderedByName(t *testing.T) {
	reg := NewRegistry([]model.Room{
		{ID: "c", Name: "Boardroom"},
		{ID: "a", Name: "Conference Room A"},
	})

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(list))
	}
	if list[0].Name != "Boardroom" || list[1].Name != "Conference Room A" {
		t.Errorf("unexpected order: %+v", list)
	}
}

func TestRegistry_DuplicateIDsKeepFirst(t *testing.T) {
	reg := NewRegistry([]model.Room{
		{ID: "a", Name: "First"},
		{ID: "a", Name: "Second"},
	})

	room, _ := reg.Get("a")
	if room.Name != "First" {
		t.Errorf("expected first entry to win, got %q", room.Name)
	}
	if len(reg.List()) != 1 {
		t.Errorf("expected 1 room, got %d", len(reg.List()))
	}
}
