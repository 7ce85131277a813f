// Package rooms holds the immutable room catalog. Rooms are reference data
// owned by configuration; the booking engine only reads them.
package rooms

import (
	"sort"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/model"
)

type Registry struct {
	byID    map[string]model.Room
	ordered []model.Room
}

func NewRegistry(rooms []model.Room) *Registry {
	byID := make(map[string]model.Room, len(rooms))
	ordered := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		if _, exists := byID[room.ID]; exists {
			continue
		}
		byID[room.ID] = room
		ordered = append(ordered, room)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })
	return &Registry{byID: byID, ordered: ordered}
}

func (r *Registry) Get(id string) (model.Room, bool) {
	room, ok := r.byID[id]
	return room, ok
}

func (r *Registry) Known(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// List returns the catalog ordered by room name. The returned slice is a
// copy; callers may not mutate registry state through it.
func (r *Registry) List() []model.Room {
	out := make([]model.Room, len(r.ordered))
	copy(out, r.ordered)
	return out
}
