// Package testutil holds in-memory stores that stand in for the Postgres
// repositories in package tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/roster"
)

// ===========================
// 📦 Inventory
type InventoryStore struct {
	mu    sync.Mutex
	items map[uint]inventory.Equipment
	// FailIDs makes every mutation of the listed ids fail with the mapped error.
	FailIDs map[uint]error
}

func NewInventoryStore(items ...inventory.Equipment) *InventoryStore {
	s := &InventoryStore{items: map[uint]inventory.Equipment{}, FailIDs: map[uint]error{}}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *InventoryStore) Quantity(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Quantity
}

func (s *InventoryStore) FindByIDs(_ context.Context, ids []uint) ([]inventory.Equipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []inventory.Equipment
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *InventoryStore) Increment(_ context.Context, id uint, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailIDs[id]; err != nil {
		return 0, err
	}
	it, ok := s.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	it.Quantity += amount
	s.items[id] = it
	return it.Quantity, nil
}

func (s *InventoryStore) Decrement(_ context.Context, id uint, amount, floor int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailIDs[id]; err != nil {
		return 0, err
	}
	it, ok := s.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if floor < amount {
		floor = amount
	}
	if it.Quantity < floor {
		return 0, domain.ErrInsufficientInventory
	}
	it.Quantity -= amount
	s.items[id] = it
	return it.Quantity, nil
}

// ===========================
// 🏫 Rooms
type RoomStore struct {
	mu    sync.Mutex
	rooms map[uint]room.Room
	// FailIDs makes UpdateBookings of the listed ids fail with the mapped error.
	FailIDs map[uint]error
}

func NewRoomStore(rooms ...room.Room) *RoomStore {
	s := &RoomStore{rooms: map[uint]room.Room{}, FailIDs: map[uint]error{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *RoomStore) Bookings(id uint) []room.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]room.Booking{}, s.rooms[id].Events...)
}

func (s *RoomStore) FindByIDs(_ context.Context, ids []uint) ([]room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []room.Room
	for _, id := range ids {
		if r, ok := s.rooms[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RoomStore) UpdateBookings(_ context.Context, id uint, fn func(r *room.Room) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailIDs[id]; err != nil {
		return err
	}
	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Events = append([]room.Booking{}, r.Events...)
	changed, err := fn(&r)
	if err != nil || !changed {
		return err
	}
	r.Version++
	s.rooms[id] = r
	return nil
}

// ===========================
// 👥 Roster
type RosterStore struct {
	mu         sync.Mutex
	people     map[roster.Kind]map[uint]roster.Participant
	attendance map[roster.Kind]map[uint][]roster.Attendance
	// FailAdd makes AddAttendance fail for the listed participant ids.
	FailAdd map[uint]error
}

func NewRosterStore(people ...roster.Participant) *RosterStore {
	s := &RosterStore{
		people:     map[roster.Kind]map[uint]roster.Participant{},
		attendance: map[roster.Kind]map[uint][]roster.Attendance{},
		FailAdd:    map[uint]error{},
	}
	for _, p := range people {
		if s.people[p.Kind] == nil {
			s.people[p.Kind] = map[uint]roster.Participant{}
			s.attendance[p.Kind] = map[uint][]roster.Attendance{}
		}
		s.people[p.Kind][p.ID] = p
	}
	return s
}

func (s *RosterStore) Attendance(kind roster.Kind, id uint) []roster.Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]roster.Attendance{}, s.attendance[kind][id]...)
}

// Attends reports whether the participant references eventID.
func (s *RosterStore) Attends(kind roster.Kind, id, eventID uint) bool {
	for _, a := range s.Attendance(kind, id) {
		if a.EventID == eventID {
			return true
		}
	}
	return false
}

func (s *RosterStore) FindParticipants(_ context.Context, kind roster.Kind, ids []uint) ([]roster.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []roster.Participant
	for _, id := range ids {
		if p, ok := s.people[kind][id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *RosterStore) AddAttendance(_ context.Context, kind roster.Kind, id uint, a roster.Attendance) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailAdd[id]; err != nil {
		return false, err
	}
	if _, ok := s.people[kind][id]; !ok {
		return false, domain.ErrNotFound
	}
	for _, existing := range s.attendance[kind][id] {
		if existing.EventID == a.EventID {
			return false, nil
		}
	}
	s.attendance[kind][id] = append(s.attendance[kind][id], a)
	return true, nil
}

func (s *RosterStore) RemoveAttendance(_ context.Context, kind roster.Kind, id, eventID uint) (roster.Attendance, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[kind][id]; !ok {
		return roster.Attendance{}, false, domain.ErrNotFound
	}
	list := s.attendance[kind][id]
	for i, a := range list {
		if a.EventID == eventID {
			s.attendance[kind][id] = append(list[:i:i], list[i+1:]...)
			return a, true, nil
		}
	}
	return roster.Attendance{}, false, nil
}

// Seed records an existing back-reference without going through the engine.
func (s *RosterStore) Seed(kind roster.Kind, id uint, a roster.Attendance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[kind][id] = append(s.attendance[kind][id], a)
}

// sortedIDs is used by stores that list records in id order.
func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ErrInjected is the failure stores return when a test asks them to.
var ErrInjected = errors.New("injected failure")
