package room

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sharath018/event-resource-backend/internal/domain"
)

// Store is the persistence boundary of the scheduler.
type Store interface {
	FindByIDs(ctx context.Context, ids []uint) ([]Room, error)
	// UpdateBookings loads the room, lets fn edit room.Events and persists the
	// result only if fn reports a change. fn may run more than once when the
	// row changed underneath it; an error from fn aborts without writing.
	UpdateBookings(ctx context.Context, id uint, fn func(room *Room) (bool, error)) error
}

// Scheduler admits or rejects room bookings for events.
type Scheduler struct {
	store Store
}

func NewScheduler(store Store) *Scheduler {
	return &Scheduler{store: store}
}

type roomOutcome struct {
	name    string
	change  *Change
	missing bool
	err     error
}

// Schedule books every room in next for the event over w, releases rooms in
// previous that are no longer wanted, and reschedules the event's own
// existing bookings. Rooms whose bookings conflict are reported in Rejected
// and left untouched. Store failures on any room, booked or released, come
// back joined in err; Applied still lists what did change so the caller can
// Revert it.
func (s *Scheduler) Schedule(ctx context.Context, eventID uint, eventName string, previous, next []Line, w Window) (ScheduleResult, error) {
	wanted := make(map[uint]bool, len(next))
	for _, l := range next {
		wanted[l.RoomID] = true
	}

	var released []uint
	for _, l := range previous {
		if !wanted[l.RoomID] {
			released = append(released, l.RoomID)
		}
	}

	outcomes := make(map[uint]*roomOutcome, len(next)+len(released))
	var mu sync.Mutex
	var wg sync.WaitGroup

	record := func(id uint, out *roomOutcome) {
		mu.Lock()
		outcomes[id] = out
		mu.Unlock()
	}

	for _, id := range released {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			record(id, s.release(ctx, id, eventID))
		}(id)
	}

	booked := make(map[uint]bool, len(next))
	for _, l := range next {
		if booked[l.RoomID] {
			continue
		}
		booked[l.RoomID] = true
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			record(id, s.book(ctx, id, eventID, eventName, w))
		}(l.RoomID)
	}
	wg.Wait()

	var (
		result ScheduleResult
		errs   []error
	)
	for _, id := range released {
		out := outcomes[id]
		if out == nil {
			continue
		}
		if out.change != nil {
			result.Applied = append(result.Applied, *out.change)
		}
		if out.err != nil {
			errs = append(errs, fmt.Errorf("release room %d: %w", id, out.err))
		}
	}
	seen := make(map[uint]bool, len(next))
	for _, l := range next {
		if seen[l.RoomID] {
			continue
		}
		seen[l.RoomID] = true
		out := outcomes[l.RoomID]
		switch {
		case out == nil || out.missing:
			continue
		case errors.Is(out.err, domain.ErrRoomConflict):
			result.Rejected = append(result.Rejected, domain.Ref{ID: l.RoomID, Name: out.name})
		case out.err != nil:
			errs = append(errs, fmt.Errorf("book room %d: %w", l.RoomID, out.err))
		default:
			if out.change != nil {
				result.Applied = append(result.Applied, *out.change)
			}
			result.Rooms = append(result.Rooms, l)
		}
	}
	return result, errors.Join(errs...)
}

func (s *Scheduler) book(ctx context.Context, id, eventID uint, eventName string, w Window) *roomOutcome {
	out := &roomOutcome{}
	err := s.store.UpdateBookings(ctx, id, func(room *Room) (bool, error) {
		out.name = room.Name
		out.change = nil

		if b, ok := FirstConflict(room.Events, eventID, w); ok {
			return false, fmt.Errorf("%w: %s already holds event %d", domain.ErrRoomConflict, room.Name, b.EventID)
		}

		booking := Booking{EventID: eventID, EventName: eventName, Date: w.Start, EndDate: w.End}
		for i, b := range room.Events {
			if b.EventID != eventID {
				continue
			}
			if sameInterval(b, w) && b.EventName == eventName {
				return false, nil
			}
			prev := b
			room.Events[i] = booking
			out.change = &Change{RoomID: id, Kind: ChangeRescheduled, Previous: &prev}
			return true, nil
		}

		room.Events = append(room.Events, booking)
		out.change = &Change{RoomID: id, Kind: ChangeAdded}
		return true, nil
	})
	if err != nil {
		out.change = nil
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("⚠️ room %d not found, skipping booking for event %d", id, eventID)
			out.missing = true
			return out
		}
		if !errors.Is(err, domain.ErrRoomConflict) {
			log.Printf("❌ booking room %d for event %d failed: %v", id, eventID, err)
		}
		out.err = err
	}
	return out
}

func (s *Scheduler) release(ctx context.Context, id, eventID uint) *roomOutcome {
	out := &roomOutcome{}
	err := s.store.UpdateBookings(ctx, id, func(room *Room) (bool, error) {
		out.name = room.Name
		out.change = nil
		kept := room.Events[:0:0]
		for _, b := range room.Events {
			if b.EventID == eventID {
				prev := b
				out.change = &Change{RoomID: id, Kind: ChangeReleased, Previous: &prev}
				continue
			}
			kept = append(kept, b)
		}
		if out.change == nil {
			return false, nil
		}
		room.Events = kept
		return true, nil
	})
	if err != nil {
		out.change = nil
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("⚠️ room %d not found, nothing to release for event %d", id, eventID)
			out.missing = true
			return out
		}
		log.Printf("❌ releasing room %d for event %d failed: %v", id, eventID, err)
		out.err = err
	}
	return out
}

// Revert undoes changes recorded by Schedule.
func (s *Scheduler) Revert(ctx context.Context, eventID uint, changes []Change) error {
	var mu sync.Mutex
	var errs []error
	var wg sync.WaitGroup

	for _, ch := range changes {
		wg.Add(1)
		go func(ch Change) {
			defer wg.Done()
			err := s.store.UpdateBookings(ctx, ch.RoomID, func(room *Room) (bool, error) {
				return revertChange(room, eventID, ch), nil
			})
			if err != nil {
				log.Printf("❌ reverting %s booking on room %d failed: %v", ch.Kind, ch.RoomID, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("room %d: %w", ch.RoomID, err))
				mu.Unlock()
			}
		}(ch)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func revertChange(room *Room, eventID uint, ch Change) bool {
	switch ch.Kind {
	case ChangeAdded:
		return pullEvent(room, eventID)
	case ChangeRescheduled:
		for i, b := range room.Events {
			if b.EventID == eventID && ch.Previous != nil {
				room.Events[i] = *ch.Previous
				return true
			}
		}
	case ChangeReleased:
		for _, b := range room.Events {
			if b.EventID == eventID {
				return false
			}
		}
		if ch.Previous != nil {
			room.Events = append(room.Events, *ch.Previous)
			return true
		}
	}
	return false
}

// Release pulls every booking the event holds on the given rooms.
func (s *Scheduler) Release(ctx context.Context, eventID uint, lines []Line) error {
	result, err := s.Schedule(ctx, eventID, "", lines, nil, Window{})
	if err != nil {
		return fmt.Errorf("release rooms of event %d: %w", eventID, err)
	}
	released := 0
	for _, ch := range result.Applied {
		if ch.Kind == ChangeReleased {
			released++
		}
	}
	if released < len(lines) {
		log.Printf("⚠️ event %d: released %d of %d room bookings", eventID, released, len(lines))
	}
	return nil
}

func pullEvent(room *Room, eventID uint) bool {
	kept := room.Events[:0:0]
	for _, b := range room.Events {
		if b.EventID != eventID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(room.Events) {
		return false
	}
	room.Events = kept
	return true
}
