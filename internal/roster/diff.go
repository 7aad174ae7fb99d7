package roster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sharath018/event-resource-backend/internal/domain"
)

// Store is the persistence boundary of the diff engine.
type Store interface {
	FindParticipants(ctx context.Context, kind Kind, ids []uint) ([]Participant, error)
	// AddAttendance pushes a back-reference unless one for a.EventID exists.
	// It reports whether the record changed.
	AddAttendance(ctx context.Context, kind Kind, id uint, a Attendance) (bool, error)
	// RemoveAttendance pulls the back-reference for eventID and returns it.
	RemoveAttendance(ctx context.Context, kind Kind, id, eventID uint) (Attendance, bool, error)
}

// Transition is a roster change for one event.
type Transition struct {
	EventID          uint
	PreviousStaff    []StaffLine
	Staff            []StaffLine
	PreviousVisitors []VisitorLine
	Visitors         []VisitorLine
	// EventModified asks for an "edited" notice to every unchanged participant.
	EventModified bool
}

// Engine keeps participant back-references in step with event rosters.
type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// DiffStaff splits two staff rosters by participant id.
func DiffStaff(previous, next []StaffLine) Delta {
	prev := make([]Member, 0, len(previous))
	for _, l := range previous {
		prev = append(prev, Member{ID: l.StaffID, Kind: KindStaff, Role: l.Role})
	}
	nxt := make([]Member, 0, len(next))
	for _, l := range next {
		nxt = append(nxt, Member{ID: l.StaffID, Kind: KindStaff, Role: l.Role})
	}
	return diffMembers(prev, nxt)
}

// DiffVisitors splits two visitor rosters by participant id.
func DiffVisitors(previous, next []VisitorLine) Delta {
	prev := make([]Member, 0, len(previous))
	for _, l := range previous {
		prev = append(prev, Member{ID: l.VisitorID, Kind: KindVisitor})
	}
	nxt := make([]Member, 0, len(next))
	for _, l := range next {
		nxt = append(nxt, Member{ID: l.VisitorID, Kind: KindVisitor})
	}
	return diffMembers(prev, nxt)
}

func diffMembers(previous, next []Member) Delta {
	before := make(map[uint]bool, len(previous))
	for _, m := range previous {
		before[m.ID] = true
	}
	after := make(map[uint]bool, len(next))

	var d Delta
	for _, m := range next {
		if after[m.ID] {
			continue
		}
		after[m.ID] = true
		if before[m.ID] {
			d.Unchanged = append(d.Unchanged, m)
		} else {
			d.Added = append(d.Added, m)
		}
	}
	removed := make(map[uint]bool)
	for _, m := range previous {
		if after[m.ID] || removed[m.ID] {
			continue
		}
		removed[m.ID] = true
		d.Removed = append(d.Removed, m)
	}
	return d
}

type memberOutcome struct {
	change *AttendanceChange
	notice *Notice
	err    error
}

// Apply pushes back-references for added participants, pulls them for
// removed ones and builds the notices to send. Changes already made are
// returned in Applied even when err is non-nil so the caller can Revert.
func (e *Engine) Apply(ctx context.Context, t Transition) (DiffResult, error) {
	result := DiffResult{
		Staff:    DiffStaff(t.PreviousStaff, t.Staff),
		Visitors: DiffVisitors(t.PreviousVisitors, t.Visitors),
	}

	people, err := e.lookup(ctx, result.Staff, result.Visitors, t.EventModified)
	if err != nil {
		return result, err
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	collect := func(out memberOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if out.change != nil {
			result.Applied = append(result.Applied, *out.change)
		}
		if out.notice != nil {
			result.Notices = append(result.Notices, *out.notice)
		}
		if out.err != nil {
			errs = append(errs, out.err)
		}
	}

	for _, d := range []Delta{result.Staff, result.Visitors} {
		for _, m := range d.Removed {
			p, ok := people[key(m)]
			if !ok {
				log.Printf("⚠️ %s %d not found, skipping removal from event %d", m.Kind, m.ID, t.EventID)
				continue
			}
			wg.Add(1)
			go func(m Member, p Participant) {
				defer wg.Done()
				collect(e.remove(ctx, t.EventID, m, p))
			}(m, p)
		}
		for _, m := range d.Added {
			p, ok := people[key(m)]
			if !ok {
				log.Printf("⚠️ %s %d not found, skipping addition to event %d", m.Kind, m.ID, t.EventID)
				continue
			}
			wg.Add(1)
			go func(m Member, p Participant) {
				defer wg.Done()
				collect(e.add(ctx, t.EventID, m, p))
			}(m, p)
		}
		if t.EventModified {
			for _, m := range d.Unchanged {
				if p, ok := people[key(m)]; ok {
					collect(memberOutcome{notice: &Notice{Kind: NoticeEdited, Participant: p, Role: m.Role}})
				}
			}
		}
	}
	wg.Wait()

	return result, errors.Join(errs...)
}

func (e *Engine) add(ctx context.Context, eventID uint, m Member, p Participant) memberOutcome {
	added, err := e.store.AddAttendance(ctx, m.Kind, m.ID, Attendance{EventID: eventID, Role: m.Role})
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("⚠️ %s %d disappeared before it could join event %d", m.Kind, m.ID, eventID)
		return memberOutcome{}
	}
	if err != nil {
		log.Printf("❌ adding event %d to %s %d failed: %v", eventID, m.Kind, m.ID, err)
		return memberOutcome{err: fmt.Errorf("%s %d: %w", m.Kind, m.ID, err)}
	}
	out := memberOutcome{notice: &Notice{Kind: NoticeAdded, Participant: p, Role: m.Role}}
	if added {
		out.change = &AttendanceChange{Member: m, Added: true}
	}
	return out
}

func (e *Engine) remove(ctx context.Context, eventID uint, m Member, p Participant) memberOutcome {
	prev, removed, err := e.store.RemoveAttendance(ctx, m.Kind, m.ID, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("⚠️ %s %d disappeared before it could leave event %d", m.Kind, m.ID, eventID)
		return memberOutcome{}
	}
	if err != nil {
		log.Printf("❌ removing event %d from %s %d failed: %v", eventID, m.Kind, m.ID, err)
		return memberOutcome{err: fmt.Errorf("%s %d: %w", m.Kind, m.ID, err)}
	}
	out := memberOutcome{notice: &Notice{Kind: NoticeRemoved, Participant: p, Role: m.Role}}
	if removed {
		out.change = &AttendanceChange{Member: m, Previous: prev}
	}
	return out
}

// Revert undoes back-reference changes made by Apply.
func (e *Engine) Revert(ctx context.Context, eventID uint, applied []AttendanceChange) error {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)
	for _, ch := range applied {
		wg.Add(1)
		go func(ch AttendanceChange) {
			defer wg.Done()
			var err error
			if ch.Added {
				_, _, err = e.store.RemoveAttendance(ctx, ch.Member.Kind, ch.Member.ID, eventID)
			} else {
				prev := ch.Previous
				prev.EventID = eventID
				_, err = e.store.AddAttendance(ctx, ch.Member.Kind, ch.Member.ID, prev)
			}
			if err != nil {
				log.Printf("❌ reverting attendance of %s %d failed: %v", ch.Member.Kind, ch.Member.ID, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s %d: %w", ch.Member.Kind, ch.Member.ID, err))
				mu.Unlock()
			}
		}(ch)
	}
	wg.Wait()
	return errors.Join(errs...)
}

type memberKey struct {
	kind Kind
	id   uint
}

func key(m Member) memberKey {
	return memberKey{kind: m.Kind, id: m.ID}
}

func (e *Engine) lookup(ctx context.Context, staff, visitors Delta, modified bool) (map[memberKey]Participant, error) {
	out := make(map[memberKey]Participant)
	for _, d := range []Delta{staff, visitors} {
		members := append(append([]Member{}, d.Added...), d.Removed...)
		if modified {
			members = append(members, d.Unchanged...)
		}
		if len(members) == 0 {
			continue
		}
		ids := make([]uint, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		found, err := e.store.FindParticipants(ctx, members[0].Kind, ids)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", members[0].Kind, err)
		}
		for _, p := range found {
			out[memberKey{kind: p.Kind, id: p.ID}] = p
		}
	}
	return out, nil
}
