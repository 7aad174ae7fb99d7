package event

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sharath018/event-resource-backend/internal/auditlog"
	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/notification"
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/roster"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Store is the Event persistence boundary.
type Store interface {
	// ReserveID hands out the id the next Create will use, so resources can
	// reference the event before it is written.
	ReserveID(ctx context.Context) (uint, error)
	Create(ctx context.Context, e *Event) error
	Save(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uint) (*Event, error)
	Delete(ctx context.Context, id uint) error
}

type EquipmentAllocator interface {
	Reconcile(ctx context.Context, previous, next []inventory.Line) (inventory.AllocationResult, error)
	Restore(ctx context.Context, applied []inventory.Adjustment) error
}

type RoomScheduler interface {
	Schedule(ctx context.Context, eventID uint, eventName string, previous, next []room.Line, w room.Window) (room.ScheduleResult, error)
	Revert(ctx context.Context, eventID uint, changes []room.Change) error
}

type ParticipantDiffer interface {
	Apply(ctx context.Context, t roster.Transition) (roster.DiffResult, error)
	Revert(ctx context.Context, eventID uint, applied []roster.AttendanceChange) error
}

type RoomDirectory interface {
	FindByIDs(ctx context.Context, ids []uint) ([]room.Room, error)
}

type ParticipantDirectory interface {
	FindParticipants(ctx context.Context, kind roster.Kind, ids []uint) ([]roster.Participant, error)
}

// Notifier hands a batch off for delivery without waiting on it.
type Notifier interface {
	Dispatch(b notification.Batch)
}

// Actor identifies who triggered a run, for the audit trail.
type Actor struct {
	UserID *uint
	IP     string
}

type Deps struct {
	Events       Store
	Allocator    EquipmentAllocator
	Scheduler    RoomScheduler
	Differ       ParticipantDiffer
	Rooms        RoomDirectory
	Participants ParticipantDirectory
	Notifier     Notifier
	Audit        auditlog.Service
	Metrics      *Metrics
}

// Service is the event mutation orchestrator: it reconciles equipment, room
// bookings and rosters for a submitted event as one unit of work and
// compensates everything it applied when any part fails.
type Service struct {
	events       Store
	allocator    EquipmentAllocator
	scheduler    RoomScheduler
	differ       ParticipantDiffer
	rooms        RoomDirectory
	participants ParticipantDirectory
	notifier     Notifier
	audit        auditlog.Service
	metrics      *Metrics
}

func NewService(d Deps) *Service {
	return &Service{
		events:       d.Events,
		allocator:    d.Allocator,
		scheduler:    d.Scheduler,
		differ:       d.Differ,
		rooms:        d.Rooms,
		participants: d.Participants,
		notifier:     d.Notifier,
		audit:        d.Audit,
		metrics:      d.Metrics,
	}
}

// ===========================
// 🎯 Create Event
func (s *Service) Create(ctx context.Context, req *EventRequest, actor Actor) (*Result, error) {
	if err := req.Validate(); err != nil {
		s.metrics.observe(opCreate, "invalid")
		logAction(ctx, s.audit, actor, nil, auditlog.ActionEventCreated, requestDetails(req, err), "failure")
		return nil, err
	}

	id, err := s.events.ReserveID(ctx)
	if err != nil {
		log.Printf("❌ reserving event id failed: %v", err)
		s.metrics.observe(opCreate, "error")
		logAction(ctx, s.audit, actor, nil, auditlog.ActionEventCreated, requestDetails(req, err), "failure")
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	ev := &Event{ID: id, CreatedBy: actor.UserID}
	result, err := s.reconcile(ctx, opCreate, ev, nil, req)
	logAction(ctx, s.audit, actor, &id, auditlog.ActionEventCreated, resultDetails(req, result, err), statusOf(err))
	return result, err
}

// ===========================
// 🛠 Update Event
func (s *Service) Update(ctx context.Context, id uint, req *EventRequest, actor Actor) (*Result, error) {
	if err := req.Validate(); err != nil {
		s.metrics.observe(opUpdate, "invalid")
		logAction(ctx, s.audit, actor, &id, auditlog.ActionEventUpdated, requestDetails(req, err), "failure")
		return nil, err
	}

	current, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.observe(opUpdate, "not_found")
		} else {
			s.metrics.observe(opUpdate, "error")
		}
		return nil, fmt.Errorf("event %d: %w", id, err)
	}

	next := *current
	result, err := s.reconcile(ctx, opUpdate, &next, current, req)
	logAction(ctx, s.audit, actor, &id, auditlog.ActionEventUpdated, resultDetails(req, result, err), statusOf(err))
	return result, err
}

// ===========================
// 🔍 Get Event
func (s *Service) Get(ctx context.Context, id uint) (*Event, error) {
	return s.events.GetByID(ctx, id)
}

// reconcile runs the state machine for one submission. ev carries the id
// and is filled in and persisted on success; previous is nil on create.
func (s *Service) reconcile(ctx context.Context, op string, ev *Event, previous *Event, req *EventRequest) (*Result, error) {
	var prev Event
	if previous != nil {
		prev = *previous
	}
	result := &Result{}

	// VALIDATING_CAPACITY: a soft warning, never a stop.
	result.SoftWarning = s.checkCapacity(ctx, req.Rooms, req.Visitors)

	// ALLOCATING_EQUIPMENT and SCHEDULING_ROOMS run side by side.
	var (
		alloc    inventory.AllocationResult
		sched    room.ScheduleResult
		allocErr error
		schedErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		alloc, allocErr = s.allocator.Reconcile(ctx, prev.Equipment, req.Equipment)
	}()
	go func() {
		defer wg.Done()
		w := room.Window{Start: req.Date, End: req.EndDate}
		sched, schedErr = s.scheduler.Schedule(ctx, ev.ID, req.Name, prev.Rooms, req.Rooms, w)
	}()
	wg.Wait()

	result.Equipment = alloc.Lines
	result.EquipmentRejected = alloc.Rejected
	result.RoomsRejected = sched.Rejected
	s.metrics.rejectedLines("equipment", len(alloc.Rejected))
	s.metrics.rejectedLines("room", len(sched.Rejected))

	if allocErr != nil || schedErr != nil {
		log.Printf("❌ event %d %s aborted: %v", ev.ID, op, errors.Join(allocErr, schedErr))
		s.compensate(ctx, ev.ID, alloc.Applied, sched.Applied, nil)
		s.metrics.observe(op, "error")
		return result, fmt.Errorf("%w: %v", domain.ErrPersistence, errors.Join(allocErr, schedErr))
	}
	if alloc.Failed() || sched.Failed() {
		s.compensate(ctx, ev.ID, alloc.Applied, sched.Applied, nil)
		s.metrics.observe(op, "rejected")
		rerr := &ReconcileError{Result: result}
		log.Printf("⚠️ event %d %s rejected: %v", ev.ID, op, rerr)
		return result, rerr
	}

	// DIFFING_PARTICIPANTS
	diff, err := s.differ.Apply(ctx, roster.Transition{
		EventID:          ev.ID,
		PreviousStaff:    prev.StaffChosen,
		Staff:            req.Staff,
		PreviousVisitors: prev.Visitors,
		Visitors:         req.Visitors,
		EventModified:    previous != nil && modified(previous, req),
	})
	if err != nil {
		log.Printf("❌ event %d roster update failed: %v", ev.ID, err)
		s.compensate(ctx, ev.ID, alloc.Applied, sched.Applied, diff.Applied)
		s.metrics.observe(op, "error")
		return result, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// PERSISTING
	ev.Name = req.Name
	ev.Description = req.Description
	ev.EventTypeID = req.EventTypeID
	ev.Date = req.Date
	ev.EndDate = req.EndDate
	ev.Location = req.Location
	ev.Rooms = append([]room.Line{}, sched.Rooms...)
	ev.Equipment = append([]inventory.Line{}, alloc.Reserved()...)
	ev.StaffChosen = append([]roster.StaffLine{}, req.Staff...)
	ev.Visitors = append([]roster.VisitorLine{}, req.Visitors...)

	if previous == nil {
		err = s.events.Create(ctx, ev)
	} else {
		err = s.events.Save(ctx, ev)
	}
	if err != nil {
		log.Printf("❌ saving event %d failed, compensating: %v", ev.ID, err)
		s.compensate(ctx, ev.ID, alloc.Applied, sched.Applied, diff.Applied)
		s.metrics.observe(op, "error")
		return result, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	result.Event = ev

	// NOTIFYING
	if s.notifier != nil {
		s.notifier.Dispatch(buildBatch(ev, diff.Notices))
	}
	s.metrics.observe(op, "success")
	log.Printf("✅ event %d %s reconciled", ev.ID, op)
	return result, nil
}

// compensate reverts everything applied in a failed run.
func (s *Service) compensate(ctx context.Context, eventID uint, adjustments []inventory.Adjustment, changes []room.Change, attendance []roster.AttendanceChange) {
	var wg sync.WaitGroup
	if len(adjustments) > 0 {
		s.metrics.compensated("equipment")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.allocator.Restore(ctx, adjustments); err != nil {
				log.Printf("❌ event %d: equipment compensation incomplete: %v", eventID, err)
			}
		}()
	}
	if len(changes) > 0 {
		s.metrics.compensated("room")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.scheduler.Revert(ctx, eventID, changes); err != nil {
				log.Printf("❌ event %d: room compensation incomplete: %v", eventID, err)
			}
		}()
	}
	if len(attendance) > 0 {
		s.metrics.compensated("participant")
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.differ.Revert(ctx, eventID, attendance); err != nil {
				log.Printf("❌ event %d: roster compensation incomplete: %v", eventID, err)
			}
		}()
	}
	wg.Wait()
}

// checkCapacity compares the booked rooms' capacity with the submitted
// visitor group sizes and returns a warning when they do not fit.
func (s *Service) checkCapacity(ctx context.Context, rooms []room.Line, visitors []roster.VisitorLine) string {
	if len(visitors) == 0 || s.rooms == nil || s.participants == nil {
		return ""
	}

	visitorIDs := make([]uint, 0, len(visitors))
	for _, v := range visitors {
		visitorIDs = append(visitorIDs, v.VisitorID)
	}
	groups, err := s.participants.FindParticipants(ctx, roster.KindVisitor, visitorIDs)
	if err != nil {
		log.Printf("⚠️ capacity check skipped, visitors not loaded: %v", err)
		return ""
	}
	people := 0
	for _, g := range groups {
		people += g.GroupSize
	}

	capacity := 0
	if len(rooms) > 0 {
		roomIDs := make([]uint, 0, len(rooms))
		for _, r := range rooms {
			roomIDs = append(roomIDs, r.RoomID)
		}
		found, err := s.rooms.FindByIDs(ctx, roomIDs)
		if err != nil {
			log.Printf("⚠️ capacity check skipped, rooms not loaded: %v", err)
			return ""
		}
		for _, r := range found {
			capacity += r.Capacity
		}
	}

	if capacity >= people {
		return ""
	}
	return fmt.Sprintf("booked rooms hold %d people but visitor groups total %d", capacity, people)
}

// modified reports whether anything participants are told about changed.
func modified(prev *Event, req *EventRequest) bool {
	if prev.Name != req.Name || prev.Description != req.Description || prev.Location != req.Location {
		return true
	}
	if !prev.Date.Equal(req.Date) {
		return true
	}
	if (prev.EndDate == nil) != (req.EndDate == nil) {
		return true
	}
	if prev.EndDate != nil && !prev.EndDate.Equal(*req.EndDate) {
		return true
	}
	if len(prev.Rooms) != len(req.Rooms) {
		return true
	}
	had := make(map[uint]bool, len(prev.Rooms))
	for _, r := range prev.Rooms {
		had[r.RoomID] = true
	}
	for _, r := range req.Rooms {
		if !had[r.RoomID] {
			return true
		}
	}
	return false
}

func statusOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func requestDetails(req *EventRequest, err error) map[string]interface{} {
	details := map[string]interface{}{
		"name":      req.Name,
		"date":      req.Date,
		"equipment": len(req.Equipment),
		"rooms":     len(req.Rooms),
		"staff":     len(req.Staff),
		"visitors":  len(req.Visitors),
	}
	if err != nil {
		details["error"] = err.Error()
	}
	return details
}

func resultDetails(req *EventRequest, result *Result, err error) map[string]interface{} {
	details := requestDetails(req, err)
	if result != nil {
		details["equipment_rejected"] = result.EquipmentRejected
		details["rooms_rejected"] = result.RoomsRejected
		if result.SoftWarning != "" {
			details["soft_warning"] = result.SoftWarning
		}
	}
	return details
}

func logAction(ctx context.Context, audit auditlog.Service, actor Actor, eventID *uint, action string, details map[string]interface{}, status string) {
	if audit == nil {
		return
	}
	if err := audit.LogAction(ctx, actor.UserID, eventID, action, details, actor.IP, status); err != nil {
		log.Printf("❌ Audit log error: %v", err)
	}
}
