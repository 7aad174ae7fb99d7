package testutil

import (
	"context"
	"sync"

	"github.com/sharath018/event-resource-backend/internal/auditlog"
	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/event"
	"github.com/sharath018/event-resource-backend/internal/notification"
)

// ===========================
// 🗓 Events and archives
type EventStore struct {
	mu       sync.Mutex
	nextID   uint
	events   map[uint]event.Event
	archives map[uint]event.Archive
	archSeq  uint

	FailCreate  error
	FailSave    error
	FailDelete  error
	FailArchive error
}

func NewEventStore() *EventStore {
	return &EventStore{nextID: 1, events: map[uint]event.Event{}, archives: map[uint]event.Archive{}}
}

func (s *EventStore) ReserveID(context.Context) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *EventStore) Create(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return s.FailCreate
	}
	s.events[e.ID] = *e
	return nil
}

func (s *EventStore) Save(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.events[e.ID] = *e
	return nil
}

func (s *EventStore) GetByID(_ context.Context, id uint) (*event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (s *EventStore) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete != nil {
		return s.FailDelete
	}
	if _, ok := s.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// Put stores an event directly, bypassing reconciliation.
func (s *EventStore) Put(e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	if e.ID >= s.nextID {
		s.nextID = e.ID + 1
	}
}

func (s *EventStore) Has(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[id]
	return ok
}

func (s *EventStore) CreateArchive(_ context.Context, a *event.Archive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailArchive != nil {
		return s.FailArchive
	}
	s.archSeq++
	a.ID = s.archSeq
	s.archives[a.ID] = *a
	return nil
}

func (s *EventStore) ListArchives(_ context.Context, limit, offset int) ([]event.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Archive
	for _, id := range sortedIDs(s.archives) {
		out = append(out, s.archives[id])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *EventStore) GetArchive(_ context.Context, id uint) (*event.Archive, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.archives[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *EventStore) DeleteArchive(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.archives[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.archives, id)
	return nil
}

func (s *EventStore) ArchiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.archives)
}

// ===========================
// 🔔 Notifier records dispatched batches.
type Notifier struct {
	mu      sync.Mutex
	Batches []notification.Batch
}

func (n *Notifier) Dispatch(b notification.Batch) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Batches = append(n.Batches, b)
}

// Pushes flattens every dispatched push instruction.
func (n *Notifier) Pushes() []notification.Push {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Push
	for _, b := range n.Batches {
		out = append(out, b.Push...)
	}
	return out
}

// ===========================
// 📝 Audit records LogAction calls.
type AuditEntry struct {
	UserID  *uint
	EventID *uint
	Action  string
	Details map[string]interface{}
	Status  string
}

type Audit struct {
	mu      sync.Mutex
	Entries []AuditEntry
}

var _ auditlog.Service = (*Audit)(nil)

func (a *Audit) LogAction(_ context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, _ string, status string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, AuditEntry{UserID: userID, EventID: eventID, Action: action, Details: details, Status: status})
	return nil
}

func (a *Audit) GetAuditLogs(context.Context, auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return &auditlog.PaginatedAuditLogs{}, nil
}

func (a *Audit) GetAuditLogByID(context.Context, uint) (*auditlog.AuditLog, error) {
	return nil, domain.ErrNotFound
}

func (a *Audit) Last() AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.Entries) == 0 {
		return AuditEntry{}
	}
	return a.Entries[len(a.Entries)-1]
}

func (s *EventStore) List(_ context.Context, limit, offset int, _ string) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Event
	for _, id := range sortedIDs(s.events) {
		out = append(out, s.events[id])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
