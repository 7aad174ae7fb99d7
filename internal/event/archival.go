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
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/roster"
)

type ArchiveStore interface {
	CreateArchive(ctx context.Context, a *Archive) error
	ListArchives(ctx context.Context, limit, offset int) ([]Archive, error)
	GetArchive(ctx context.Context, id uint) (*Archive, error)
	DeleteArchive(ctx context.Context, id uint) error
}

type EquipmentReleaser interface {
	Release(ctx context.Context, lines []inventory.Line) error
}

type RoomReleaser interface {
	Release(ctx context.Context, eventID uint, lines []room.Line) error
}

type EquipmentDirectory interface {
	FindByIDs(ctx context.Context, ids []uint) ([]inventory.Equipment, error)
}

type CoordinatorDeps struct {
	Events       Store
	Archives     ArchiveStore
	Equipment    EquipmentReleaser
	Rooms        RoomReleaser
	Differ       ParticipantDiffer
	EquipmentDir EquipmentDirectory
	RoomDir      RoomDirectory
	Participants ParticipantDirectory
	Notifier     Notifier
	Audit        auditlog.Service
	Metrics      *Metrics
}

// Coordinator deletes events after releasing everything they hold, and
// manages the archive snapshots deletion can leave behind.
type Coordinator struct {
	events       Store
	archives     ArchiveStore
	equipment    EquipmentReleaser
	rooms        RoomReleaser
	differ       ParticipantDiffer
	equipmentDir EquipmentDirectory
	roomDir      RoomDirectory
	participants ParticipantDirectory
	notifier     Notifier
	audit        auditlog.Service
	metrics      *Metrics
}

func NewCoordinator(d CoordinatorDeps) *Coordinator {
	return &Coordinator{
		events:       d.Events,
		archives:     d.Archives,
		equipment:    d.Equipment,
		rooms:        d.Rooms,
		differ:       d.Differ,
		equipmentDir: d.EquipmentDir,
		roomDir:      d.RoomDir,
		participants: d.Participants,
		notifier:     d.Notifier,
		audit:        d.Audit,
		metrics:      d.Metrics,
	}
}

// ===========================
// ❌ Delete Event
//
// Releases run concurrently and are best effort: a failed release is
// logged and does not stop the deletion. The event row is removed only
// after every release has been issued.
func (c *Coordinator) Delete(ctx context.Context, id uint, archive bool, actor Actor) (*Archive, error) {
	ev, err := c.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.metrics.observe(opDelete, "not_found")
		} else {
			c.metrics.observe(opDelete, "error")
		}
		return nil, fmt.Errorf("event %d: %w", id, err)
	}

	var snapshot *Archive
	if archive {
		snapshot = c.snapshot(ctx, ev)
		if err := c.archives.CreateArchive(ctx, snapshot); err != nil {
			log.Printf("❌ archiving event %d failed, nothing released: %v", id, err)
			c.metrics.observe(opDelete, "error")
			c.logDelete(ctx, actor, ev, archive, err)
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
	}

	var (
		wg   sync.WaitGroup
		diff roster.DiffResult
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := c.equipment.Release(ctx, ev.Equipment); err != nil {
			log.Printf("⚠️ event %d: equipment release incomplete: %v", id, err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := c.rooms.Release(ctx, ev.ID, ev.Rooms); err != nil {
			log.Printf("⚠️ event %d: room release incomplete: %v", id, err)
		}
	}()
	go func() {
		defer wg.Done()
		d, err := c.differ.Apply(ctx, roster.Transition{
			EventID:          ev.ID,
			PreviousStaff:    ev.StaffChosen,
			PreviousVisitors: ev.Visitors,
		})
		if err != nil {
			log.Printf("⚠️ event %d: roster release incomplete: %v", id, err)
		}
		diff = d
	}()
	wg.Wait()

	if err := c.events.Delete(ctx, ev.ID); err != nil {
		log.Printf("❌ event %d released its resources but could not be deleted: %v", id, err)
		if snapshot != nil {
			if aerr := c.archives.DeleteArchive(ctx, snapshot.ID); aerr != nil {
				log.Printf("⚠️ orphan archive %d left for event %d: %v", snapshot.ID, id, aerr)
			}
		}
		c.metrics.observe(opDelete, "error")
		c.logDelete(ctx, actor, ev, archive, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if c.notifier != nil {
		c.notifier.Dispatch(buildBatch(ev, diff.Notices))
	}
	c.metrics.observe(opDelete, "success")
	c.logDelete(ctx, actor, ev, archive, nil)
	log.Printf("✅ event %d deleted (archived: %t)", id, archive)
	return snapshot, nil
}

func (c *Coordinator) logDelete(ctx context.Context, actor Actor, ev *Event, archive bool, err error) {
	details := map[string]interface{}{
		"name":     ev.Name,
		"archived": archive,
	}
	if err != nil {
		details["error"] = err.Error()
	}
	logAction(ctx, c.audit, actor, &ev.ID, auditlog.ActionEventDeleted, details, statusOf(err))
}

// snapshot copies ev with every reference resolved to a display name.
// References that no longer resolve are kept as "#id".
func (c *Coordinator) snapshot(ctx context.Context, ev *Event) *Archive {
	a := &Archive{
		EventID:     ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Date:        ev.Date,
		EndDate:     ev.EndDate,
		Location:    ev.Location,
		Rooms:       []string{},
		Equipment:   []ArchivedEquipment{},
		Staff:       []ArchivedStaff{},
		Visitors:    []string{},
	}

	equipmentNames := map[uint]string{}
	if c.equipmentDir != nil && len(ev.Equipment) > 0 {
		ids := make([]uint, 0, len(ev.Equipment))
		for _, l := range ev.Equipment {
			ids = append(ids, l.EquipmentID)
		}
		items, err := c.equipmentDir.FindByIDs(ctx, ids)
		if err != nil {
			log.Printf("⚠️ archive of event %d: equipment names not resolved: %v", ev.ID, err)
		}
		for _, it := range items {
			equipmentNames[it.ID] = it.TypeName
		}
	}
	for _, l := range ev.Equipment {
		a.Equipment = append(a.Equipment, ArchivedEquipment{Name: nameOr(equipmentNames, l.EquipmentID), Quantity: l.Quantity})
	}

	roomNames := map[uint]string{}
	if c.roomDir != nil && len(ev.Rooms) > 0 {
		ids := make([]uint, 0, len(ev.Rooms))
		for _, l := range ev.Rooms {
			ids = append(ids, l.RoomID)
		}
		rooms, err := c.roomDir.FindByIDs(ctx, ids)
		if err != nil {
			log.Printf("⚠️ archive of event %d: room names not resolved: %v", ev.ID, err)
		}
		for _, r := range rooms {
			roomNames[r.ID] = r.Name
		}
	}
	for _, l := range ev.Rooms {
		a.Rooms = append(a.Rooms, nameOr(roomNames, l.RoomID))
	}

	staffIDs := make([]uint, 0, len(ev.StaffChosen))
	for _, l := range ev.StaffChosen {
		staffIDs = append(staffIDs, l.StaffID)
	}
	staffNames := c.participantNames(ctx, ev.ID, roster.KindStaff, staffIDs)
	for _, l := range ev.StaffChosen {
		a.Staff = append(a.Staff, ArchivedStaff{Name: nameOr(staffNames, l.StaffID), Role: l.Role})
	}

	visitorIDs := make([]uint, 0, len(ev.Visitors))
	for _, l := range ev.Visitors {
		visitorIDs = append(visitorIDs, l.VisitorID)
	}
	visitorNames := c.participantNames(ctx, ev.ID, roster.KindVisitor, visitorIDs)
	for _, l := range ev.Visitors {
		a.Visitors = append(a.Visitors, nameOr(visitorNames, l.VisitorID))
	}
	return a
}

func (c *Coordinator) participantNames(ctx context.Context, eventID uint, kind roster.Kind, ids []uint) map[uint]string {
	names := map[uint]string{}
	if c.participants == nil || len(ids) == 0 {
		return names
	}
	found, err := c.participants.FindParticipants(ctx, kind, ids)
	if err != nil {
		log.Printf("⚠️ archive of event %d: %s names not resolved: %v", eventID, kind, err)
	}
	for _, p := range found {
		names[p.ID] = p.Name
	}
	return names
}

func nameOr(names map[uint]string, id uint) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

// ===========================
// 🗄 Archives
func (c *Coordinator) ListArchives(ctx context.Context, limit, offset int) ([]Archive, error) {
	return c.archives.ListArchives(ctx, limit, offset)
}

func (c *Coordinator) GetArchive(ctx context.Context, id uint) (*Archive, error) {
	return c.archives.GetArchive(ctx, id)
}

func (c *Coordinator) DeleteArchive(ctx context.Context, id uint, actor Actor) error {
	err := c.archives.DeleteArchive(ctx, id)
	details := map[string]interface{}{"archive_id": id}
	if err != nil {
		details["error"] = err.Error()
	}
	logAction(ctx, c.audit, actor, nil, auditlog.ActionArchiveDeleted, details, statusOf(err))
	return err
}
