package event_test

import (
	"context"
	"testing"

	"github.com/sharath018/event-resource-backend/internal/auditlog"
	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/event"
	"github.com/sharath018/event-resource-backend/internal/notification"
	"github.com/sharath018/event-resource-backend/internal/roster"
	"github.com/sharath018/event-resource-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteReleasesEverything(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Create(ctx, baseRequest(), event.Actor{})
	require.NoError(t, err)
	id := res.Event.ID

	snapshot, err := h.coord.Delete(ctx, id, false, event.Actor{})
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	assert.False(t, h.events.Has(id))
	assert.Equal(t, 5, h.inventory.Quantity(1))
	assert.Empty(t, h.rooms.Bookings(1))
	assert.False(t, h.people.Attends(roster.KindStaff, 1, id))
	assert.Zero(t, h.events.ArchiveCount())

	require.Len(t, h.notifier.Batches, 2)
	require.Len(t, h.notifier.Batches[1].Emails, 1)
	assert.Equal(t, notification.TemplateRemoved, h.notifier.Batches[1].Emails[0].Template)
	assert.Equal(t, auditlog.ActionEventDeleted, h.audit.Last().Action)
}

func TestDeleteWithArchiveResolvesNames(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	req := baseRequest()
	req.Visitors = []roster.VisitorLine{{VisitorID: 1}}
	res, err := h.svc.Create(ctx, req, event.Actor{})
	require.NoError(t, err)

	snapshot, err := h.coord.Delete(ctx, res.Event.ID, true, event.Actor{})
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, "Open Day", snapshot.Name)
	assert.Equal(t, []string{"Lab 1"}, []string(snapshot.Rooms))
	assert.Equal(t, []event.ArchivedEquipment{{Name: "Projector", Quantity: 3}}, []event.ArchivedEquipment(snapshot.Equipment))
	assert.Equal(t, []event.ArchivedStaff{{Name: "Ana Silva", Role: "host"}}, []event.ArchivedStaff(snapshot.Staff))
	assert.Equal(t, []string{"Northside School"}, []string(snapshot.Visitors))

	stored, err := h.coord.GetArchive(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Event.ID, stored.EventID)
}

func TestDeleteArchiveFailureKeepsEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Create(ctx, baseRequest(), event.Actor{})
	require.NoError(t, err)
	h.events.FailArchive = testutil.ErrInjected

	_, err = h.coord.Delete(ctx, res.Event.ID, true, event.Actor{})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, h.events.Has(res.Event.ID))
	assert.Equal(t, 2, h.inventory.Quantity(1))
	assert.Len(t, h.rooms.Bookings(1), 1)
}

func TestDeleteFailureRemovesArchive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Create(ctx, baseRequest(), event.Actor{})
	require.NoError(t, err)
	h.events.FailDelete = testutil.ErrInjected

	_, err = h.coord.Delete(ctx, res.Event.ID, true, event.Actor{})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Zero(t, h.events.ArchiveCount())
	assert.Equal(t, "failure", h.audit.Last().Status)
}

func TestDeleteUnknownEvent(t *testing.T) {
	h := newHarness(t)
	_, err := h.coord.Delete(context.Background(), 7, false, event.Actor{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteArchive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Create(ctx, baseRequest(), event.Actor{})
	require.NoError(t, err)
	snapshot, err := h.coord.Delete(ctx, res.Event.ID, true, event.Actor{})
	require.NoError(t, err)

	archives, err := h.coord.ListArchives(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, archives, 1)

	require.NoError(t, h.coord.DeleteArchive(ctx, snapshot.ID, event.Actor{}))
	assert.Equal(t, auditlog.ActionArchiveDeleted, h.audit.Last().Action)
	assert.ErrorIs(t, h.coord.DeleteArchive(ctx, snapshot.ID, event.Actor{}), domain.ErrNotFound)
}
