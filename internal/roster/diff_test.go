package roster_test

import (
	"context"
	"sort"
	"testing"

	"github.com/sharath018/event-resource-backend/internal/roster"
	"github.com/sharath018/event-resource-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staff(id uint, name string) roster.Participant {
	return roster.Participant{ID: id, Kind: roster.KindStaff, Name: name, Email: name + "@example.com"}
}

func noticeKinds(notices []roster.Notice) map[uint]roster.NoticeKind {
	out := make(map[uint]roster.NoticeKind, len(notices))
	for _, n := range notices {
		out[n.Participant.ID] = n.Kind
	}
	return out
}

func TestDiffStaff(t *testing.T) {
	d := roster.DiffStaff(
		[]roster.StaffLine{{StaffID: 1, Role: "host"}, {StaffID: 2}},
		[]roster.StaffLine{{StaffID: 2, Role: "guide"}, {StaffID: 3}, {StaffID: 3}},
	)
	assert.Equal(t, []roster.Member{{ID: 3, Kind: roster.KindStaff}}, d.Added)
	assert.Equal(t, []roster.Member{{ID: 1, Kind: roster.KindStaff, Role: "host"}}, d.Removed)
	assert.Equal(t, []roster.Member{{ID: 2, Kind: roster.KindStaff, Role: "guide"}}, d.Unchanged)
}

func TestDiffVisitorsEmpty(t *testing.T) {
	d := roster.DiffVisitors(nil, nil)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
	assert.Empty(t, d.Unchanged)
}

func TestApplySwapsStaff(t *testing.T) {
	store := testutil.NewRosterStore(staff(1, "ana"), staff(2, "ben"))
	store.Seed(roster.KindStaff, 1, roster.Attendance{EventID: 7, Role: "host"})
	engine := roster.NewEngine(store)

	res, err := engine.Apply(context.Background(), roster.Transition{
		EventID:       7,
		PreviousStaff: []roster.StaffLine{{StaffID: 1, Role: "host"}},
		Staff:         []roster.StaffLine{{StaffID: 2, Role: "host"}},
	})
	require.NoError(t, err)

	assert.False(t, store.Attends(roster.KindStaff, 1, 7))
	assert.True(t, store.Attends(roster.KindStaff, 2, 7))
	assert.Equal(t, map[uint]roster.NoticeKind{1: roster.NoticeRemoved, 2: roster.NoticeAdded}, noticeKinds(res.Notices))
	assert.Len(t, res.Applied, 2)
}

func TestApplyIsIdempotentForExistingReference(t *testing.T) {
	store := testutil.NewRosterStore(staff(2, "ben"))
	store.Seed(roster.KindStaff, 2, roster.Attendance{EventID: 7})
	engine := roster.NewEngine(store)

	res, err := engine.Apply(context.Background(), roster.Transition{
		EventID: 7,
		Staff:   []roster.StaffLine{{StaffID: 2}},
	})
	require.NoError(t, err)
	assert.Len(t, store.Attendance(roster.KindStaff, 2), 1)
	assert.Empty(t, res.Applied)
	assert.Equal(t, map[uint]roster.NoticeKind{2: roster.NoticeAdded}, noticeKinds(res.Notices))
}

func TestApplyNotifiesUnchangedOnlyWhenModified(t *testing.T) {
	store := testutil.NewRosterStore(staff(1, "ana"), staff(2, "ben"))
	engine := roster.NewEngine(store)
	tr := roster.Transition{
		EventID:       7,
		PreviousStaff: []roster.StaffLine{{StaffID: 1}},
		Staff:         []roster.StaffLine{{StaffID: 1}, {StaffID: 2}},
	}

	res, err := engine.Apply(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, map[uint]roster.NoticeKind{2: roster.NoticeAdded}, noticeKinds(res.Notices))

	tr.EventModified = true
	res, err = engine.Apply(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, map[uint]roster.NoticeKind{1: roster.NoticeEdited, 2: roster.NoticeAdded}, noticeKinds(res.Notices))
}

func TestApplySkipsUnknownParticipants(t *testing.T) {
	store := testutil.NewRosterStore(staff(1, "ana"), roster.Participant{ID: 5, Kind: roster.KindVisitor, Name: "School"})
	engine := roster.NewEngine(store)

	res, err := engine.Apply(context.Background(), roster.Transition{
		EventID:  7,
		Staff:    []roster.StaffLine{{StaffID: 1}, {StaffID: 99}},
		Visitors: []roster.VisitorLine{{VisitorID: 5}},
	})
	require.NoError(t, err)
	assert.Len(t, res.Notices, 2)
	assert.True(t, store.Attends(roster.KindVisitor, 5, 7))
}

func TestRevertAfterPartialFailure(t *testing.T) {
	store := testutil.NewRosterStore(staff(1, "ana"), staff(2, "ben"), staff(3, "cy"))
	store.Seed(roster.KindStaff, 3, roster.Attendance{EventID: 7, Role: "guide"})
	store.FailAdd[2] = testutil.ErrInjected
	engine := roster.NewEngine(store)
	ctx := context.Background()

	res, err := engine.Apply(ctx, roster.Transition{
		EventID:       7,
		PreviousStaff: []roster.StaffLine{{StaffID: 3, Role: "guide"}},
		Staff:         []roster.StaffLine{{StaffID: 1}, {StaffID: 2}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrInjected)

	ids := make([]uint, 0, len(res.Applied))
	for _, ch := range res.Applied {
		ids = append(ids, ch.Member.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	assert.Equal(t, []uint{1, 3}, ids)

	require.NoError(t, engine.Revert(ctx, 7, res.Applied))
	assert.False(t, store.Attends(roster.KindStaff, 1, 7))
	assert.Equal(t, []roster.Attendance{{EventID: 7, Role: "guide"}}, store.Attendance(roster.KindStaff, 3))
}
