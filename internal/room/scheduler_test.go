package room_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func lab1() room.Room {
	return room.Room{ID: 1, Name: "Lab 1", Capacity: 20, Events: []room.Booking{
		{EventID: 10, EventName: "Workshop", Date: at(1, 9), EndDate: ptr(at(1, 11))},
	}}
}

func TestScheduleRejectsConflictingBooking(t *testing.T) {
	store := testutil.NewRoomStore(lab1())
	s := room.NewScheduler(store)

	res, err := s.Schedule(context.Background(), 20, "Demo", nil, []room.Line{{RoomID: 1}}, room.Window{Start: at(1, 10)})
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, []domain.Ref{{ID: 1, Name: "Lab 1"}}, res.Rejected)
	assert.Empty(t, res.Applied)
	assert.Len(t, store.Bookings(1), 1)
}

func TestScheduleAdmitsNextDay(t *testing.T) {
	store := testutil.NewRoomStore(lab1())
	s := room.NewScheduler(store)

	res, err := s.Schedule(context.Background(), 20, "Demo", nil, []room.Line{{RoomID: 1}}, room.Window{Start: at(2, 9)})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, []room.Line{{RoomID: 1}}, res.Rooms)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, room.ChangeAdded, res.Applied[0].Kind)

	bookings := store.Bookings(1)
	require.Len(t, bookings, 2)
	assert.Equal(t, room.Booking{EventID: 20, EventName: "Demo", Date: at(2, 9)}, bookings[1])
}

func TestScheduleReschedulesOwnBooking(t *testing.T) {
	store := testutil.NewRoomStore(lab1())
	s := room.NewScheduler(store)
	lines := []room.Line{{RoomID: 1}}

	res, err := s.Schedule(context.Background(), 10, "Workshop", lines, lines, room.Window{Start: at(1, 10), End: ptr(at(1, 12))})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	require.Len(t, res.Applied, 1)
	assert.Equal(t, room.ChangeRescheduled, res.Applied[0].Kind)

	bookings := store.Bookings(1)
	require.Len(t, bookings, 1)
	assert.Equal(t, at(1, 10), bookings[0].Date)
}

func TestScheduleUnchangedBookingIsNoop(t *testing.T) {
	store := testutil.NewRoomStore(lab1())
	s := room.NewScheduler(store)
	lines := []room.Line{{RoomID: 1}}

	res, err := s.Schedule(context.Background(), 10, "Workshop", lines, lines, room.Window{Start: at(1, 9), End: ptr(at(1, 11))})
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.Equal(t, lines, res.Rooms)
}

func TestScheduleReleasesDroppedRoomsAndRevert(t *testing.T) {
	hall := room.Room{ID: 2, Name: "Hall"}
	store := testutil.NewRoomStore(lab1(), hall)
	s := room.NewScheduler(store)
	ctx := context.Background()

	res, err := s.Schedule(ctx, 10, "Workshop", []room.Line{{RoomID: 1}}, []room.Line{{RoomID: 2}}, room.Window{Start: at(1, 9), End: ptr(at(1, 11))})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Empty(t, store.Bookings(1))
	assert.Len(t, store.Bookings(2), 1)

	require.NoError(t, s.Revert(ctx, 10, res.Applied))
	assert.Equal(t, []room.Booking(lab1().Events), store.Bookings(1))
	assert.Empty(t, store.Bookings(2))
}

func TestScheduleSkipsMissingRooms(t *testing.T) {
	store := testutil.NewRoomStore(lab1())
	s := room.NewScheduler(store)

	res, err := s.Schedule(context.Background(), 20, "Demo", nil, []room.Line{{RoomID: 1}, {RoomID: 42}}, room.Window{Start: at(5, 9)})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Equal(t, []room.Line{{RoomID: 1}}, res.Rooms)
}

func TestRelease(t *testing.T) {
	store := testutil.NewRoomStore(lab1())
	s := room.NewScheduler(store)

	require.NoError(t, s.Release(context.Background(), 10, []room.Line{{RoomID: 1}}))
	assert.Empty(t, store.Bookings(1))
}

func TestScheduleReturnsReleaseFailure(t *testing.T) {
	hall := room.Room{ID: 2, Name: "Hall", Capacity: 100, Events: []room.Booking{
		{EventID: 10, EventName: "Workshop", Date: at(1, 9), EndDate: ptr(at(1, 11))},
	}}
	store := testutil.NewRoomStore(lab1(), hall)
	store.FailIDs[2] = testutil.ErrInjected
	s := room.NewScheduler(store)

	w := room.Window{Start: at(1, 9), End: ptr(at(1, 11))}
	res, err := s.Schedule(context.Background(), 10, "Workshop", []room.Line{{RoomID: 1}, {RoomID: 2}}, []room.Line{{RoomID: 1}}, w)
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.False(t, res.Failed())
	assert.Len(t, store.Bookings(2), 1)

	err = s.Release(context.Background(), 10, []room.Line{{RoomID: 2}})
	assert.ErrorIs(t, err, testutil.ErrInjected)
}

func TestScheduleReturnsBookingFailureAsError(t *testing.T) {
	store := testutil.NewRoomStore(lab1(), room.Room{ID: 2, Name: "Hall", Capacity: 100})
	store.FailIDs[2] = testutil.ErrInjected
	s := room.NewScheduler(store)

	res, err := s.Schedule(context.Background(), 20, "Demo", nil, []room.Line{{RoomID: 1}, {RoomID: 2}}, room.Window{Start: at(5, 9)})
	require.Error(t, err)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.NotErrorIs(t, err, domain.ErrRoomConflict)
	assert.Empty(t, res.Rejected)

	// Lab 1 was booked before the batch failed; Revert hands it back.
	require.Len(t, res.Applied, 1)
	require.NoError(t, s.Revert(context.Background(), 20, res.Applied))
	assert.Equal(t, []room.Booking(lab1().Events), store.Bookings(1))
}

func TestScheduleConcurrentBookingsAdmitOne(t *testing.T) {
	store := testutil.NewRoomStore(room.Room{ID: 1, Name: "Lab 1", Capacity: 20})
	s := room.NewScheduler(store)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(eventID uint) {
			defer wg.Done()
			w := room.Window{Start: at(1, 9), End: ptr(at(1, 11))}
			res, err := s.Schedule(ctx, eventID, "Demo", nil, []room.Line{{RoomID: 1}}, w)
			assert.NoError(t, err)
			if !res.Failed() {
				admitted.Add(1)
			}
		}(uint(100 + i))
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	assert.Len(t, store.Bookings(1), 1)
}
