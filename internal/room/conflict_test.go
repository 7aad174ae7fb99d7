package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestNextMidnight(t *testing.T) {
	assert.Equal(t, at(2, 0), NextMidnight(at(1, 9)))
	assert.Equal(t, at(2, 0), NextMidnight(at(1, 0)))
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), NextMidnight(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)))
}

func TestAdmits(t *testing.T) {
	lab := Booking{EventID: 1, Date: at(1, 9), EndDate: ptr(at(1, 11))}
	openDay := Booking{EventID: 1, Date: at(1, 9)}

	cases := []struct {
		name     string
		existing Booking
		eventID  uint
		w        Window
		want     bool
	}{
		{"open candidate inside bounded booking day", lab, 2, Window{Start: at(1, 10)}, false},
		{"open candidate on the next day", lab, 2, Window{Start: at(2, 9)}, true},
		{"same event never conflicts", lab, 1, Window{Start: at(1, 10)}, true},
		{"bounded candidate ends before", Booking{EventID: 1, Date: at(1, 10), EndDate: ptr(at(1, 12))}, 2, Window{Start: at(1, 8), End: ptr(at(1, 9))}, true},
		{"bounded candidate overlaps", Booking{EventID: 1, Date: at(1, 10), EndDate: ptr(at(1, 12))}, 2, Window{Start: at(1, 8), End: ptr(at(1, 11))}, false},
		{"bounded candidate after end", lab, 2, Window{Start: at(1, 12), End: ptr(at(1, 13))}, true},
		{"open bookings on the same day", openDay, 2, Window{Start: at(1, 15)}, false},
		{"open candidate earlier the same day", openDay, 2, Window{Start: at(1, 6)}, false},
		{"open candidate the day after", openDay, 2, Window{Start: at(2, 9)}, true},
		{"open candidate the day before", openDay, 2, Window{Start: time.Date(2024, time.February, 29, 10, 0, 0, 0, time.UTC)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Admits(tc.existing, tc.eventID, tc.w))
		})
	}
}

func TestFirstConflict(t *testing.T) {
	bookings := []Booking{
		{EventID: 1, Date: at(3, 9), EndDate: ptr(at(3, 10))},
		{EventID: 2, Date: at(1, 9), EndDate: ptr(at(1, 11))},
	}

	b, ok := FirstConflict(bookings, 3, Window{Start: at(1, 10)})
	assert.True(t, ok)
	assert.Equal(t, uint(2), b.EventID)

	_, ok = FirstConflict(bookings, 3, Window{Start: at(5, 10)})
	assert.False(t, ok)
}
