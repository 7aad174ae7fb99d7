package room

import "time"

// NextMidnight returns the first midnight strictly after t, in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// Admits reports whether a booking for eventID over w can coexist with
// existing in the same room.
//
// Bookings of the same event never conflict. A bounded booking only admits
// candidates strictly after its end, or bounded candidates ending strictly
// before it starts (an open-ended candidate must leave the existing start on
// a later day). An open-ended existing booking is separated from the
// candidate by the offset between the candidate's start and its next
// midnight.
func Admits(existing Booking, eventID uint, w Window) bool {
	if existing.EventID == eventID {
		return true
	}

	offset := NextMidnight(w.Start).Sub(w.Start)

	if existing.EndDate != nil {
		if existing.EndDate.Before(w.Start) {
			return true
		}
		if w.End != nil {
			return w.End.Before(existing.Date)
		}
		return !existing.Date.Before(w.Start.Add(offset))
	}

	if w.End == nil && !existing.Date.Before(w.Start.Add(offset)) {
		return true
	}
	if !existing.Date.Add(offset).After(w.Start) {
		return true
	}
	if w.End != nil && !w.End.Add(offset).After(existing.Date) {
		return true
	}
	return false
}

// FirstConflict returns the first booking in bookings that does not admit the
// candidate.
func FirstConflict(bookings []Booking, eventID uint, w Window) (Booking, bool) {
	for _, b := range bookings {
		if !Admits(b, eventID, w) {
			return b, true
		}
	}
	return Booking{}, false
}

func sameInterval(b Booking, w Window) bool {
	if !b.Date.Equal(w.Start) {
		return false
	}
	if b.EndDate == nil || w.End == nil {
		return b.EndDate == nil && w.End == nil
	}
	return b.EndDate.Equal(*w.End)
}
