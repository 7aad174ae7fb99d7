package room

import (
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"gorm.io/datatypes"
)

// Booking is one interval a room is committed to. A nil EndDate marks an
// open-ended booking that holds the room through the end of its day.
type Booking struct {
	EventID   uint       `json:"event_id"`
	EventName string     `json:"event_name"`
	Date      time.Time  `json:"date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type Room struct {
	ID        uint                         `gorm:"primaryKey" json:"id"`
	Name      string                       `gorm:"type:varchar(150);not null" json:"name"`
	Capacity  int                          `gorm:"not null;default:0" json:"capacity"`
	Events    datatypes.JSONSlice[Booking] `gorm:"type:jsonb;not null;default:'[]'" json:"events"`
	Version   int                          `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

// Line references a room booked by an event.
type Line struct {
	RoomID uint `json:"room_id"`
}

// Window is the requested scheduling interval of an event.
type Window struct {
	Start time.Time
	End   *time.Time
}

type ChangeKind string

const (
	ChangeAdded       ChangeKind = "added"
	ChangeRescheduled ChangeKind = "rescheduled"
	ChangeReleased    ChangeKind = "released"
)

// Change records a booking mutation applied during a Schedule call so it can
// be reverted.
type Change struct {
	RoomID   uint
	Kind     ChangeKind
	Previous *Booking
}

type ScheduleResult struct {
	Rooms    []Line
	Applied  []Change
	Rejected []domain.Ref
}

func (r ScheduleResult) Failed() bool {
	return len(r.Rejected) > 0
}
