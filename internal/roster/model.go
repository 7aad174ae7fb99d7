package roster

import (
	"time"

	"gorm.io/datatypes"
)

type Kind string

const (
	KindStaff   Kind = "staff"
	KindVisitor Kind = "visitor"
)

// Attendance is the back-reference a participant keeps for each event it is
// on the roster of.
type Attendance struct {
	EventID uint   `json:"event_id"`
	Role    string `json:"role,omitempty"`
}

type Staff struct {
	ID              uint                            `gorm:"primaryKey" json:"id"`
	FirstName       string                          `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName        string                          `gorm:"type:varchar(100)" json:"last_name"`
	Email           string                          `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone           string                          `gorm:"type:varchar(30)" json:"phone,omitempty"`
	AttendingEvents datatypes.JSONSlice[Attendance] `gorm:"type:jsonb;not null;default:'[]'" json:"attending_events"`
	Version         int                             `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}

// Visitor is a visiting group; GroupSize counts against room capacity.
type Visitor struct {
	ID              uint                            `gorm:"primaryKey" json:"id"`
	GroupName       string                          `gorm:"type:varchar(150);not null" json:"group_name"`
	ContactName     string                          `gorm:"type:varchar(150)" json:"contact_name"`
	Email           string                          `gorm:"type:varchar(255);index" json:"email"`
	GroupSize       int                             `gorm:"not null;default:1" json:"group_size"`
	AttendingEvents datatypes.JSONSlice[Attendance] `gorm:"type:jsonb;not null;default:'[]'" json:"attending_events"`
	Version         int                             `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Visitor) TableName() string {
	return "visitors"
}

// StaffLine is one staff member on an event roster.
type StaffLine struct {
	StaffID uint   `json:"staff_id"`
	Role    string `json:"role"`
}

// VisitorLine is one visitor group on an event roster.
type VisitorLine struct {
	VisitorID uint `json:"visitor_id"`
}

// Participant is the kind-independent view of a Staff or Visitor record.
type Participant struct {
	ID        uint
	Kind      Kind
	Name      string
	Email     string
	GroupSize int
}

// Member is a roster entry identified by participant id.
type Member struct {
	ID   uint
	Kind Kind
	Role string
}

// Delta is the set difference between two rosters of one kind.
type Delta struct {
	Added     []Member
	Removed   []Member
	Unchanged []Member
}

type NoticeKind string

const (
	NoticeAdded   NoticeKind = "added"
	NoticeEdited  NoticeKind = "edited"
	NoticeRemoved NoticeKind = "removed"
)

// Notice is an instruction to tell a participant about a roster change.
type Notice struct {
	Kind        NoticeKind
	Participant Participant
	Role        string
}

// AttendanceChange records a back-reference mutation so it can be reverted.
type AttendanceChange struct {
	Member   Member
	Added    bool
	Previous Attendance
}

type DiffResult struct {
	Staff    Delta
	Visitors Delta
	Applied  []AttendanceChange
	Notices  []Notice
}
