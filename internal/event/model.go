package event

import (
	"errors"
	"strings"
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/room"
	"github.com/sharath018/event-resource-backend/internal/roster"
	"gorm.io/datatypes"
)

// ============================
// 🔷 GORM Event Model
type Event struct {
	ID          uint                                    `gorm:"primaryKey" json:"id"`
	Name        string                                  `gorm:"type:varchar(255);not null" json:"name"`
	Description string                                  `gorm:"type:text" json:"description"`
	EventTypeID *uint                                   `gorm:"index" json:"event_type_id,omitempty"`
	Date        time.Time                               `gorm:"not null;index" json:"date"`
	EndDate     *time.Time                              `json:"end_date,omitempty"`
	Location    string                                  `gorm:"type:text" json:"location"`
	Rooms       datatypes.JSONSlice[room.Line]          `gorm:"type:jsonb;not null;default:'[]'" json:"rooms"`
	Equipment   datatypes.JSONSlice[inventory.Line]     `gorm:"type:jsonb;not null;default:'[]'" json:"equipment"`
	StaffChosen datatypes.JSONSlice[roster.StaffLine]   `gorm:"type:jsonb;not null;default:'[]'" json:"staff_chosen"`
	Visitors    datatypes.JSONSlice[roster.VisitorLine] `gorm:"type:jsonb;not null;default:'[]'" json:"visitors"`
	CreatedBy   *uint                                   `json:"created_by,omitempty"`
	CreatedAt   time.Time                               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                               `gorm:"autoUpdateTime" json:"updated_at"`
}

// ============================
// 🗄 Archive snapshot, names resolved
type ArchivedEquipment struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type ArchivedStaff struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type Archive struct {
	ID          uint                                   `gorm:"primaryKey" json:"id"`
	EventID     uint                                   `gorm:"index" json:"event_id"`
	Name        string                                 `gorm:"type:varchar(255);not null" json:"name"`
	Description string                                 `gorm:"type:text" json:"description"`
	Date        time.Time                              `gorm:"not null;index" json:"date"`
	EndDate     *time.Time                             `json:"end_date,omitempty"`
	Location    string                                 `gorm:"type:text" json:"location"`
	Rooms       datatypes.JSONSlice[string]            `gorm:"type:jsonb;not null;default:'[]'" json:"rooms"`
	Equipment   datatypes.JSONSlice[ArchivedEquipment] `gorm:"type:jsonb;not null;default:'[]'" json:"equipment"`
	Staff       datatypes.JSONSlice[ArchivedStaff]     `gorm:"type:jsonb;not null;default:'[]'" json:"staff"`
	Visitors    datatypes.JSONSlice[string]            `gorm:"type:jsonb;not null;default:'[]'" json:"visitors"`
	ArchivedAt  time.Time                              `gorm:"autoCreateTime" json:"archived_at"`
}

// ============================
// 🟡 Create / Update Event Request
type EventRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	EventTypeID *uint                `json:"event_type_id,omitempty"`
	Date        time.Time            `json:"date"`
	EndDate     *time.Time           `json:"end_date,omitempty"`
	Location    string               `json:"location"`
	Equipment   []inventory.Line     `json:"equipment"`
	Rooms       []room.Line          `json:"rooms"`
	Staff       []roster.StaffLine   `json:"staff"`
	Visitors    []roster.VisitorLine `json:"visitors"`
}

// Validate checks the structural constraints of a submission.
func (r *EventRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, domain.NewValidationError("name", "is required"))
	}
	if r.Date.IsZero() {
		errs = append(errs, domain.NewValidationError("date", "is required"))
	}
	if r.EndDate != nil && !r.Date.IsZero() && r.EndDate.Before(r.Date) {
		errs = append(errs, domain.NewValidationError("end_date", "must not be before date"))
	}

	seenEquipment := make(map[uint]bool, len(r.Equipment))
	for i, l := range r.Equipment {
		if l.Quantity < 0 {
			errs = append(errs, domain.NewValidationError("equipment", "line %d has a negative quantity", i))
		}
		if seenEquipment[l.EquipmentID] {
			errs = append(errs, domain.NewValidationError("equipment", "equipment %d listed twice", l.EquipmentID))
		}
		seenEquipment[l.EquipmentID] = true
	}
	seenRooms := make(map[uint]bool, len(r.Rooms))
	for _, l := range r.Rooms {
		if seenRooms[l.RoomID] {
			errs = append(errs, domain.NewValidationError("rooms", "room %d listed twice", l.RoomID))
		}
		seenRooms[l.RoomID] = true
	}
	seenStaff := make(map[uint]bool, len(r.Staff))
	for _, l := range r.Staff {
		if seenStaff[l.StaffID] {
			errs = append(errs, domain.NewValidationError("staff", "staff %d listed twice", l.StaffID))
		}
		seenStaff[l.StaffID] = true
	}
	seenVisitors := make(map[uint]bool, len(r.Visitors))
	for _, l := range r.Visitors {
		if seenVisitors[l.VisitorID] {
			errs = append(errs, domain.NewValidationError("visitors", "visitor %d listed twice", l.VisitorID))
		}
		seenVisitors[l.VisitorID] = true
	}
	return errors.Join(errs...)
}

// ============================
// 📦 Caller-facing result
type Result struct {
	Event             *Event                    `json:"event,omitempty"`
	Equipment         []inventory.AllocatedLine `json:"equipment"`
	RoomsRejected     []domain.Ref              `json:"rooms_rejected"`
	EquipmentRejected []domain.Ref              `json:"equipment_rejected"`
	SoftWarning       string                    `json:"soft_warning,omitempty"`
}
