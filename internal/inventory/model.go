package inventory

import (
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
)

// Equipment is a stock item. Quantity is the live available counter,
// already net of every outstanding reservation.
type Equipment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TypeName  string    `gorm:"type:varchar(150);not null" json:"type_name"`
	Quantity  int       `gorm:"not null;default:0;check:chk_equipment_quantity,quantity >= 0" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Line is a reservation line recorded on an event.
type Line struct {
	EquipmentID uint `json:"equipment_id"`
	Quantity    int  `json:"quantity"`
}

// AllocatedLine is a reservation line annotated for redisplay.
type AllocatedLine struct {
	EquipmentID uint   `json:"equipment_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Available   int    `json:"available"`
}

// Adjustment records one inventory mutation applied during a reconciliation
// so it can be compensated later.
type Adjustment struct {
	EquipmentID      uint
	PreviousQuantity int
	Delta            int
}

// AllocationResult is the outcome of one Reconcile call.
type AllocationResult struct {
	Lines    []AllocatedLine
	Applied  []Adjustment
	Rejected []domain.Ref
}

// Failed reports whether at least one line was rejected.
func (r AllocationResult) Failed() bool {
	return len(r.Rejected) > 0
}

// Reserved strips the redisplay fields back to stored reservation lines.
func (r AllocationResult) Reserved() []Line {
	out := make([]Line, 0, len(r.Lines))
	for _, l := range r.Lines {
		out = append(out, Line{EquipmentID: l.EquipmentID, Quantity: l.Quantity})
	}
	return out
}
