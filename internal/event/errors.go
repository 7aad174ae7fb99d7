package event

import (
	"fmt"
	"strings"

	"github.com/sharath018/event-resource-backend/internal/domain"
)

// ReconcileError reports every equipment and room line a run could not
// honour. It matches domain.ErrInsufficientInventory and/or
// domain.ErrRoomConflict under errors.Is.
type ReconcileError struct {
	Result *Result
}

func (e *ReconcileError) Error() string {
	var parts []string
	if names := refNames(e.Result.EquipmentRejected); names != "" {
		parts = append(parts, fmt.Sprintf("%s: %s", domain.ErrInsufficientInventory, names))
	}
	if names := refNames(e.Result.RoomsRejected); names != "" {
		parts = append(parts, fmt.Sprintf("%s: %s", domain.ErrRoomConflict, names))
	}
	return strings.Join(parts, "; ")
}

func (e *ReconcileError) Unwrap() []error {
	var errs []error
	if len(e.Result.EquipmentRejected) > 0 {
		errs = append(errs, domain.ErrInsufficientInventory)
	}
	if len(e.Result.RoomsRejected) > 0 {
		errs = append(errs, domain.ErrRoomConflict)
	}
	return errs
}

func refNames(refs []domain.Ref) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name != "" {
			names = append(names, r.Name)
		} else {
			names = append(names, fmt.Sprintf("#%d", r.ID))
		}
	}
	return strings.Join(names, ", ")
}
