package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindStaff:
		return Staff{}.TableName(), nil
	case KindVisitor:
		return Visitor{}.TableName(), nil
	}
	return "", fmt.Errorf("unknown participant kind %q", kind)
}

// ===========================
// 🔍 Lookups
// ===========================

func (r *Repository) FindParticipants(ctx context.Context, kind Kind, ids []uint) ([]Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []Participant
	switch kind {
	case KindStaff:
		var rows []Staff
		if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, s := range rows {
			out = append(out, Participant{
				ID:    s.ID,
				Kind:  KindStaff,
				Name:  strings.TrimSpace(s.FirstName + " " + s.LastName),
				Email: s.Email,
			})
		}
	case KindVisitor:
		var rows []Visitor
		if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, v := range rows {
			out = append(out, Participant{
				ID:        v.ID,
				Kind:      KindVisitor,
				Name:      v.GroupName,
				Email:     v.Email,
				GroupSize: v.GroupSize,
			})
		}
	default:
		return nil, fmt.Errorf("unknown participant kind %q", kind)
	}
	return out, nil
}

// Attendance returns the back-references a participant currently holds.
func (r *Repository) Attendance(ctx context.Context, kind Kind, id uint) ([]Attendance, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var row attendanceRow
	err = r.DB.WithContext(ctx).Table(table).Select("id, attending_events, version").Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.AttendingEvents, nil
}

// ===========================
// ✏️ Back-reference updates
// ===========================

func (r *Repository) AddAttendance(ctx context.Context, kind Kind, id uint, a Attendance) (bool, error) {
	added := false
	err := r.updateAttendance(ctx, kind, id, func(list []Attendance) ([]Attendance, bool) {
		added = false
		for _, existing := range list {
			if existing.EventID == a.EventID {
				return list, false
			}
		}
		added = true
		return append(list, a), true
	})
	return added, err
}

func (r *Repository) RemoveAttendance(ctx context.Context, kind Kind, id, eventID uint) (Attendance, bool, error) {
	var removed Attendance
	found := false
	err := r.updateAttendance(ctx, kind, id, func(list []Attendance) ([]Attendance, bool) {
		found = false
		kept := make([]Attendance, 0, len(list))
		for _, existing := range list {
			if existing.EventID == eventID {
				if !found {
					removed = existing
				}
				found = true
				continue
			}
			kept = append(kept, existing)
		}
		return kept, found
	})
	return removed, found, err
}

type attendanceRow struct {
	ID              uint
	AttendingEvents datatypes.JSONSlice[Attendance]
	Version         int
}

func (r *Repository) updateAttendance(ctx context.Context, kind Kind, id uint, fn func([]Attendance) ([]Attendance, bool)) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	err = domain.RetryVersioned(domain.MaxUpdateAttempts, func() (bool, error) {
		var row attendanceRow
		err := r.DB.WithContext(ctx).Table(table).
			Select("id, attending_events, version").
			Where("id = ?", id).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrNotFound
		}
		if err != nil {
			return false, err
		}

		next, changed := fn(append([]Attendance{}, row.AttendingEvents...))
		if !changed {
			return true, nil
		}

		res := r.DB.WithContext(ctx).Table(table).
			Where("id = ? AND version = ?", id, row.Version).
			Updates(map[string]interface{}{
				"attending_events": datatypes.JSONSlice[Attendance](next),
				"version":          row.Version + 1,
				"updated_at":       time.Now(),
			})
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected == 1, nil
	})
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	return err
}
