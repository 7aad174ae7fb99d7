package room

import (
	"context"
	"errors"
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 🔍 Get Room By ID
func (r *Repository) GetByID(ctx context.Context, id uint) (*Room, error) {
	var room Room
	if err := r.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []uint) ([]Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rooms []Room
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error
	return rooms, err
}

// ===========================
// 🛠 UpdateBookings is a read-modify-write guarded by the version column
func (r *Repository) UpdateBookings(ctx context.Context, id uint, fn func(room *Room) (bool, error)) error {
	return domain.RetryVersioned(domain.MaxUpdateAttempts, func() (bool, error) {
		room, err := r.GetByID(ctx, id)
		if err != nil {
			return false, err
		}

		changed, err := fn(room)
		if err != nil || !changed {
			return true, err
		}

		res := r.DB.WithContext(ctx).
			Model(&Room{}).
			Where("id = ? AND version = ?", room.ID, room.Version).
			Updates(map[string]interface{}{
				"events":     room.Events,
				"version":    room.Version + 1,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected == 1, nil
	})
}
