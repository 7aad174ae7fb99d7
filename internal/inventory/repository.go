package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 📄 List equipment with current availability
func (r *Repository) List(ctx context.Context) ([]Equipment, error) {
	var items []Equipment
	err := r.DB.WithContext(ctx).Order("type_name ASC").Find(&items).Error
	return items, err
}

// ===========================
// 🔍 Get equipment by ID
func (r *Repository) GetByID(ctx context.Context, id uint) (*Equipment, error) {
	var e Equipment
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []uint) ([]Equipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []Equipment
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// ===========================
// ➕ Increment is a single UPDATE ... RETURNING, atomic per row
func (r *Repository) Increment(ctx context.Context, id uint, amount int) (int, error) {
	var e Equipment
	res := r.DB.WithContext(ctx).
		Model(&e).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrNotFound
	}
	return e.Quantity, nil
}

// ===========================
// ➖ Decrement only applies while quantity >= floor, so a stale read can never
// drive the stored counter below zero.
func (r *Repository) Decrement(ctx context.Context, id uint, amount, floor int) (int, error) {
	if floor < amount {
		floor = amount
	}
	var e Equipment
	res := r.DB.WithContext(ctx).
		Model(&e).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ? AND quantity >= ?", id, floor).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&Equipment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrInsufficientInventory
	}
	return e.Quantity, nil
}
