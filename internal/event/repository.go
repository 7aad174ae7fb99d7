package event

import (
	"context"
	"errors"

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
// 🔢 Reserve an Event ID ahead of the insert
func (r *Repository) ReserveID(ctx context.Context) (uint, error) {
	var id uint
	err := r.DB.WithContext(ctx).Raw("SELECT nextval(pg_get_serial_sequence('events', 'id'))").Scan(&id).Error
	return id, err
}

// ===========================
// 🎯 Create Event
func (r *Repository) Create(ctx context.Context, e *Event) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

// ===========================
// 🔍 Get Event By ID
func (r *Repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	if err := r.DB.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ===========================
// 📄 List Events With Pagination & Search
func (r *Repository) List(ctx context.Context, limit, offset int, search string) ([]Event, error) {
	var events []Event
	query := r.DB.WithContext(ctx)
	if search != "" {
		ilike := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", ilike, ilike)
	}
	err := query.Order("date ASC").Limit(limit).Offset(offset).Find(&events).Error
	return events, err
}

// ===========================
// 🛠 Save Event
func (r *Repository) Save(ctx context.Context, e *Event) error {
	return r.DB.WithContext(ctx).Save(e).Error
}

// ===========================
// ❌ Delete Event
func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ===========================
// 🗄 Archives
func (r *Repository) CreateArchive(ctx context.Context, a *Archive) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repository) ListArchives(ctx context.Context, limit, offset int) ([]Archive, error) {
	var archives []Archive
	err := r.DB.WithContext(ctx).Order("date DESC").Limit(limit).Offset(offset).Find(&archives).Error
	return archives, err
}

func (r *Repository) GetArchive(ctx context.Context, id uint) (*Archive, error) {
	var a Archive
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *Repository) DeleteArchive(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&Archive{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
