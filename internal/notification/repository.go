package notification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Logs
	CreateLog(ctx context.Context, log *NotificationLog) error
	UpdateLog(ctx context.Context, log *NotificationLog) error

	// In-app notifications
	CreateInApp(ctx context.Context, n *InAppNotification) error
	ListInApp(ctx context.Context, r Recipient, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint, r Recipient) error

	// Device tokens
	SaveDeviceToken(ctx context.Context, token *DeviceToken) error
	GetDeviceTokens(ctx context.Context, r Recipient) ([]string, error)
	RemoveDeviceToken(ctx context.Context, r Recipient, deviceToken string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ------------------------------
// Logs
// ------------------------------

func (r *repository) CreateLog(ctx context.Context, log *NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *repository) UpdateLog(ctx context.Context, log *NotificationLog) error {
	return r.db.WithContext(ctx).
		Model(&NotificationLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"status":     log.Status,
			"error":      log.Error,
			"updated_at": time.Now(),
		}).Error
}

// ------------------------------
// In-App Notifications
// ------------------------------

func (r *repository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInApp(ctx context.Context, rc Recipient, limit int) ([]InAppNotification, error) {
	if limit <= 0 {
		limit = 20
	}
	var items []InAppNotification
	err := r.db.WithContext(ctx).
		Where("recipient_kind = ? AND recipient_id = ?", rc.Kind, rc.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repository) MarkInAppAsRead(ctx context.Context, id uint, rc Recipient) error {
	return r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("id = ? AND recipient_kind = ? AND recipient_id = ?", id, rc.Kind, rc.ID).
		Update("is_read", true).Error
}

// ------------------------------
// Device Tokens
// ------------------------------

// SaveDeviceToken creates the token or reactivates it for the recipient.
func (r *repository) SaveDeviceToken(ctx context.Context, token *DeviceToken) error {
	var existing DeviceToken
	err := r.db.WithContext(ctx).
		Where("device_token = ?", token.DeviceToken).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		token.IsActive = true
		token.LastUsedAt = time.Now()
		return r.db.WithContext(ctx).Create(token).Error
	}
	if err != nil {
		return err
	}

	existing.RecipientKind = token.RecipientKind
	existing.RecipientID = token.RecipientID
	existing.DeviceType = token.DeviceType
	existing.DeviceName = token.DeviceName
	existing.IsActive = true
	existing.LastUsedAt = time.Now()
	return r.db.WithContext(ctx).Save(&existing).Error
}

func (r *repository) GetDeviceTokens(ctx context.Context, rc Recipient) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&DeviceToken{}).
		Where("recipient_kind = ? AND recipient_id = ? AND is_active = ?", rc.Kind, rc.ID, true).
		Pluck("device_token", &tokens).Error
	return tokens, err
}

// RemoveDeviceToken deactivates a specific device token
func (r *repository) RemoveDeviceToken(ctx context.Context, rc Recipient, deviceToken string) error {
	return r.db.WithContext(ctx).
		Model(&DeviceToken{}).
		Where("recipient_kind = ? AND recipient_id = ? AND device_token = ?", rc.Kind, rc.ID, deviceToken).
		Update("is_active", false).Error
}
