package notification

import (
	"time"

	"gorm.io/datatypes"
)

// Recipient identifies a participant that can receive notifications.
type Recipient struct {
	Kind string `json:"kind"` // staff, visitor
	ID   uint   `json:"id"`
}

// Push is a push/in-app message for one participant.
type Push struct {
	Recipient Recipient `json:"recipient"`
	EventID   uint      `json:"event_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
}

type TemplateKind string

const (
	TemplateAdded   TemplateKind = "added"
	TemplateEdited  TemplateKind = "edited"
	TemplateRemoved TemplateKind = "removed"
)

// EmailContext is the data an email template renders.
type EmailContext struct {
	RecipientName string     `json:"recipient_name"`
	EventName     string     `json:"event_name"`
	Location      string     `json:"location,omitempty"`
	Role          string     `json:"role,omitempty"`
	Date          time.Time  `json:"date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

type Email struct {
	To       string       `json:"to"`
	Template TemplateKind `json:"template"`
	Context  EmailContext `json:"context"`
}

// Batch is everything one reconciliation run wants delivered.
type Batch struct {
	Push   []Push
	Emails []Email
}

func (b Batch) Empty() bool {
	return len(b.Push) == 0 && len(b.Emails) == 0
}

// Message is the unit placed on the delivery queue.
type Message struct {
	ID    string `json:"id"`
	Push  *Push  `json:"push,omitempty"`
	Email *Email `json:"email,omitempty"`
}

// NotificationLog - each delivery attempt
type NotificationLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	MessageID  string         `gorm:"size:36;index" json:"message_id"`
	EventID    uint           `gorm:"index" json:"event_id"`
	Channel    string         `gorm:"size:20;not null" json:"channel"` // email, push
	Subject    string         `gorm:"size:255" json:"subject,omitempty"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	Recipients datatypes.JSON `gorm:"type:jsonb;not null" json:"recipients"`
	Status     string         `gorm:"size:20;default:'pending'" json:"status"`
	Error      *string        `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// InAppNotification - per-participant bell notifications
type InAppNotification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RecipientKind string    `gorm:"size:20;not null;index:idx_inapp_recipient" json:"recipient_kind"`
	RecipientID   uint      `gorm:"not null;index:idx_inapp_recipient" json:"recipient_id"`
	EventID       uint      `gorm:"index" json:"event_id"`
	Title         string    `gorm:"size:150;not null" json:"title"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Category      string    `gorm:"size:30;not null" json:"category"`
	IsRead        bool      `gorm:"default:false" json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DeviceToken - registered FCM endpoints of a participant
type DeviceToken struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RecipientKind string    `gorm:"size:20;not null;index:idx_device_recipient" json:"recipient_kind"`
	RecipientID   uint      `gorm:"not null;index:idx_device_recipient" json:"recipient_id"`
	DeviceToken   string    `gorm:"size:255;not null;uniqueIndex" json:"device_token"`
	DeviceType    string    `gorm:"size:20" json:"device_type"` // android, ios, web
	DeviceName    string    `gorm:"size:100" json:"device_name"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	LastUsedAt    time.Time `json:"last_used_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (DeviceToken) TableName() string {
	return "fcm_device_tokens"
}
