package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/utils"
	"gorm.io/datatypes"
)

// Publisher fans in-app notifications out to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisPublisher struct{}

// NewRedisPublisher publishes through utils.RedisClient and does nothing
// while Redis is down.
func NewRedisPublisher() Publisher {
	return redisPublisher{}
}

func (redisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if utils.RedisClient == nil {
		return nil
	}
	return utils.RedisClient.Publish(ctx, channel, string(payload)).Err()
}

// ChannelFor is the pub/sub channel carrying r's in-app notifications.
func ChannelFor(r Recipient) string {
	return fmt.Sprintf("notifications:%s:%d", r.Kind, r.ID)
}

// Service delivers queued messages and manages device registrations.
type Service struct {
	repo      Repository
	push      Channel
	email     Channel
	publisher Publisher
}

func NewService(repo Repository, push, email Channel, publisher Publisher) *Service {
	return &Service{repo: repo, push: push, email: email, publisher: publisher}
}

// Deliver sends one queued message. Errors wrap domain.ErrTransport.
func (s *Service) Deliver(ctx context.Context, msg Message) error {
	switch {
	case msg.Push != nil:
		return s.deliverPush(ctx, msg.ID, *msg.Push)
	case msg.Email != nil:
		return s.deliverEmail(ctx, msg.ID, *msg.Email)
	}
	return fmt.Errorf("%w: message %s has no payload", domain.ErrTransport, msg.ID)
}

func (s *Service) deliverPush(ctx context.Context, msgID string, p Push) error {
	item := &InAppNotification{
		RecipientKind: p.Recipient.Kind,
		RecipientID:   p.Recipient.ID,
		EventID:       p.EventID,
		Title:         p.Title,
		Message:       p.Body,
		Category:      "event",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.repo.CreateInApp(ctx, item); err != nil {
		log.Printf("❌ storing in-app notification for %s %d failed: %v", p.Recipient.Kind, p.Recipient.ID, err)
	} else if payload, err := json.Marshal(item); err == nil {
		if err := s.publisher.Publish(ctx, ChannelFor(p.Recipient), payload); err != nil {
			log.Printf("⚠️ publishing in-app notification %d failed: %v", item.ID, err)
		}
	}

	tokens, err := s.repo.GetDeviceTokens(ctx, p.Recipient)
	if err != nil {
		return fmt.Errorf("%w: load device tokens: %v", domain.ErrTransport, err)
	}
	if len(tokens) == 0 {
		return nil
	}
	return s.send(ctx, s.push, "push", msgID, p.EventID, tokens, p.Title, p.Body)
}

func (s *Service) deliverEmail(ctx context.Context, msgID string, e Email) error {
	if e.To == "" {
		return nil
	}
	subject, body, err := RenderEmail(e)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return s.send(ctx, s.email, "email", msgID, 0, []string{e.To}, subject, body)
}

func (s *Service) send(ctx context.Context, ch Channel, channel, msgID string, eventID uint, to []string, subject, body string) error {
	recipients, _ := json.Marshal(to)
	entry := &NotificationLog{
		MessageID:  msgID,
		EventID:    eventID,
		Channel:    channel,
		Subject:    subject,
		Body:       body,
		Recipients: datatypes.JSON(recipients),
		Status:     "pending",
	}
	if err := s.repo.CreateLog(ctx, entry); err != nil {
		log.Printf("⚠️ notification log not written: %v", err)
	}

	sendErr := ch.Send(to, subject, body)
	entry.Status = "sent"
	if sendErr != nil {
		msg := sendErr.Error()
		entry.Status = "failed"
		entry.Error = &msg
	}
	if entry.ID != 0 {
		if err := s.repo.UpdateLog(ctx, entry); err != nil {
			log.Printf("⚠️ notification log %d not updated: %v", entry.ID, err)
		}
	}
	if sendErr != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransport, channel, sendErr)
	}
	return nil
}

// ===========================
// 📱 Device tokens and in-app reads
// ===========================

func (s *Service) RegisterDevice(ctx context.Context, r Recipient, token, deviceType, deviceName string) error {
	if token == "" {
		return domain.NewValidationError("device_token", "is required")
	}
	return s.repo.SaveDeviceToken(ctx, &DeviceToken{
		RecipientKind: r.Kind,
		RecipientID:   r.ID,
		DeviceToken:   token,
		DeviceType:    deviceType,
		DeviceName:    deviceName,
	})
}

func (s *Service) RemoveDevice(ctx context.Context, r Recipient, token string) error {
	if token == "" {
		return errors.New("device token is required")
	}
	return s.repo.RemoveDeviceToken(ctx, r, token)
}

func (s *Service) ListInApp(ctx context.Context, r Recipient, limit int) ([]InAppNotification, error) {
	return s.repo.ListInApp(ctx, r, limit)
}

func (s *Service) MarkInAppRead(ctx context.Context, id uint, r Recipient) error {
	return s.repo.MarkInAppAsRead(ctx, id, r)
}
