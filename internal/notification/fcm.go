package notification

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/messaging"
)

// FCM allows at most 500 tokens per multicast.
const fcmBatchSize = 500

// FCMChannel implements Channel for Firebase Cloud Messaging.
type FCMChannel struct {
	client *messaging.Client
}

// NewFCMChannel wraps client; a nil client makes every Send fail.
func NewFCMChannel(client *messaging.Client) *FCMChannel {
	return &FCMChannel{client: client}
}

// Send pushes title/body to every device token in recipients.
func (f *FCMChannel) Send(recipients []string, title, body string) error {
	if f.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no FCM tokens provided")
	}
	if len(recipients) == 1 {
		return f.sendSingle(recipients[0], title, body)
	}
	return f.sendMulticast(recipients, title, body)
}

func notificationFor(title, body string) (*messaging.Notification, *messaging.AndroidConfig, *messaging.APNSConfig) {
	badge := 1
	return &messaging.Notification{Title: title, Body: body},
		&messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "event_notifications",
				Priority:     messaging.PriorityHigh,
				DefaultSound: true,
			},
		},
		&messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default", Badge: &badge},
			},
		}
}

func (f *FCMChannel) sendSingle(token, title, body string) error {
	n, android, apns := notificationFor(title, body)
	id, err := f.client.Send(context.Background(), &messaging.Message{
		Token:        token,
		Notification: n,
		Android:      android,
		APNS:         apns,
	})
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	log.Printf("✅ FCM message sent: %s", id)
	return nil
}

func (f *FCMChannel) sendMulticast(tokens []string, title, body string) error {
	n, android, apns := notificationFor(title, body)
	failed := 0

	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := i + fcmBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[i:end]

		resp, err := f.client.SendEachForMulticast(context.Background(), &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: n,
			Android:      android,
			APNS:         apns,
		})
		if err != nil {
			log.Printf("❌ Error sending FCM multicast batch: %v", err)
			failed += len(batch)
			continue
		}
		failed += resp.FailureCount
		log.Printf("✅ FCM multicast: %d/%d messages sent", resp.SuccessCount, len(batch))
	}

	if failed > 0 {
		return fmt.Errorf("failed to send to %d/%d tokens", failed, len(tokens))
	}
	return nil
}
