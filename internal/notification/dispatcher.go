package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Deliverer sends a single message. *Service implements it.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// Queue is the write side of the notification topic. *kafka.Writer
// implements it.
type Queue interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Dispatcher hands batches off for delivery without blocking the caller.
// With a queue the messages go to Kafka; without one, or when the write
// fails, they are delivered in-process.
type Dispatcher struct {
	queue     Queue
	deliverer Deliverer
	wg        sync.WaitGroup
}

// NewDispatcher builds a dispatcher; pass a nil queue to deliver in-process.
func NewDispatcher(queue Queue, deliverer Deliverer) *Dispatcher {
	return &Dispatcher{queue: queue, deliverer: deliverer}
}

// Dispatch is fire-and-forget: failures are logged, never returned.
func (d *Dispatcher) Dispatch(b Batch) {
	if b.Empty() {
		return
	}
	msgs := b.messages()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx := context.Background()
		if d.queue != nil {
			err := d.enqueue(ctx, msgs)
			if err == nil {
				return
			}
			log.Printf("⚠️ Kafka enqueue of %d notification(s) failed, delivering in-process: %v", len(msgs), err)
		}
		d.deliverAll(ctx, msgs)
	}()
}

// Wait blocks until every in-flight Dispatch has finished handing off.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) enqueue(ctx context.Context, msgs []Message) error {
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		value, err := json.Marshal(m)
		if err != nil {
			return err
		}
		out = append(out, kafka.Message{Key: []byte(m.ID), Value: value})
	}
	return d.queue.WriteMessages(ctx, out...)
}

func (d *Dispatcher) deliverAll(ctx context.Context, msgs []Message) {
	var wg sync.WaitGroup
	for _, m := range msgs {
		wg.Add(1)
		go func(m Message) {
			defer wg.Done()
			if err := d.deliverer.Deliver(ctx, m); err != nil {
				log.Printf("❌ notification %s not delivered: %v", m.ID, err)
			}
		}(m)
	}
	wg.Wait()
}

func (b Batch) messages() []Message {
	out := make([]Message, 0, len(b.Push)+len(b.Emails))
	for i := range b.Push {
		p := b.Push[i]
		out = append(out, Message{ID: uuid.NewString(), Push: &p})
	}
	for i := range b.Emails {
		e := b.Emails[i]
		out = append(out, Message{ID: uuid.NewString(), Email: &e})
	}
	return out
}

// ===========================
// 📥 Kafka consumer
// ===========================

const readRetryDelay = time.Second

// MessageReader is the read side of the notification topic. *kafka.Reader
// implements it.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// StartKafkaConsumer delivers queued messages until ctx is cancelled or the
// reader is closed. Undeliverable messages are logged and skipped.
func StartKafkaConsumer(ctx context.Context, reader MessageReader, deliverer Deliverer) {
	log.Println("✅ Notification consumer started")
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("⚠️ closing Kafka reader: %v", err)
		}
	}()

	for {
		km, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				log.Println("🛑 Notification consumer stopped")
				return
			}
			log.Printf("❌ Kafka read failed: %v", err)
			time.Sleep(readRetryDelay)
			continue
		}

		var msg Message
		if err := json.Unmarshal(km.Value, &msg); err != nil {
			log.Printf("⚠️ skipping malformed notification at offset %d: %v", km.Offset, err)
			continue
		}
		if err := deliverer.Deliver(ctx, msg); err != nil {
			log.Printf("❌ notification %s not delivered: %v", msg.ID, err)
		}
	}
}
