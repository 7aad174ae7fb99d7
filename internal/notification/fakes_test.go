package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
)

type fakeRepo struct {
	mu     sync.Mutex
	logs   []NotificationLog
	inApp  []InAppNotification
	tokens map[Recipient][]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tokens: map[Recipient][]string{}}
}

func (r *fakeRepo) CreateLog(_ context.Context, l *NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uint(len(r.logs) + 1)
	r.logs = append(r.logs, *l)
	return nil
}

func (r *fakeRepo) UpdateLog(_ context.Context, l *NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[l.ID-1] = *l
	return nil
}

func (r *fakeRepo) CreateInApp(_ context.Context, n *InAppNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint(len(r.inApp) + 1)
	r.inApp = append(r.inApp, *n)
	return nil
}

func (r *fakeRepo) ListInApp(_ context.Context, rcpt Recipient, limit int) ([]InAppNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []InAppNotification
	for _, n := range r.inApp {
		if n.RecipientKind == rcpt.Kind && n.RecipientID == rcpt.ID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkInAppAsRead(context.Context, uint, Recipient) error { return nil }

func (r *fakeRepo) SaveDeviceToken(_ context.Context, t *DeviceToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rcpt := Recipient{Kind: t.RecipientKind, ID: t.RecipientID}
	r.tokens[rcpt] = append(r.tokens[rcpt], t.DeviceToken)
	return nil
}

func (r *fakeRepo) GetDeviceTokens(_ context.Context, rcpt Recipient) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[rcpt], nil
}

func (r *fakeRepo) RemoveDeviceToken(context.Context, Recipient, string) error { return nil }

type sent struct {
	to      []string
	subject string
	body    string
}

type fakeChannel struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (c *fakeChannel) Send(to []string, subject, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sent{to: to, subject: subject, body: body})
	return c.err
}

type fakePublisher struct {
	mu       sync.Mutex
	channels []string
}

func (p *fakePublisher) Publish(_ context.Context, channel string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	return nil
}

type fakeDeliverer struct {
	mu   sync.Mutex
	msgs []Message
}

func (d *fakeDeliverer) Deliver(_ context.Context, m Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, m)
	return nil
}

func (d *fakeDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.msgs)
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (q *fakeQueue) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, msgs...)
	return nil
}

// fakeReader replays msgs and then blocks until ctx is cancelled.
type fakeReader struct {
	msgs   []kafka.Message
	closed bool
}

var errReaderDone = errors.New("reader drained")

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, errReaderDone
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}
