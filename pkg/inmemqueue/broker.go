// Package inmemqueue provides an in-memory queue broker with transacted
// sessions. It mirrors the semantics the drain loop relies on from a real
// queue manager — non-blocking receive, per-session commit/rollback, and
// broker-maintained delivery counts — so the pipeline can be exercised in
// unit tests and local simulation without a broker running.
package inmemqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/illmade-knight/go-queue-drain/pkg/queuedrain"
)

// storedMessage is the broker-side record of a queued message.
type storedMessage struct {
	id            string
	body          string
	deliveryCount int
	publishTime   time.Time
}

// Broker holds named queues. It is safe for concurrent use, though each
// Session it hands out must be used by a single goroutine at a time.
type Broker struct {
	mu     sync.Mutex
	queues map[string][]*storedMessage
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{queues: make(map[string][]*storedMessage)}
}

// Depth returns the number of committed messages currently on the named queue.
func (b *Broker) Depth(queueName string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queueName])
}

// CreateSession opens a transacted session against the named queue. The
// session carries at most one open transaction; received messages and pending
// sends are held in it until Commit or Rollback.
func (b *Broker) CreateSession(queueName string) *Session {
	return &Session{broker: b, queueName: queueName}
}

// Session is a transacted view over one queue on the broker. It implements
// queuedrain.QueueSession and queuedrain.MessageSender.
type Session struct {
	broker    *Broker
	queueName string

	// Open transaction state: messages received but not yet resolved, and
	// sends not yet made visible.
	received     []*storedMessage
	pendingSends []*storedMessage
}

var _ queuedrain.QueueSession = (*Session)(nil)
var _ queuedrain.MessageSender = (*Session)(nil)

// ReceiveNoWait takes the message at the head of the queue, increments its
// delivery count, and holds it in the open transaction. It returns (nil, nil)
// when the queue is empty.
func (s *Session) ReceiveNoWait(ctx context.Context) (*queuedrain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()

	q := s.broker.queues[s.queueName]
	if len(q) == 0 {
		return nil, nil
	}

	head := q[0]
	s.broker.queues[s.queueName] = q[1:]

	head.deliveryCount++
	s.received = append(s.received, head)

	return &queuedrain.Message{
		ID:            head.id,
		Body:          head.body,
		DeliveryCount: head.deliveryCount,
		PublishTime:   head.publishTime,
	}, nil
}

// Send queues a message inside the open transaction. It becomes visible on
// the queue only when the transaction commits.
func (s *Session) Send(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.pendingSends = append(s.pendingSends, &storedMessage{
		id:          fmt.Sprintf("ID:%s", uuid.NewString()),
		body:        body,
		publishTime: time.Now().UTC(),
	})
	return nil
}

// Commit resolves the open transaction: received messages are permanently
// removed and pending sends become visible at the tail of the queue.
func (s *Session) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()

	s.received = nil
	if len(s.pendingSends) > 0 {
		s.broker.queues[s.queueName] = append(s.broker.queues[s.queueName], s.pendingSends...)
		s.pendingSends = nil
	}
	return nil
}

// Rollback discards the open transaction: received messages return to the
// head of the queue in their original order, ready for redelivery, and
// pending sends are dropped.
func (s *Session) Rollback(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()

	if len(s.received) > 0 {
		s.broker.queues[s.queueName] = append(s.received, s.broker.queues[s.queueName]...)
		s.received = nil
	}
	s.pendingSends = nil
	return nil
}
