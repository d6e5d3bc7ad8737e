package queuedrain

import (
	"context"
)

// ====================================================================================
// This file defines the contracts between the drain loop, the transactional
// queue transport, and the injected business logic.
// ====================================================================================

// QueueSession is a transactional context bound to one queue connection. All
// receive, commit and rollback calls for a drain happen within a single
// session, which carries exactly one outstanding transaction at a time and is
// never used concurrently.
type QueueSession interface {
	// ReceiveNoWait attempts a non-blocking receive of the next message.
	// It returns (nil, nil) when the queue is currently empty. A received
	// message is held in the session's open transaction until Commit or
	// Rollback is called.
	ReceiveNoWait(ctx context.Context) (*Message, error)

	// Commit makes the current transaction permanent, removing any message
	// received within it from the queue.
	Commit(ctx context.Context) error

	// Rollback discards the current transaction, returning any message
	// received within it to the queue for redelivery with an incremented
	// delivery count.
	Rollback(ctx context.Context) error
}

// MessageSender sends text messages within the session's transaction. Sends
// become visible on the queue only once the transaction commits. It exists so
// the function can seed synthetic test messages ahead of a drain; in normal
// operation messages are placed on the queue by a separate application.
type MessageSender interface {
	Send(ctx context.Context, body string) error
}

// MessageHandler is the injected business capability applied to each received
// message. Returning nil reports success and causes the delivery to be
// committed; returning an error reports a retryable failure and causes the
// transaction to be rolled back.
type MessageHandler func(ctx context.Context, msg *Message) error
