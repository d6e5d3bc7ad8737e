package queuedrain_test

import (
	"context"

	"github.com/illmade-knight/go-queue-drain/pkg/queuedrain"
)

// mockSession is a scripted QueueSession for unit tests. The drain loop is
// synchronous and single-threaded, so no locking is needed.
type mockSession struct {
	queue       []*queuedrain.Message
	receiveErr  error
	commitErr   error
	rollbackErr error

	commits   int
	rollbacks int
}

func (m *mockSession) ReceiveNoWait(_ context.Context) (*queuedrain.Message, error) {
	if m.receiveErr != nil {
		return nil, m.receiveErr
	}
	if len(m.queue) == 0 {
		return nil, nil
	}
	head := m.queue[0]
	m.queue = m.queue[1:]
	return head, nil
}

func (m *mockSession) Commit(_ context.Context) error {
	m.commits++
	return m.commitErr
}

func (m *mockSession) Rollback(_ context.Context) error {
	m.rollbacks++
	return m.rollbackErr
}

// textMessage builds a first-delivery message for scripting.
func textMessage(id, body string) *queuedrain.Message {
	return &queuedrain.Message{ID: id, Body: body, DeliveryCount: 1}
}
