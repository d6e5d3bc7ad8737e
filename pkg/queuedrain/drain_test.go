package queuedrain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-queue-drain/pkg/queuedrain"
)

func noopHandler(_ context.Context, _ *queuedrain.Message) error { return nil }

func TestNewDrainer_Validation(t *testing.T) {
	_, err := queuedrain.NewDrainer(nil, noopHandler, zerolog.Nop())
	assert.Error(t, err, "nil session must be rejected")

	_, err = queuedrain.NewDrainer(&mockSession{}, nil, zerolog.Nop())
	assert.Error(t, err, "nil handler must be rejected")
}

func TestDrainer_EmptyQueue(t *testing.T) {
	session := &mockSession{}
	drainer, err := queuedrain.NewDrainer(session, noopHandler, zerolog.Nop())
	require.NoError(t, err)

	processed, err := drainer.Drain(context.Background())

	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, session.commits, "an empty drain must not commit")
	assert.Zero(t, session.rollbacks, "an empty drain must not roll back")
}

func TestDrainer_ProcessesAllAvailableMessages(t *testing.T) {
	session := &mockSession{queue: []*queuedrain.Message{
		textMessage("msg-1", "first"),
		textMessage("msg-2", "second"),
		textMessage("msg-3", "third"),
	}}

	var handled []string
	handler := func(_ context.Context, msg *queuedrain.Message) error {
		handled = append(handled, msg.ID)
		return nil
	}

	drainer, err := queuedrain.NewDrainer(session, handler, zerolog.Nop())
	require.NoError(t, err)

	processed, err := drainer.Drain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, processed)
	assert.Equal(t, []string{"msg-1", "msg-2", "msg-3"}, handled, "messages must be handled sequentially in queue order")
	assert.Equal(t, 3, session.commits, "each message must be committed individually")
	assert.Zero(t, session.rollbacks)
}

func TestDrainer_HandlerFailureRollsBackAndAborts(t *testing.T) {
	session := &mockSession{queue: []*queuedrain.Message{
		textMessage("msg-1", "fine"),
		textMessage("msg-2", "broken"),
		textMessage("msg-3", "never seen"),
	}}

	handlerErr := errors.New("business processing failed")
	handler := func(_ context.Context, msg *queuedrain.Message) error {
		if msg.ID == "msg-2" {
			return handlerErr
		}
		return nil
	}

	drainer, err := queuedrain.NewDrainer(session, handler, zerolog.Nop())
	require.NoError(t, err)

	processed, err := drainer.Drain(context.Background())

	require.ErrorIs(t, err, handlerErr)
	assert.Equal(t, 1, processed, "messages committed before the failure still count")
	assert.Equal(t, 1, session.commits, "the earlier commit must stand, independent of the later rollback")
	assert.Equal(t, 1, session.rollbacks, "the failed delivery must be rolled back")
	assert.Len(t, session.queue, 1, "the batch aborts without touching later messages")
}

func TestDrainer_CommitFailureRollsBackAndAborts(t *testing.T) {
	commitErr := errors.New("transaction commit refused")
	session := &mockSession{
		queue:     []*queuedrain.Message{textMessage("msg-1", "fine")},
		commitErr: commitErr,
	}

	drainer, err := queuedrain.NewDrainer(session, noopHandler, zerolog.Nop())
	require.NoError(t, err)

	processed, err := drainer.Drain(context.Background())

	require.ErrorIs(t, err, commitErr)
	assert.Zero(t, processed)
	assert.Equal(t, 1, session.rollbacks)
}

func TestDrainer_ReceiveFailureSurfaced(t *testing.T) {
	receiveErr := errors.New("connection to queue manager lost")
	session := &mockSession{receiveErr: receiveErr}

	drainer, err := queuedrain.NewDrainer(session, noopHandler, zerolog.Nop())
	require.NoError(t, err)

	processed, err := drainer.Drain(context.Background())

	require.ErrorIs(t, err, receiveErr)
	assert.Zero(t, processed)
	assert.Zero(t, session.commits)
	assert.Zero(t, session.rollbacks, "nothing was dequeued, so nothing needs rolling back")
}

func TestDrainer_ContextCancelled(t *testing.T) {
	session := &mockSession{queue: []*queuedrain.Message{textMessage("msg-1", "pending")}}

	drainer, err := queuedrain.NewDrainer(session, noopHandler, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processed, err := drainer.Drain(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, processed)
	assert.Zero(t, session.commits)
}
