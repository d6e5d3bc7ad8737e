// Package action is the serverless function surface: it turns one structured
// key-value invocation into a single transactional drain of the configured
// queue and reports the number of messages processed.
package action

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-queue-drain/pkg/mqsession"
	"github.com/illmade-knight/go-queue-drain/pkg/queuedrain"
)

// ResultMessagesProcessed is the key in the result object carrying the number
// of messages successfully processed and committed.
const ResultMessagesProcessed = "messagesProcessed"

// ResultError is the key in the result object carrying the failure
// description when the invocation did not complete.
const ResultError = "error"

// Connection is what the action needs from an open queue transport: the
// transactional session contracts plus scoped release of the underlying
// connection.
type Connection interface {
	queuedrain.QueueSession
	queuedrain.MessageSender
	Close()
}

// Connector opens a Connection for the given configuration. It exists so
// tests can swap the real queue manager for an in-memory broker.
type Connector func(ctx context.Context, cfg mqsession.Config, logger zerolog.Logger) (Connection, error)

// mqConnector is the production Connector, dialling a real queue manager.
func mqConnector(_ context.Context, cfg mqsession.Config, logger zerolog.Logger) (Connection, error) {
	return mqsession.Connect(cfg, logger)
}

// Action processes messages from a queue on an IBM MQ queue manager. One
// invocation drains whatever messages are currently available and stops.
type Action struct {
	connect Connector
	handler queuedrain.MessageHandler
	logger  zerolog.Logger
}

// NewAction creates the function entry point. A nil connector uses the real
// IBM MQ transport; a nil handler uses the placeholder text handler.
func NewAction(connect Connector, handler queuedrain.MessageHandler, logger zerolog.Logger) *Action {
	if connect == nil {
		connect = mqConnector
	}
	if handler == nil {
		handler = NewProcessTextHandler(logger)
	}
	return &Action{
		connect: connect,
		handler: handler,
		logger:  logger.With().Str("component", "Action").Logger(),
	}
}

// Invoke runs one execution of the function: validate parameters, connect,
// optionally seed synthetic test messages, drain the queue, and return a
// structured result. The connection is released on every path; errors during
// that release are ignored since the batch outcome is already determined.
func (a *Action) Invoke(ctx context.Context, args map[string]interface{}) map[string]interface{} {
	params, err := ParseParams(args)
	if err != nil {
		a.logger.Error().Err(err).Msg("Invalid invocation parameters.")
		return errorResult(err)
	}

	conn, err := a.connect(ctx, params.Connection, a.logger)
	if err != nil {
		// No message has been dequeued yet, so there is nothing to roll back.
		a.logger.Error().Err(err).Msg("Failed to open queue connection.")
		return errorResult(err)
	}
	defer conn.Close()

	if params.NumTestMessages > 0 {
		if err := seedTestMessages(ctx, conn, params.NumTestMessages, a.logger); err != nil {
			a.logger.Error().Err(err).Msg("Failed to seed test messages.")
			return errorResult(err)
		}
	}

	guarded := queuedrain.NewPoisonGuard(queuedrain.DefaultPoisonThreshold, a.handler, a.logger)
	drainer, err := queuedrain.NewDrainer(conn, guarded, a.logger)
	if err != nil {
		return errorResult(err)
	}

	processed, err := drainer.Drain(ctx)
	if err != nil {
		a.logger.Error().Err(err).Int("messages_processed", processed).Msg("Drain aborted.")
		return errorResult(err)
	}

	return map[string]interface{}{ResultMessagesProcessed: processed}
}

// seedTestMessages puts n sample messages on the queue and commits them so
// the subsequent drain can observe them.
func seedTestMessages(ctx context.Context, conn Connection, n int, logger zerolog.Logger) error {
	for i := 1; i <= n; i++ {
		body := fmt.Sprintf("SampleMessage%d: %s", i, time.Now().UTC().Format(time.RFC3339))
		if err := conn.Send(ctx, body); err != nil {
			return fmt.Errorf("failed to send test message %d: %w", i, err)
		}
	}
	if err := conn.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit test messages: %w", err)
	}
	logger.Info().Int("count", n).Msg("Sent test messages.")
	return nil
}

func errorResult(err error) map[string]interface{} {
	return map[string]interface{}{ResultError: err.Error()}
}
