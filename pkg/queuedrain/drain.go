package queuedrain

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Drainer processes all messages currently available on a queue, one at a
// time, committing or rolling back each delivery based on the handler's
// outcome. It is single-threaded by design: the underlying session supports
// one uncommitted unit of work at a time.
type Drainer struct {
	session QueueSession
	handler MessageHandler
	logger  zerolog.Logger
}

// NewDrainer creates a Drainer over an open transactional session.
func NewDrainer(session QueueSession, handler MessageHandler, logger zerolog.Logger) (*Drainer, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	return &Drainer{
		session: session,
		handler: handler,
		logger:  logger.With().Str("component", "Drainer").Logger(),
	}, nil
}

// Drain receives and handles messages until the queue is empty, then returns
// the number of messages committed. Each message's commit is immediate and
// independent of the rest of the batch.
//
// On a handler failure the delivery is rolled back onto the queue and the
// batch aborts: the count of messages committed before the failure is
// returned alongside the error. The invocation model is ephemeral, so the
// next scheduled execution retries from the queue's current state.
func (d *Drainer) Drain(ctx context.Context) (int, error) {
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		msg, err := d.session.ReceiveNoWait(ctx)
		if err != nil {
			return processed, fmt.Errorf("failed to receive message: %w", err)
		}
		if msg == nil {
			// Queue is drained.
			d.logger.Info().Int("messages_processed", processed).Msg("Queue drained, no more messages available.")
			return processed, nil
		}

		if err := d.handler(ctx, msg); err != nil {
			d.logger.Error().Err(err).Str("msg_id", msg.ID).Msg("Handler failed, rolling back delivery.")
			if rbErr := d.session.Rollback(ctx); rbErr != nil {
				d.logger.Error().Err(rbErr).Str("msg_id", msg.ID).Msg("Rollback failed.")
			}
			return processed, fmt.Errorf("failed to process message %s: %w", msg.ID, err)
		}

		if err := d.session.Commit(ctx); err != nil {
			d.logger.Error().Err(err).Str("msg_id", msg.ID).Msg("Commit failed, rolling back delivery.")
			if rbErr := d.session.Rollback(ctx); rbErr != nil {
				d.logger.Error().Err(rbErr).Str("msg_id", msg.ID).Msg("Rollback failed.")
			}
			return processed, fmt.Errorf("failed to commit message %s: %w", msg.ID, err)
		}

		processed++
		d.logger.Debug().Str("msg_id", msg.ID).Int("messages_processed", processed).Msg("Message committed.")
	}
}
