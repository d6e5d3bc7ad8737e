package queuedrain

import (
	"context"

	"github.com/rs/zerolog"
)

// DefaultPoisonThreshold is the delivery count at which a message is treated
// as poison. The threshold counts delivery attempts, not elapsed time: a
// message first delivered carries a count of 1, so the default allows two
// failed attempts before the third delivery is discarded.
const DefaultPoisonThreshold = 3

// NewPoisonGuard wraps a handler with a bounded-retry-then-discard policy.
//
// Deliveries with a count below threshold are passed to the wrapped handler
// unchanged (logging a warning first if the message has already failed at
// least once). Once the count reaches the threshold the guard reports success
// without invoking the handler at all, so the drain loop commits the delivery
// and the message is permanently removed. The discard is deliberate and
// lossy: the message is not routed to any dead-letter destination, only
// logged, which keeps a repeatedly failing message from blocking the queue
// indefinitely.
//
// A threshold of zero or less falls back to DefaultPoisonThreshold.
func NewPoisonGuard(threshold int, next MessageHandler, logger zerolog.Logger) MessageHandler {
	if threshold <= 0 {
		threshold = DefaultPoisonThreshold
	}
	guardLogger := logger.With().Str("component", "PoisonGuard").Int("threshold", threshold).Logger()

	return func(ctx context.Context, msg *Message) error {
		if msg.DeliveryCount >= threshold {
			guardLogger.Warn().
				Str("msg_id", msg.ID).
				Int("delivery_count", msg.DeliveryCount).
				Str("body", msg.Body).
				Msg("Discarding poison message without processing.")
			return nil
		}

		if msg.DeliveryCount > 1 {
			guardLogger.Warn().
				Str("msg_id", msg.ID).
				Int("previous_failures", msg.DeliveryCount-1).
				Msg("Message has previously failed processing, retrying.")
		}

		return next(ctx, msg)
	}
}
