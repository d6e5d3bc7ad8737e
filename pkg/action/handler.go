package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-queue-drain/pkg/queuedrain"
)

// PoisonMarker is a body substring that makes the placeholder handler
// simulate a retryable processing failure, so the rollback and poison paths
// can be exercised end to end without real failing business logic.
const PoisonMarker = "POISON MESSAGE!"

// NewProcessTextHandler returns the placeholder business handler: it logs
// each message it is given and succeeds, except for bodies containing
// PoisonMarker, which fail.
func NewProcessTextHandler(logger zerolog.Logger) queuedrain.MessageHandler {
	handlerLogger := logger.With().Str("component", "ProcessTextHandler").Logger()

	return func(_ context.Context, msg *queuedrain.Message) error {
		if strings.Contains(msg.Body, PoisonMarker) {
			return fmt.Errorf("simulated failure triggered by message body")
		}

		// TODO: replace with the real business processing for the message.
		handlerLogger.Info().Str("msg_id", msg.ID).Str("body", msg.Body).Msg("Successfully processed message.")
		return nil
	}
}
