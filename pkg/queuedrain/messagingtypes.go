package queuedrain

import (
	"time"
)

// Message is the canonical representation of a single delivery handed to the
// drain loop. The queue broker owns the metadata; the loop only observes it.
type Message struct {
	// ID is the broker-assigned unique identifier for the message.
	ID string

	// Body is the text payload of the message.
	Body string

	// DeliveryCount is the number of times the broker has attempted to
	// deliver this message, starting at 1 on first delivery. The broker
	// increments it each time the message is redelivered after a rollback.
	DeliveryCount int

	// PublishTime is the timestamp when the message was originally sent.
	PublishTime time.Time
}
