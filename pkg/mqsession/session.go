// Package mqsession binds the drain pipeline's session contracts to an IBM MQ
// queue manager via the mq-golang-jms20 client. All queue interaction happens
// inside a single transacted JMS context, so a rollback puts the in-flight
// message back on the queue and the queue manager increments its delivery
// count on the next attempt.
package mqsession

import (
	"context"
	"fmt"

	"github.com/ibm-messaging/mq-golang-jms20/jms20subset"
	"github.com/ibm-messaging/mq-golang-jms20/mqjms"
	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-queue-drain/pkg/queuedrain"
)

// deliveryCountProperty is the JMS-defined message property carrying the
// broker's delivery attempt count for the current message.
const deliveryCountProperty = "JMSXDeliveryCount"

// Config holds everything needed to reach one queue on one queue manager.
type Config struct {
	HostName         string
	Port             int
	ChannelName      string
	QueueManagerName string
	QueueName        string
	UserName         string
	Password         string
}

// Session is a transacted session against a single IBM MQ queue. It
// implements queuedrain.QueueSession and queuedrain.MessageSender and must
// not be used concurrently.
type Session struct {
	jmsContext jms20subset.JMSContext
	queue      jms20subset.Queue
	consumer   jms20subset.JMSConsumer
	logger     zerolog.Logger
}

var _ queuedrain.QueueSession = (*Session)(nil)
var _ queuedrain.MessageSender = (*Session)(nil)

// Connect establishes a client connection to the queue manager and opens a
// transacted session with a consumer on the configured queue.
func Connect(cfg Config, logger zerolog.Logger) (*Session, error) {
	cf := mqjms.ConnectionFactoryImpl{
		QMName:      cfg.QueueManagerName,
		Hostname:    cfg.HostName,
		PortNumber:  cfg.Port,
		ChannelName: cfg.ChannelName,
		UserName:    cfg.UserName,
		Password:    cfg.Password,
	}

	jmsContext, jmsErr := cf.CreateContextWithSessionMode(jms20subset.JMSContextSESSIONTRANSACTED)
	if jmsErr != nil {
		return nil, wrapJMS("failed to connect to queue manager", jmsErr)
	}

	queue := jmsContext.CreateQueue(cfg.QueueName)
	consumer, jmsErr := jmsContext.CreateConsumer(queue)
	if jmsErr != nil {
		jmsContext.Close()
		return nil, wrapJMS("failed to create consumer", jmsErr)
	}

	sessionLogger := logger.With().
		Str("component", "MQSession").
		Str("queue_manager", cfg.QueueManagerName).
		Str("queue", cfg.QueueName).
		Logger()
	sessionLogger.Info().Str("host", cfg.HostName).Int("port", cfg.Port).Msg("Connected to queue manager.")

	return &Session{
		jmsContext: jmsContext,
		queue:      queue,
		consumer:   consumer,
		logger:     sessionLogger,
	}, nil
}

// ReceiveNoWait attempts a non-blocking receive on the queue, returning
// (nil, nil) when no message is available. The received message stays in the
// session's open transaction until Commit or Rollback.
func (s *Session) ReceiveNoWait(_ context.Context) (*queuedrain.Message, error) {
	jmsMsg, jmsErr := s.consumer.ReceiveNoWait()
	if jmsErr != nil {
		return nil, wrapJMS("failed to receive message", jmsErr)
	}
	if jmsMsg == nil {
		return nil, nil
	}

	var body string
	if txtMsg, ok := jmsMsg.(jms20subset.TextMessage); ok {
		if txt := txtMsg.GetText(); txt != nil {
			body = *txt
		}
	} else {
		s.logger.Warn().Str("msg_id", jmsMsg.GetJMSMessageID()).Msg("Received non-text message, treating body as empty.")
	}

	deliveryCount, jmsErr := jmsMsg.GetIntProperty(deliveryCountProperty)
	if jmsErr != nil {
		return nil, wrapJMS("failed to read delivery count", jmsErr)
	}

	return &queuedrain.Message{
		ID:            jmsMsg.GetJMSMessageID(),
		Body:          body,
		DeliveryCount: int(deliveryCount),
	}, nil
}

// Send places a text message on the queue inside the open transaction.
func (s *Session) Send(_ context.Context, body string) error {
	producer := s.jmsContext.CreateProducer()
	if jmsErr := producer.SendString(s.queue, body); jmsErr != nil {
		return wrapJMS("failed to send message", jmsErr)
	}
	return nil
}

// Commit makes the open transaction permanent.
func (s *Session) Commit(_ context.Context) error {
	if jmsErr := s.jmsContext.Commit(); jmsErr != nil {
		return wrapJMS("failed to commit transaction", jmsErr)
	}
	return nil
}

// Rollback discards the open transaction, returning any received message to
// the queue for redelivery.
func (s *Session) Rollback(_ context.Context) error {
	if jmsErr := s.jmsContext.Rollback(); jmsErr != nil {
		return wrapJMS("failed to roll back transaction", jmsErr)
	}
	return nil
}

// Close releases the connection to the queue manager. The client does not
// surface close failures, and by this point the batch outcome is already
// decided, so there is nothing to report.
func (s *Session) Close() {
	s.consumer.Close()
	s.jmsContext.Close()
	s.logger.Debug().Msg("Connection to queue manager closed.")
}

// wrapJMS converts the client's JMSException into a standard error, keeping
// the linked provider error in the chain when one is present.
func wrapJMS(op string, jmsErr jms20subset.JMSException) error {
	if linked := jmsErr.GetLinkedError(); linked != nil {
		return fmt.Errorf("%s: %s (%s): %w", op, jmsErr.GetReason(), jmsErr.GetErrorCode(), linked)
	}
	return fmt.Errorf("%s: %s (%s)", op, jmsErr.GetReason(), jmsErr.GetErrorCode())
}
