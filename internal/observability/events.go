package observability

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"afribase-messaging/internal/logger"
)

// Envelope is the wire shape of every domain event published to the events
// exchange. Type groups related events under one routing family; Name is the
// specific event.
type Envelope struct {
	Type    string `json:"event_type"`
	Name    string `json:"event_name"`
	Payload any    `json:"payload"`
}

// EventSink delivers envelopes to interested consumers.
type EventSink interface {
	Publish(ctx context.Context, routingKey string, env Envelope, headers map[string]string) error
	Close() error
}

// AMQPSink publishes envelopes to a RabbitMQ topic exchange.
type AMQPSink struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPSink dials RabbitMQ and declares the topic exchange.
func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPSink{conn: conn, channel: ch, exchange: exchange}, nil
}

func (s *AMQPSink) Publish(ctx context.Context, routingKey string, env Envelope, headers map[string]string) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	table := amqp.Table{}
	for key, value := range headers {
		table[key] = value
	}

	return s.channel.PublishWithContext(ctx, s.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      table,
		Body:         body,
	})
}

func (s *AMQPSink) Close() error {
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

var defaultSink EventSink

// SetSink installs the process-wide event sink. Leaving it unset turns
// EmitEvent into a no-op.
func SetSink(sink EventSink) {
	defaultSink = sink
}

// EmitEvent publishes through the installed sink. Delivery is best-effort:
// failures are counted and logged but never surface to the operation that
// produced the event.
func EmitEvent(ctx context.Context, routingKey string, env Envelope, headers map[string]string) {
	if defaultSink == nil {
		return
	}

	if err := defaultSink.Publish(ctx, routingKey, env, headers); err != nil {
		IncAMQPPublishError()
		logger.Warn().Err(err).Str("routing_key", routingKey).Msg("event publish failed")
	}
}

// CorrelationHeaders carries request and trace identifiers into AMQP headers
// so consumers can stitch events back to the originating request.
func CorrelationHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

var _ EventSink = (*AMQPSink)(nil)
