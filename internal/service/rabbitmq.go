package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ad-tracker/video-harm-classifier-go/internal/config"
	"github.com/ad-tracker/video-harm-classifier-go/internal/models"
	"github.com/ad-tracker/video-harm-classifier-go/pkg/logger"
)

const defaultConfirmTimeout = 5 * time.Second

// MessagePublisher publishes one ClassificationEvent per classified video to
// a topic exchange, waiting for the broker confirm of each message.
type MessagePublisher struct {
	conn           *amqp.Connection
	channel        *amqp.Channel
	config         *config.RabbitMQConfig
	confirmTimeout time.Duration
	mu             sync.Mutex
}

func NewMessagePublisher(cfg *config.RabbitMQConfig) (*MessagePublisher, error) {
	mp := &MessagePublisher{
		config:         cfg,
		confirmTimeout: defaultConfirmTimeout,
	}

	if err := mp.connect(); err != nil {
		return nil, err
	}

	return mp, nil
}

func (mp *MessagePublisher) connect() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		mp.config.User, mp.config.Password, mp.config.Host, mp.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		mp.config.Exchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		mp.config.Queue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		amqp.Table{
			"x-message-ttl": 86400000, // 24 hours
			"x-max-length":  100000,
		},
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		mp.config.Queue,      // queue name
		mp.config.RoutingKey, // binding pattern, e.g. classification.#
		mp.config.Exchange,   // exchange
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	mp.conn = conn
	mp.channel = ch

	logger.L().Info("Connected to RabbitMQ",
		zap.String("exchange", mp.config.Exchange),
		zap.String("queue", mp.config.Queue),
	)

	return nil
}

// PublishResults publishes every result of a batch. It stops at the first
// failure.
func (mp *MessagePublisher) PublishResults(ctx context.Context, batchID uuid.UUID, results []models.ClassificationResult) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	now := time.Now().UTC()
	for _, r := range results {
		event := NewClassificationEvent(batchID, r, now)
		if err := mp.publish(ctx, event); err != nil {
			return fmt.Errorf("publish result for %s: %w", r.URL, err)
		}
	}

	logger.L().Debug("Published classification results",
		zap.String("batchId", batchID.String()),
		zap.Int("count", len(results)),
	)

	return nil
}

func (mp *MessagePublisher) publish(ctx context.Context, event models.ClassificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Confirmations are matched to this message by delivery tag.
	dc, err := mp.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		mp.config.Exchange,   // exchange
		RoutingKeyFor(event), // routing key
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.ClassifiedAt,
			MessageId:    event.EventID.String(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, mp.confirmTimeout)
	defer cancel()

	acked, err := dc.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("waiting for publish confirmation: %w", err)
	}
	if !acked {
		return fmt.Errorf("message %d was not acknowledged by broker", dc.DeliveryTag)
	}

	return nil
}

// NewClassificationEvent builds the message body for one result.
func NewClassificationEvent(batchID uuid.UUID, r models.ClassificationResult, at time.Time) models.ClassificationEvent {
	return models.ClassificationEvent{
		EventID:        uuid.New(),
		BatchID:        batchID,
		URL:            r.URL,
		Category:       r.Category,
		Classification: r.Classification,
		Confidence:     r.Confidence,
		ClassifiedAt:   at,
	}
}

// RoutingKeyFor returns classification.harmful or classification.safe.
func RoutingKeyFor(event models.ClassificationEvent) string {
	return "classification." + strings.ToLower(string(event.Classification))
}

func (mp *MessagePublisher) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var errs []error
	if mp.channel != nil {
		if err := mp.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if mp.conn != nil {
		if err := mp.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %v", errs)
	}

	logger.L().Info("RabbitMQ publisher closed")
	return nil
}

func (mp *MessagePublisher) IsHealthy() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.conn != nil && !mp.conn.IsClosed() && mp.channel != nil
}
