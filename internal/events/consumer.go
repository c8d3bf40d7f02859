package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/stayloop/service-booking/pkg/kafka"
)

// TokenCrediter applies a settled token purchase to a user's balance.
// Credits are idempotent per payment ID.
type TokenCrediter interface {
	CreditTokens(ctx context.Context, userID uuid.UUID, tokens int64, paymentID string) (int64, error)
}

// PaymentEventConsumer listens to payment events and credits token purchases
// settled by the payment service.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	crediter TokenCrediter
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	crediter TokenCrediter,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		crediter: crediter,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentTokensPurchased:
		return c.handleTokensPurchased(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleTokensPurchased(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt TokensPurchasedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse TokensPurchasedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing token purchase event",
		zap.String("user_id", evt.UserID.String()),
		zap.String("payment_id", evt.PaymentID),
		zap.Int64("tokens", evt.Tokens),
	)

	balance, err := c.crediter.CreditTokens(ctx, evt.UserID, evt.Tokens, evt.PaymentID)
	if err != nil {
		c.logger.Error("failed to credit token purchase",
			zap.String("user_id", evt.UserID.String()),
			zap.String("payment_id", evt.PaymentID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("token purchase credited",
		zap.String("user_id", evt.UserID.String()),
		zap.String("payment_id", evt.PaymentID),
		zap.Int64("balance", balance),
	)
	return nil
}
