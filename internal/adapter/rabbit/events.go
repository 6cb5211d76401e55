package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/yerzhank/ride-dispatch/internal/domain/models"
	"github.com/yerzhank/ride-dispatch/pkg/logger"
	wrap "github.com/yerzhank/ride-dispatch/pkg/logger/wrapper"
	"github.com/yerzhank/ride-dispatch/pkg/metrics"
	"github.com/yerzhank/ride-dispatch/pkg/rabbit"
)

const (
	RideExchange = "ride_topic"

	serviceName = "dispatch"
)

// RideBroker publishes ride lifecycle events for downstream consumers
// (billing, analytics). Delivery is best-effort: dispatch never blocks
// on the broker.
type RideBroker struct {
	client       *rabbit.RabbitMQ
	RideExchange string

	l logger.Logger
}

func NewRideBroker(client *rabbit.RabbitMQ, log logger.Logger) *RideBroker {
	return &RideBroker{
		client:       client,
		RideExchange: RideExchange,

		l: log,
	}
}

// Setup declares the topic exchange. Safe to call on every start.
func (r *RideBroker) Setup(ctx context.Context) error {
	if err := r.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, err)
	}

	if err := r.client.Channel.ExchangeDeclare(
		r.RideExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to declare exchange: %w", err))
	}
	return nil
}

// PublishRideStatus emits a lifecycle event with routing key
// 'ride.status.{STATUS}' on the ride topic exchange.
func (r *RideBroker) PublishRideStatus(ctx context.Context, msg models.RideStatusMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_ride_status")

	if err := r.client.EnsureConnection(ctx); err != nil {
		r.l.Error(ctx, "ensure connection failed", err)
		metrics.RecordRabbitMQPublish(serviceName, r.RideExchange, err)
		return wrap.Error(ctx, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	key := fmt.Sprintf("ride.status.%s", msg.Status)

	err = retry(5, time.Second, func() error {
		return r.client.Channel.PublishWithContext(
			ctx,
			r.RideExchange, // exchange
			key,            // routing key
			false,          // mandatory
			false,          // immediate
			amqp091.Publishing{
				ContentType:   "application/json",
				CorrelationId: msg.RideID.String(),
				Body:          body,
				Timestamp:     time.Now(),
			},
		)
	})

	metrics.RecordRabbitMQPublish(serviceName, r.RideExchange, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish ride status: %w", err))
	}
	return nil
}

// retry runs fn up to attempts times with a fixed pause between tries.
func retry(attempts int, pause time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(pause)
	}
	return err
}
