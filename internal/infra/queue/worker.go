package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/brightforge/agency-leads/internal/entity"
)

// LeadNotifier tells the sales team about a lead that reached the CRM.
type LeadNotifier interface {
	NotifyLeadSynced(ctx context.Context, event entity.LeadSyncedEvent) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Notifier LeadNotifier
	Logger   *zap.Logger
}

func NewWorker(ch Consumer, notifier LeadNotifier, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
		Logger:   logger,
	}
}

// Start registers the consumer and blocks until ctx ends or the broker
// closes the delivery channel.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register rabbitmq consumer: %w", err)
	}

	w.Logger.Info("lead notification worker waiting", zap.String("queue", queueName))
	w.Run(ctx, msgs)
	return nil
}

func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("delivery channel closed")
				return
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event entity.LeadSyncedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// malformed payloads go straight to the DLQ
		w.Logger.Error("invalid lead synced payload", zap.Error(err))
		d.Nack(false, false)
		return
	}

	if err := w.Notifier.NotifyLeadSynced(ctx, event); err != nil {
		w.Logger.Error("lead notification failed",
			zap.Error(err),
			zap.String("event_id", event.EventID),
			zap.Bool("redelivered", d.Redelivered))
		// one retry, then dead-letter
		d.Nack(false, !d.Redelivered)
		return
	}

	w.Logger.Info("lead notification sent", zap.String("contact_id", event.ContactID))
	d.Ack(false)
}
