package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/craftkart/checkout/internal/notify"
	"github.com/craftkart/checkout/internal/orders"
)

// OrderGetter is the slice of the order store the worker needs.
type OrderGetter interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

// Processor handles notification queue messages and sends the corresponding
// emails. Delivery is at-most-once: nothing here returns an error to the
// Lambda runtime, so no message is retried for a failed send.
type Processor struct {
	store  OrderGetter
	mailer *notify.Mailer
}

// NewProcessor creates a worker processor.
func NewProcessor(store OrderGetter, mailer *notify.Mailer) *Processor {
	return &Processor{
		store:  store,
		mailer: mailer,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	log.Printf("[worker] received %d messages", len(ev.Records))
	for _, rec := range ev.Records {
		p.processMessage(ctx, rec)
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) {
	var msg queueMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		log.Printf("[worker] invalid message body: %v, body: %s", err, rec.Body)
		return
	}

	log.Printf("[worker] order=%s kind=%s status=%s", msg.OrderID, msg.Kind, msg.Status)

	order, err := p.store.Get(ctx, msg.OrderID)
	if err != nil {
		log.Printf("[worker] fetch order=%s: %v", msg.OrderID, err)
		return
	}
	if order == nil {
		log.Printf("[worker] order=%s not found, dropping %s", msg.OrderID, msg.Kind)
		return
	}

	switch msg.Kind {
	case notify.KindOrderConfirmation:
		p.mailer.SendOrderConfirmation(ctx, order)
	case notify.KindStatusUpdate:
		p.mailer.SendStatusUpdate(ctx, order, msg.Status)
	default:
		log.Printf("[worker] unknown message kind %q for order=%s", msg.Kind, msg.OrderID)
	}
}
