// Package notify handles order-confirmation and status-update emails. The
// whole path is best effort: the orchestrator enqueues a message after the
// order is durable, the worker attempts delivery once, and failures anywhere
// are logged and swallowed. A lost email never fails a checkout.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/craftkart/checkout/internal/orders"
)

// Message kinds carried on the notification queue.
const (
	KindOrderConfirmation = "order_confirmation"
	KindStatusUpdate      = "status_update"
)

// Message is the notification queue payload. The worker re-reads the order
// from storage, so the payload only identifies what to send.
type Message struct {
	OrderID string `json:"order_id"`
	Kind    string `json:"kind"`
	Status  string `json:"status,omitempty"` // status_update only
}

// Publisher abstracts the queue the notifier writes to.
type Publisher interface {
	Publish(ctx context.Context, messageBody string, attributes map[string]string) error
}

// QueueNotifier dispatches notification work to the queue after the
// transactional part of a checkout commits.
type QueueNotifier struct {
	publisher Publisher
}

func NewQueueNotifier(publisher Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: publisher}
}

// OrderConfirmation enqueues a confirmation email for a freshly placed order.
func (n *QueueNotifier) OrderConfirmation(ctx context.Context, order *orders.Order) {
	n.enqueue(ctx, Message{OrderID: order.OrderID, Kind: KindOrderConfirmation})
}

// StatusUpdate enqueues a status-change email.
func (n *QueueNotifier) StatusUpdate(ctx context.Context, order *orders.Order, status string) {
	n.enqueue(ctx, Message{OrderID: order.OrderID, Kind: KindStatusUpdate, Status: status})
}

func (n *QueueNotifier) enqueue(ctx context.Context, msg Message) {
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("notify: marshal %s for order=%s: %v", msg.Kind, msg.OrderID, err)
		return
	}
	attrs := map[string]string{
		"order_id": msg.OrderID,
		"kind":     msg.Kind,
	}
	if err := n.publisher.Publish(ctx, string(body), attrs); err != nil {
		log.Printf("notify: enqueue %s for order=%s failed: %v", msg.Kind, msg.OrderID, err)
	}
}

// EmailSender abstracts the transport that actually delivers mail.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// Mailer renders and sends the emails. Used by the queue worker.
type Mailer struct {
	sender EmailSender
}

func NewMailer(sender EmailSender) *Mailer {
	return &Mailer{sender: sender}
}

// SendOrderConfirmation attempts one delivery of the confirmation email.
func (m *Mailer) SendOrderConfirmation(ctx context.Context, order *orders.Order) {
	subject := fmt.Sprintf("Order Confirmation - #%s", order.OrderID)
	if err := m.sender.SendEmail(ctx, order.Address.Email, subject, ConfirmationHTML(order)); err != nil {
		log.Printf("notify: confirmation email for order=%s failed: %v", order.OrderID, err)
	}
}

// SendStatusUpdate attempts one delivery of the status-change email. Statuses
// without a message template are skipped.
func (m *Mailer) SendStatusUpdate(ctx context.Context, order *orders.Order, status string) {
	if _, ok := statusMessages[status]; !ok {
		log.Printf("notify: no status email template for %q, order=%s", status, order.OrderID)
		return
	}
	subject := fmt.Sprintf("Order Update - #%s", order.OrderID)
	if err := m.sender.SendEmail(ctx, order.Address.Email, subject, StatusUpdateHTML(order, status)); err != nil {
		log.Printf("notify: status email for order=%s failed: %v", order.OrderID, err)
	}
}
