// Package checkout coordinates order placement: cart snapshot, stock
// reservation, order persistence, notification, cart clear. The reserve and
// persist steps carry compensating releases so a failed checkout never leaves
// stock reserved without an order record.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/craftkart/checkout/internal/cart"
	"github.com/craftkart/checkout/internal/idempotency"
	"github.com/craftkart/checkout/internal/orders"
)

// CartReader supplies the immutable snapshot a checkout operates on.
type CartReader interface {
	ReadAndValidate(ctx context.Context, userID string) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID string) error
}

// StockLedger performs atomic per-product stock mutations.
type StockLedger interface {
	Reserve(ctx context.Context, productID string, quantity int) error
	Release(ctx context.Context, productID string, quantity int) error
}

// OrderStore persists and transitions order records.
type OrderStore interface {
	Create(ctx context.Context, order orders.Order) error
	CreateWithIdempotency(ctx context.Context, idempotencyTable string, idempotencyItem interface{}, order orders.Order) error
	Get(ctx context.Context, orderID string) (*orders.Order, error)
	UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) (*orders.Order, error)
}

// Notifier dispatches emails. Methods return nothing: delivery is best
// effort and must not influence the caller's outcome.
type Notifier interface {
	OrderConfirmation(ctx context.Context, order *orders.Order)
	StatusUpdate(ctx context.Context, order *orders.Order, status string)
}

// Orchestrator runs the order placement flow.
type Orchestrator struct {
	carts            CartReader
	stock            StockLedger
	store            OrderStore
	notifier         Notifier
	idemp            *idempotency.Store
	idempotencyTable string
	newID            func() string
	nowFunc          func() time.Time
}

// New wires an Orchestrator. idemp and idempotencyTable are only consulted
// for requests that carry an idempotency key.
func New(carts CartReader, stock StockLedger, store OrderStore, notifier Notifier, idemp *idempotency.Store, idempotencyTable string) *Orchestrator {
	return &Orchestrator{
		carts:            carts,
		stock:            stock,
		store:            store,
		notifier:         notifier,
		idemp:            idemp,
		idempotencyTable: idempotencyTable,
		newID:            uuid.NewString,
		nowFunc:          time.Now,
	}
}

// PlaceOrderInput is the validated checkout request. CardNumber is the raw
// number for card payments; only its summary survives past this call.
type PlaceOrderInput struct {
	UserID         string
	Address        orders.Address
	PaymentMethod  string
	CardNumber     string
	IdempotencyKey string
}

// PlaceOrder executes one checkout attempt. On success exactly one order
// record exists and the cart has been cleared (best effort). On failure no
// order record exists and every reservation made during the attempt has been
// released.
func (o *Orchestrator) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*orders.Order, error) {
	// Validating: no side effects before this passes.
	if !orders.ValidPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment method %q", ErrValidation, in.PaymentMethod)
	}
	if in.PaymentMethod == orders.MethodCard && in.CardNumber == "" {
		return nil, fmt.Errorf("%w: card payment requires card details", ErrValidation)
	}

	snap, err := o.carts.ReadAndValidate(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	// ReservingStock: stable cart order. First failure unwinds everything
	// reserved so far before the error surfaces.
	reserved := make([]cart.LineItem, 0, len(snap.Items))
	for _, item := range snap.Items {
		if err := o.stock.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			o.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	order := o.buildOrder(in, snap)

	// Persisting: a failed write releases every reservation from this attempt.
	if err := o.persist(ctx, in.IdempotencyKey, order); err != nil {
		o.releaseAll(ctx, reserved)
		if errors.Is(err, orders.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: key %q", ErrDuplicateCheckout, in.IdempotencyKey)
		}
		return nil, fmt.Errorf("%w: %s", ErrPersistence, err)
	}

	// Notifying: best effort, the notifier logs its own failures.
	o.notifier.OrderConfirmation(ctx, &order)

	// ClearingCart: the order stands even if this fails; a stale cart is a
	// lesser defect than a lost order.
	if err := o.carts.Clear(ctx, in.UserID); err != nil {
		log.Printf("checkout: clear cart for user=%s after order=%s: %v", in.UserID, order.OrderID, err)
	}

	return &order, nil
}

// UpdateOrderStatus transitions an order through its lifecycle. Moving to
// cancelled releases the reserved stock for every line item; the conditional
// status write guarantees that happens at most once.
func (o *Orchestrator) UpdateOrderStatus(ctx context.Context, orderID, newStatus string) (*orders.Order, error) {
	current, err := o.store.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPersistence, err)
	}
	if current == nil {
		return nil, ErrOrderNotFound
	}

	updated, err := o.store.UpdateStatus(ctx, orderID, current.Status, newStatus)
	if err != nil {
		return nil, err
	}

	if newStatus == orders.StatusCancelled {
		for _, it := range updated.Items {
			if err := o.stock.Release(ctx, it.ProductID, it.Quantity); err != nil {
				log.Printf("checkout: release %d x %s for cancelled order=%s: %v", it.Quantity, it.ProductID, orderID, err)
			}
		}
	}

	o.notifier.StatusUpdate(ctx, updated, newStatus)
	return updated, nil
}

func (o *Orchestrator) buildOrder(in PlaceOrderInput, snap *cart.Snapshot) orders.Order {
	items := make([]orders.Item, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, orders.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	order := orders.Order{
		OrderID:       o.newID(),
		UserID:        in.UserID,
		Items:         items,
		Total:         snap.Total,
		Address:       in.Address,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: orders.PaymentPending,
		Status:        orders.StatusPending,
		CreatedAt:     o.nowFunc().UTC(),
	}
	if in.PaymentMethod == orders.MethodCard {
		summary := orders.CardSummaryFromNumber(in.CardNumber)
		order.CardSummary = &summary
	}
	return order
}

func (o *Orchestrator) persist(ctx context.Context, idempotencyKey string, order orders.Order) error {
	if idempotencyKey == "" {
		return o.store.Create(ctx, order)
	}
	rec := o.idemp.NewRecord(idempotencyKey, order.OrderID)
	return o.store.CreateWithIdempotency(ctx, o.idempotencyTable, rec, order)
}

// releaseAll unwinds reservations in reverse order. Release failures are
// logged and the unwind continues; stock drift is recoverable, a stuck
// checkout is not.
func (o *Orchestrator) releaseAll(ctx context.Context, reserved []cart.LineItem) {
	for i := len(reserved) - 1; i >= 0; i-- {
		it := reserved[i]
		if err := o.stock.Release(ctx, it.ProductID, it.Quantity); err != nil {
			log.Printf("checkout: compensating release %d x %s: %v", it.Quantity, it.ProductID, err)
		}
	}
}
