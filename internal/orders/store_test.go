package orders

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixtureOrder(id, userID string) Order {
	return Order{
		OrderID: id,
		UserID:  userID,
		Items: []Item{
			{ProductID: "prod-a", Name: "Clay Vase", Quantity: 2, UnitPrice: 100},
		},
		Total: 200,
		Address: Address{
			FullName:     "Asha Rao",
			Email:        "asha@example.com",
			Phone:        "9999999999",
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			State:        "KA",
			PostalCode:   "560001",
			Country:      "India",
		},
		PaymentMethod: MethodCOD,
		PaymentStatus: PaymentPending,
		Status:        StatusPending,
	}
}

func TestCreate_And_Get(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := s.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil {
		t.Fatal("expected order, got nil")
	}
	if got.Total != 200 || got.Status != StatusPending || got.PaymentStatus != PaymentPending {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be stamped on create")
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err == nil {
		t.Fatal("expected error creating the same order id twice")
	}
}

func TestGet_NotFound(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")

	got, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing order, got %+v", got)
	}
}

func TestCreateWithIdempotency_DuplicateKey(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	idempItem := map[string]interface{}{
		"idempotency_key": "key-1",
		"status":          "IN_PROGRESS",
		"order_id":        "order-1",
	}
	if err := s.CreateWithIdempotency(ctx, "idempotency", idempItem, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("first CreateWithIdempotency error: %v", err)
	}

	// both records must exist
	if got, _ := s.Get(ctx, "order-1"); got == nil {
		t.Fatal("order not written by transaction")
	}
	if _, ok := mock.tables["idempotency"]["key-1"]; !ok {
		t.Fatal("idempotency record not written by transaction")
	}

	err := s.CreateWithIdempotency(ctx, "idempotency", idempItem, fixtureOrder("order-2", "user-1"))
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	// the second order must not exist
	if got, _ := s.Get(ctx, "order-2"); got != nil {
		t.Fatal("duplicate attempt must not create a second order")
	}
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	updated, err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	// items and total survive the update untouched
	if updated.Total != 200 || len(updated.Items) != 1 {
		t.Fatalf("order payload changed by status update: %+v", updated)
	}
}

func TestUpdateStatus_DisallowedTransition(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusDelivered); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for pending -> delivered, got %v", err)
	}
	if _, err := s.UpdateStatus(ctx, "order-1", StatusPending, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for unknown status, got %v", err)
	}
}

func TestUpdateStatus_TerminalStateRejectsSecondCancel(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusCancelled); err != nil {
		t.Fatalf("cancel error: %v", err)
	}

	if _, err := s.UpdateStatus(ctx, "order-1", StatusCancelled, StatusCancelled); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus cancelling a cancelled order, got %v", err)
	}
}

func TestUpdateStatus_ConcurrentWriterConflict(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	if err := s.Create(ctx, fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusConfirmed); err != nil {
		t.Fatalf("confirm error: %v", err)
	}

	// a caller that read "pending" before the confirm lands here
	if _, err := s.UpdateStatus(ctx, "order-1", StatusPending, StatusCancelled); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	ctx := context.Background()

	for _, o := range []Order{
		fixtureOrder("order-1", "user-1"),
		fixtureOrder("order-2", "user-2"),
		fixtureOrder("order-3", "user-1"),
	} {
		if err := s.Create(ctx, o); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	list, err := s.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders for user-1, got %d", len(list))
	}
	for _, o := range list {
		if o.UserID != "user-1" {
			t.Fatalf("foreign order in listing: %+v", o)
		}
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders total, got %d", len(all))
	}
}

func TestStoreStampsUTC(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "orders")
	fixed := time.Date(2025, 6, 1, 10, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	s.nowFunc = func() time.Time { return fixed }

	if err := s.Create(context.Background(), fixtureOrder("order-1", "user-1")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	got, err := s.Get(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Fatalf("expected created_at %v, got %v", fixed.UTC(), got.CreatedAt)
	}
}
