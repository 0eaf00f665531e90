package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftkart/checkout/internal/aws"
	"github.com/craftkart/checkout/internal/cart"
	"github.com/craftkart/checkout/internal/checkout"
	"github.com/craftkart/checkout/internal/idempotency"
	"github.com/craftkart/checkout/internal/inventory"
	"github.com/craftkart/checkout/internal/metrics"
	"github.com/craftkart/checkout/internal/notify"
	"github.com/craftkart/checkout/internal/orders"
	"github.com/craftkart/checkout/internal/validation"
)

// HandlerConfig groups dependencies for the orders handler.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	CartsTable       string
	ProductsTable    string
	OrdersTable      string
	IdempotencyTable string
	QueueURL         string
	MetricsNamespace string
	TTLWindow        time.Duration
}

// RegisterOrdersRoutes registers routes for the order API.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	carts := cart.NewReader(cfg.DynamoDBClient, cfg.CartsTable, cfg.ProductsTable)
	ledger := inventory.NewLedger(cfg.DynamoDBClient, cfg.ProductsTable)
	orderStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)
	idempStore := idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow)
	notifier := notify.NewQueueNotifier(aws.NewPublisher(cfg.SQSClient, cfg.QueueURL))
	recorder := metrics.NewRecorder(cfg.CloudWatchClient, cfg.MetricsNamespace)

	orch := checkout.New(carts, ledger, orderStore, notifier, idempStore, cfg.IdempotencyTable)

	user := r.Group("/", RequireUser())

	user.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.PlaceOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			recorder.CheckoutOutcome(ctx, metrics.OutcomeValidationFailed)
			return
		}

		in := checkout.PlaceOrderInput{
			UserID:         currentUser(c),
			Address:        toAddress(req.Address),
			PaymentMethod:  req.PaymentMethod,
			IdempotencyKey: c.GetHeader("Idempotency-Key"),
		}
		if req.CardDetails != nil {
			in.CardNumber = req.CardDetails.CardNumber
		}

		order, err := orch.PlaceOrder(ctx, in)
		if err != nil {
			writeCheckoutError(c, recorder, idempStore, in.IdempotencyKey, err)
			return
		}
		recorder.CheckoutOutcome(ctx, metrics.OutcomeSucceeded)

		body := orderSummary(order)
		if in.IdempotencyKey != "" {
			responseBody, _ := json.Marshal(body)
			if err := idempStore.MarkDone(ctx, in.IdempotencyKey, string(responseBody), http.StatusCreated); err != nil {
				// duplicates will see IN_PROGRESS and get a 202; the order itself is safe
				log.Printf("handlers: mark idempotency done for key=%s: %v", in.IdempotencyKey, err)
			}
		}

		c.Header("Location", fmt.Sprintf("/orders/%s", order.OrderID))
		c.JSON(http.StatusCreated, body)
	})

	user.GET("/orders", func(c *gin.Context) {
		list, err := orderStore.ListByUser(c.Request.Context(), currentUser(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_orders_failed"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	user.GET("/orders/:id", func(c *gin.Context) {
		order, err := orderStore.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_order_failed"})
			return
		}
		if order == nil || (order.UserID != currentUser(c) && c.GetHeader(userRoleHeader) != "admin") {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})

	admin := r.Group("/admin", RequireUser(), RequireAdmin())

	admin.GET("/orders", func(c *gin.Context) {
		list, err := orderStore.ListAll(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_orders_failed"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	admin.PATCH("/orders/:id/status", func(c *gin.Context) {
		var req validation.UpdateStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		order, err := orch.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			case errors.Is(err, orders.ErrInvalidStatus):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status_transition", "msg": err.Error()})
			case errors.Is(err, orders.ErrStatusConflict):
				c.JSON(http.StatusConflict, gin.H{"error": "status_conflict"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "update_status_failed"})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	})
}

func toAddress(a validation.AddressPayload) orders.Address {
	return orders.Address{
		FullName:     a.FullName,
		Email:        a.Email,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

func orderSummary(o *orders.Order) gin.H {
	return gin.H{
		"orderId":       o.OrderID,
		"total":         o.Total,
		"paymentMethod": o.PaymentMethod,
		"status":        o.Status,
		"createdAt":     o.CreatedAt.Format(time.RFC3339),
	}
}

// writeCheckoutError maps orchestrator failures onto HTTP responses. For
// duplicate idempotency keys it replays the stored response when available.
func writeCheckoutError(c *gin.Context, recorder *metrics.Recorder, idempStore *idempotency.Store, idempKey string, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, checkout.ErrValidation):
		recorder.CheckoutOutcome(ctx, metrics.OutcomeValidationFailed)
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "msg": err.Error()})

	case errors.Is(err, cart.ErrEmptyCart):
		recorder.CheckoutOutcome(ctx, metrics.OutcomeEmptyCart)
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart", "msg": "cart is empty, add items before placing an order"})

	case errors.Is(err, cart.ErrProductUnavailable):
		recorder.CheckoutOutcome(ctx, metrics.OutcomeValidationFailed)
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_unavailable", "msg": err.Error()})

	case errors.Is(err, inventory.ErrInsufficientStock):
		recorder.CheckoutOutcome(ctx, metrics.OutcomeInsufficientStock)
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient_stock", "msg": err.Error()})

	case errors.Is(err, checkout.ErrDuplicateCheckout):
		recorder.CheckoutOutcome(ctx, metrics.OutcomeDuplicate)
		replayIdempotent(c, idempStore, idempKey)

	default:
		recorder.CheckoutOutcome(ctx, metrics.OutcomePersistenceFailed)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_persist_failed"})
	}
}

func replayIdempotent(c *gin.Context, idempStore *idempotency.Store, idempKey string) {
	rec, err := idempStore.Get(c.Request.Context(), idempKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed"})
		return
	}
	if rec == nil {
		// transaction said the key exists but the record is gone (TTL expiry
		// between the write and this read); let the client retry
		c.JSON(http.StatusConflict, gin.H{"error": "idempotency_key_conflict"})
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"orderId": rec.OrderID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "orderId": rec.OrderID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}
