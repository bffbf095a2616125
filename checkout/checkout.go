package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/joy-dx/lockablemap"
	relayDTO "github.com/joy-dx/relay/dto"

	"github.com/joy-dx/storefront/dto"
	"github.com/joy-dx/storefront/relays"
)

type Method string

const (
	MethodCard Method = "card"
	// MethodDelivery places the order without charging; payment happens on
	// delivery and no widget is involved.
	MethodDelivery Method = "delivery"
)

type ResultStatus string

const (
	// ResultPaid means the charge succeeded and the server confirmed it.
	ResultPaid ResultStatus = "paid"
	// ResultUnconfirmed is the soft-success path: the widget reported success
	// but the confirmation check did not come back clean. Money may have
	// moved, so this is presented as a success with a caveat, never retried
	// automatically.
	ResultUnconfirmed ResultStatus = "unconfirmed"
	// ResultPlaced is a pay-on-delivery order: placed, nothing charged.
	ResultPlaced    ResultStatus = "placed"
	ResultCancelled ResultStatus = "cancelled"
	ResultFailed    ResultStatus = "failed"
)

// Result is the terminal report of one Pay invocation.
type Result struct {
	Status      ResultStatus
	OrderID     string
	OrderNumber string
	Reference   string
	Message     string
}

// Caller is the slice of the store service the orchestrator needs.
type Caller interface {
	Post(ctx context.Context, path string, payload map[string]interface{}, withRetry bool) (dto.Response, error)
}

// Cart is cleared only on outcomes where the purchase went through (paid,
// unconfirmed, placed). A cancelled or failed attempt leaves it intact for
// retry.
type Cart interface {
	Snapshot() []dto.CartItem
	Clear()
}

// Request describes one checkout submission. Amount is integer minor units
// and must equal the priced cart total server-side; the server revalidates.
type Request struct {
	Email    string
	Amount   int64
	Currency string
	Shipping map[string]any
	Method   Method
}

// Orchestrator drives a checkout end to end: order creation, the payment
// widget, and post-payment verification. One attempt runs at a time; each
// attempt gets a fresh reference and a fresh order, so a failed or cancelled
// attempt is never resumed.
type Orchestrator struct {
	caller  Caller
	gateway dto.PaymentGateway
	cart    Cart
	relay   relayDTO.RelayInterface
	prefix  string

	attempts lockablemap.LockableMap[string, dto.PaymentAttempt]
	busy     atomic.Bool
}

func New(caller Caller, gateway dto.PaymentGateway, cart Cart, relay relayDTO.RelayInterface, prefix string) *Orchestrator {
	return &Orchestrator{
		caller:   caller,
		gateway:  gateway,
		cart:     cart,
		relay:    relay,
		prefix:   prefix,
		attempts: *lockablemap.NewLockableMap[string, dto.PaymentAttempt](),
	}
}

// Attempts returns every attempt this orchestrator has driven, keyed by
// reference.
func (o *Orchestrator) Attempts() map[string]dto.PaymentAttempt {
	return o.attempts.GetAll()
}

// Pay runs one checkout. Validation failures are rejected before any network
// traffic. The returned error is non-nil only when no order was placed; a
// Result with Status Cancelled or Failed still names the order that was
// abandoned.
func (o *Orchestrator) Pay(ctx context.Context, req Request) (*Result, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	if !o.busy.CompareAndSwap(false, true) {
		return nil, dto.NewValidationError("a checkout is already in progress")
	}
	defer o.busy.Store(false)

	// Card payments need the gateway before an order is worth creating.
	if req.Method == MethodCard {
		if o.gateway == nil || !o.gateway.Ready() {
			return nil, dto.NewValidationError("payment system is still loading, try again shortly")
		}
	}

	reference := NewReference(o.prefix)
	attempt := dto.PaymentAttempt{
		Reference: reference,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Email:     req.Email,
		Status:    dto.ATTEMPT_PENDING,
		StartedAt: time.Now(),
	}
	o.record(attempt)

	order, err := o.createOrder(ctx, req, reference)
	if err != nil {
		attempt.Status = dto.ATTEMPT_FAILED
		attempt.Message = err.Error()
		o.record(attempt)
		return nil, err
	}
	attempt.OrderID = order.ID
	attempt.OrderNumber = order.Number
	o.record(attempt)

	if req.Method == MethodDelivery {
		attempt.Status = dto.ATTEMPT_VERIFIED
		o.record(attempt)
		o.cart.Clear()
		return &Result{
			Status:      ResultPlaced,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Reference:   reference,
		}, nil
	}

	widget, err := o.gateway.Setup(dto.WidgetParams{
		Email:     req.Email,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reference: reference,
	})
	if err != nil {
		attempt.Status = dto.ATTEMPT_FAILED
		attempt.Message = err.Error()
		o.record(attempt)
		return &Result{
			Status:      ResultFailed,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Reference:   reference,
			Message:     err.Error(),
		}, nil
	}

	outcome := widget.Open(ctx)
	switch outcome.Kind {
	case dto.WIDGET_CANCELLED:
		attempt.Status = dto.ATTEMPT_CANCELLED
		o.record(attempt)
		return &Result{
			Status:      ResultCancelled,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Reference:   reference,
		}, nil

	case dto.WIDGET_ERROR:
		attempt.Status = dto.ATTEMPT_FAILED
		attempt.Message = outcome.Message
		o.record(attempt)
		return &Result{
			Status:      ResultFailed,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Reference:   reference,
			Message:     outcome.Message,
		}, nil
	}

	// Widget success: the charge may have landed, so from here on every
	// outcome clears the cart and reads as a success to the shopper.
	attempt.Status = dto.ATTEMPT_VERIFYING
	o.record(attempt)

	// The widget's reference is authoritative for verification. It should
	// match the one handed to Setup.
	verifyRef := outcome.Reference
	if verifyRef == "" {
		verifyRef = reference
	}
	verified := o.verify(ctx, verifyRef)
	o.cart.Clear()

	if !verified {
		attempt.Status = dto.ATTEMPT_VERIFYING
		attempt.Message = "payment received but not yet confirmed"
		o.record(attempt)
		return &Result{
			Status:      ResultUnconfirmed,
			OrderID:     order.ID,
			OrderNumber: order.Number,
			Reference:   reference,
			Message: fmt.Sprintf(
				"your payment was received but could not be confirmed yet; contact support with reference %s if your order does not update",
				verifyRef,
			),
		}, nil
	}

	attempt.Status = dto.ATTEMPT_VERIFIED
	o.record(attempt)
	return &Result{
		Status:      ResultPaid,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Reference:   reference,
	}, nil
}

func (o *Orchestrator) validate(req Request) error {
	if req.Email == "" {
		return dto.NewValidationError("email is required")
	}
	if req.Amount <= 0 {
		return dto.NewValidationError("order total must be positive")
	}
	if req.Method != MethodCard && req.Method != MethodDelivery {
		return dto.NewValidationError(fmt.Sprintf("unsupported payment method: %s", req.Method))
	}
	if o.cart == nil || len(o.cart.Snapshot()) == 0 {
		return dto.NewValidationError("cart is empty")
	}
	return nil
}

type createdOrder struct {
	ID     string
	Number string
}

func (o *Orchestrator) createOrder(ctx context.Context, req Request, reference string) (createdOrder, error) {
	items := o.cart.Snapshot()
	lines := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		lines = append(lines, map[string]interface{}{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
		})
	}

	resp, err := o.caller.Post(ctx, "/orders", map[string]interface{}{
		"email":          req.Email,
		"amount":         req.Amount,
		"currency":       req.Currency,
		"items":          lines,
		"shipping":       req.Shipping,
		"reference":      reference,
		"payment_method": string(req.Method),
	}, false)
	if err != nil {
		return createdOrder{}, err
	}

	var envelope struct {
		Order struct {
			ID     string `json:"id"`
			Number string `json:"order_number"`
		} `json:"order"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return createdOrder{}, fmt.Errorf("parse order response: %w", err)
	}
	if envelope.Order.ID == "" {
		return createdOrder{}, fmt.Errorf("order response missing id")
	}
	return createdOrder{ID: envelope.Order.ID, Number: envelope.Order.Number}, nil
}

// verify asks the server whether the charge landed. Transient failures are
// retried by the call layer; a clean negative and an unreachable server are
// treated the same here because the widget already reported success.
func (o *Orchestrator) verify(ctx context.Context, reference string) bool {
	resp, err := o.caller.Post(ctx, "/payments/verify", map[string]interface{}{
		"reference": reference,
	}, true)
	if err != nil {
		return false
	}
	var out struct {
		Verified bool `json:"verified"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return false
	}
	return out.Verified
}

func (o *Orchestrator) record(attempt dto.PaymentAttempt) {
	o.attempts.Set(attempt.Reference, attempt)
	if o.relay != nil {
		o.relay.Info(relays.RlyStorePayment{
			Reference: attempt.Reference,
			OrderID:   attempt.OrderID,
			Status:    attempt.Status,
			Msg:       attempt.Message,
		})
	}
}
