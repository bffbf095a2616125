package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/joy-dx/storefront/client/httpclient"
	"github.com/joy-dx/storefront/dto"
)

// FetchKey names the history call in the in-flight registry.
const FetchKey = "orders.fetch"

const defaultPageLimit = 10

type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	// Total in integer minor units.
	Total     int64          `json:"total"`
	Currency  string         `json:"currency,omitempty"`
	Reference string         `json:"reference,omitempty"`
	Items     []dto.CartItem `json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Caller is the slice of the store service the order history needs.
type Caller interface {
	Call(ctx context.Context, cfg *dto.RequestConfig) (*dto.Response, error)
}

// Orders is the authenticated shopper's order history with its pagination
// window. Loads share one registry key, so a navigation burst settles on the
// last page requested.
type Orders struct {
	caller Caller
	limit  int

	mu         sync.RWMutex
	list       []Order
	pagination dto.Pagination
}

func New(caller Caller) *Orders {
	return &Orders{caller: caller, limit: defaultPageLimit}
}

func (o *Orders) List() []Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Order(nil), o.list...)
}

func (o *Orders) Pagination() dto.Pagination {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pagination
}

// FetchOrders loads one page of history.
func (o *Orders) FetchOrders(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(o.limit))

	httpCfg := httpclient.DefaultHTTPRequestConfig()
	httpCfg.WithPath("/orders").WithQuery(query)

	var envelope struct {
		Orders     []Order        `json:"orders"`
		Pagination dto.Pagination `json:"pagination"`
	}
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg).
		WithTaskName("GET /orders").
		WithResponseObject(&envelope).
		WithKey(FetchKey).
		WithCancelPrevious(true)

	resp, err := o.caller.Call(ctx, &cfg)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}

	o.mu.Lock()
	o.list = envelope.Orders
	o.pagination = envelope.Pagination
	o.mu.Unlock()
	return nil
}

// GoToPage loads page n if the last known window says it exists.
func (o *Orders) GoToPage(ctx context.Context, n int) error {
	if !o.Pagination().ValidPage(n) {
		return dto.NewValidationError(fmt.Sprintf("page %d is out of range", n))
	}
	return o.FetchOrders(ctx, n)
}

// NextPage is a no-op when the window has no next page.
func (o *Orders) NextPage(ctx context.Context) error {
	pg := o.Pagination()
	if !pg.HasNextPage {
		return nil
	}
	return o.FetchOrders(ctx, pg.Page+1)
}

// PrevPage is a no-op when the window has no previous page.
func (o *Orders) PrevPage(ctx context.Context) error {
	pg := o.Pagination()
	if !pg.HasPrevPage {
		return nil
	}
	return o.FetchOrders(ctx, pg.Page-1)
}

// GetOrderByID fetches one order by its server id.
func (o *Orders) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	if id == "" {
		return nil, dto.NewValidationError("order id is required")
	}
	return o.fetchOne(ctx, "/orders/"+url.PathEscape(id))
}

// GetOrderByNumber fetches one order by its human-facing number, the form a
// shopper reads off a confirmation email.
func (o *Orders) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	if number == "" {
		return nil, dto.NewValidationError("order number is required")
	}
	return o.fetchOne(ctx, "/orders/number/"+url.PathEscape(number))
}

func (o *Orders) fetchOne(ctx context.Context, path string) (*Order, error) {
	httpCfg := httpclient.DefaultHTTPRequestConfig()
	httpCfg.WithPath(path)

	var envelope struct {
		Order Order `json:"order"`
	}
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg).
		WithTaskName("GET " + path).
		WithResponseObject(&envelope)

	resp, err := o.caller.Call(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return &envelope.Order, nil
}
