package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/joy-dx/storefront/client/httpclient"
	"github.com/joy-dx/storefront/dto"
)

// SearchKey names the search call in the in-flight registry so a new
// keystroke cancels the previous lookup.
const SearchKey = "products.search"

const defaultPageLimit = 20

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	// Price in integer minor units.
	Price      int64  `json:"price"`
	Currency   string `json:"currency,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	InStock    bool   `json:"in_stock"`
}

// Caller is the slice of the store service the catalog needs.
type Caller interface {
	Call(ctx context.Context, cfg *dto.RequestConfig) (*dto.Response, error)
}

// Products is the product listing state: the current page of items, the
// pagination window, and the active search term. A superseded search leaves
// the state untouched, so the UI only ever renders the latest settled result.
type Products struct {
	caller Caller
	limit  int

	mu         sync.RWMutex
	items      []Product
	pagination dto.Pagination
	term       string
}

func NewProducts(caller Caller) *Products {
	return &Products{caller: caller, limit: defaultPageLimit}
}

func (p *Products) Items() []Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Product(nil), p.items...)
}

func (p *Products) Pagination() dto.Pagination {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pagination
}

func (p *Products) Term() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.term
}

// GetProducts loads one page of the listing under the current search term.
func (p *Products) GetProducts(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return p.fetch(ctx, page, p.Term())
}

// Search replaces the active term and loads its first page. Calls share one
// registry key with CancelPrevious set, so rapid input settles on the last
// term only.
func (p *Products) Search(ctx context.Context, term string) error {
	return p.fetch(ctx, 1, term)
}

// GoToPage loads page n if the last known window says it exists.
func (p *Products) GoToPage(ctx context.Context, n int) error {
	if !p.Pagination().ValidPage(n) {
		return dto.NewValidationError(fmt.Sprintf("page %d is out of range", n))
	}
	return p.GetProducts(ctx, n)
}

// NextPage is a no-op when the window has no next page.
func (p *Products) NextPage(ctx context.Context) error {
	pg := p.Pagination()
	if !pg.HasNextPage {
		return nil
	}
	return p.GetProducts(ctx, pg.Page+1)
}

// PrevPage is a no-op when the window has no previous page.
func (p *Products) PrevPage(ctx context.Context) error {
	pg := p.Pagination()
	if !pg.HasPrevPage {
		return nil
	}
	return p.GetProducts(ctx, pg.Page-1)
}

// GetProductByID fetches a single product outside the listing state.
func (p *Products) GetProductByID(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, dto.NewValidationError("product id is required")
	}

	httpCfg := httpclient.DefaultHTTPRequestConfig()
	httpCfg.WithPath("/products/" + url.PathEscape(id))
	cfg := dto.DefaultRequestConfig()
	var envelope struct {
		Product Product `json:"product"`
	}
	cfg.WithReqConfig(&httpCfg).
		WithTaskName("GET /products/" + id).
		WithResponseObject(&envelope)

	resp, err := p.caller.Call(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return &envelope.Product, nil
}

func (p *Products) fetch(ctx context.Context, page int, term string) error {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(p.limit))
	if term != "" {
		query.Set("q", term)
	}

	httpCfg := httpclient.DefaultHTTPRequestConfig()
	httpCfg.WithPath("/products").WithQuery(query)

	var envelope struct {
		Products   []Product      `json:"products"`
		Pagination dto.Pagination `json:"pagination"`
	}
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg).
		WithTaskName("GET /products").
		WithResponseObject(&envelope).
		WithKey(SearchKey).
		WithCancelPrevious(true)

	resp, err := p.caller.Call(ctx, &cfg)
	if err != nil {
		return err
	}
	if resp == nil {
		// Superseded by a newer fetch; keep current state.
		return nil
	}

	p.mu.Lock()
	p.items = envelope.Products
	p.pagination = envelope.Pagination
	p.term = term
	p.mu.Unlock()
	return nil
}
