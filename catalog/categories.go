package catalog

import (
	"context"
	"net/url"
	"sync"

	"github.com/joy-dx/storefront/client/httpclient"
	"github.com/joy-dx/storefront/dto"
)

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// Categories caches the category tree; it changes rarely and a failed refresh
// keeps the previous list.
type Categories struct {
	caller Caller

	mu   sync.RWMutex
	list []Category
}

func NewCategories(caller Caller) *Categories {
	return &Categories{caller: caller}
}

func (c *Categories) List() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Category(nil), c.list...)
}

func (c *Categories) GetCategories(ctx context.Context) error {
	httpCfg := httpclient.DefaultHTTPRequestConfig()
	httpCfg.WithPath("/categories")

	var envelope struct {
		Categories []Category `json:"categories"`
	}
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg).
		WithTaskName("GET /categories").
		WithResponseObject(&envelope)

	resp, err := c.caller.Call(ctx, &cfg)
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}

	c.mu.Lock()
	c.list = envelope.Categories
	c.mu.Unlock()
	return nil
}

func (c *Categories) GetCategoryByID(ctx context.Context, id string) (*Category, error) {
	if id == "" {
		return nil, dto.NewValidationError("category id is required")
	}

	httpCfg := httpclient.DefaultHTTPRequestConfig()
	httpCfg.WithPath("/categories/" + url.PathEscape(id))

	var envelope struct {
		Category Category `json:"category"`
	}
	cfg := dto.DefaultRequestConfig()
	cfg.WithReqConfig(&httpCfg).
		WithTaskName("GET /categories/" + id).
		WithResponseObject(&envelope)

	resp, err := c.caller.Call(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return &envelope.Category, nil
}
