package dto

import (
	"context"
)

// StoreInterface is the public contract of the storefront call service.
type StoreInterface interface {
	Hydrate(ctx context.Context) error
	State() *StoreState
	Get(ctx context.Context, path string, withRetry bool) (Response, error)
	Post(ctx context.Context, path string, payload map[string]interface{}, withRetry bool) (Response, error)
	RegisterClient(ref string, client NetClientInterface)
	RequestOnce(ctx context.Context, cfg *RequestConfig) (Response, error)
	RequestWithRetry(ctx context.Context, cfg *RequestConfig) (Response, error)
	Call(ctx context.Context, cfg *RequestConfig) (*Response, error)
	Abort(key string)
	AbortAll()
	Loading() bool
	LastError() *ErrorInfo
}

// AuthProvider defines methods for non-OAuth authentication schemes.
// Returned TokenInfo may include cookies or access tokens.
type AuthProvider interface {
	Authenticate(ctx context.Context) (TokenInfo, error)
	Refresh(ctx context.Context, old TokenInfo) (TokenInfo, error)
}

type ReqConfigInterface interface {
	Ref() NetClientType
	NewRequest(ctx context.Context) (any, error)
}

// NetClientInterface abstracts a registered transport client for mocking.
type NetClientInterface interface {
	Ref() string
	Type() NetClientType
	ProcessRequest(ctx context.Context, cfg *RequestConfig) (Response, error)
}

// PaymentGateway models the third-party payment widget. "Ready" covers two
// distinct checks: a public key is configured AND the gateway handshake (the
// script load, in a browser) has completed.
type PaymentGateway interface {
	Ready() bool
	Setup(params WidgetParams) (PaymentWidget, error)
}

// PaymentWidget is one opened payment attempt. Open blocks until exactly one
// of the three terminal outcomes occurs; cancelling ctx is the user closing
// the widget.
type PaymentWidget interface {
	Open(ctx context.Context) WidgetOutcome
}
