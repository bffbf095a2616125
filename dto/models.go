package dto

import (
	"net/http"
	"time"
)

// CallNotification describes the lifecycle of one tracked request. Exactly one
// terminal notification (COMPLETE, ERROR or STOPPED) is published per call.
type CallNotification struct {
	Key      string     `json:"key" yaml:"key"`
	TaskName string     `json:"task_name,omitempty" yaml:"task_name,omitempty"`
	Status   CallStatus `json:"status" yaml:"status"`
	Message  string     `json:"message,omitempty" yaml:"message,omitempty"`
	// StatusCode of the settled response; zero until settlement.
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	SettledAt  time.Time `json:"settled_at,omitempty" yaml:"settled_at,omitempty"`
}

type StoreState struct {
	BaseURL        string        `json:"store_base_url,omitempty" yaml:"store_base_url,omitempty"`
	ExtraHeaders   ExtraHeaders  `json:"store_extra_headers,omitempty" yaml:"store_extra_headers,omitempty"`
	RequestTimeout time.Duration `json:"store_request_timeout,omitempty" yaml:"store_request_timeout,omitempty"`
	UserAgent      string        `json:"store_user_agent,omitempty" yaml:"store_user_agent,omitempty"`
	// InFlight is the number of currently tracked requests.
	InFlight    int                         `json:"store_in_flight" yaml:"store_in_flight"`
	CallsStatus map[string]CallNotification `json:"store_calls_status,omitempty" yaml:"store_calls_status,omitempty"`
}

type Response struct {
	StatusCode int
	Headers    http.Header
	// As well as casting to ResponseObject if set, return as bytes
	Body []byte
}

// CartItem is one line of the cart snapshot captured at checkout time.
// Amounts are integer minor units (kobo, cents) to avoid float rounding.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}
