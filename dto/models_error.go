package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	// ErrKindValidation is a local precondition failure; never reached the network.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindNetwork means the request was sent but no response arrived.
	ErrKindNetwork ErrorKind = "network"
	// ErrKindServer is a response with an error status; fields come from the body.
	ErrKindServer ErrorKind = "server"
	// ErrKindCancelled marks a caller-aborted request. Never rendered as a failure.
	ErrKindCancelled ErrorKind = "cancelled"
	// ErrKindUnknown covers request-construction and other client-side failures.
	ErrKindUnknown ErrorKind = "unknown"
)

const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeUnknownError = "UNKNOWN_ERROR"
	// CodeTokenExpired on a 401 body marks the session as refreshable rather
	// than terminally unauthorized.
	CodeTokenExpired = "TOKEN_EXPIRED"
)

// ErrorInfo is the one failure shape every layer surfaces. Downstream code
// switches on Kind instead of probing optional fields.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Status  int       `json:"status,omitempty"`
	// Fields preserves any additional server-provided error fields verbatim.
	Fields map[string]any `json:"fields,omitempty"`
}

func (e *ErrorInfo) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func NewValidationError(msg string) *ErrorInfo {
	return &ErrorInfo{Kind: ErrKindValidation, Message: msg}
}

func NewNetworkError(err error) *ErrorInfo {
	msg := "no response received"
	if err != nil {
		msg = err.Error()
	}
	return &ErrorInfo{Kind: ErrKindNetwork, Code: CodeNetworkError, Message: msg}
}

func NewUnknownError(err error) *ErrorInfo {
	msg := "request could not be built"
	if err != nil {
		msg = err.Error()
	}
	return &ErrorInfo{Kind: ErrKindUnknown, Code: CodeUnknownError, Message: msg}
}

func NewCancelledError() *ErrorInfo {
	return &ErrorInfo{Kind: ErrKindCancelled, Message: "request cancelled"}
}

// ErrorFromResponse reshapes a non-2xx response into an ErrorInfo. The body is
// expected to be a JSON object with message/code; any remaining fields are
// preserved. An unparseable body still yields a server error with the status.
func ErrorFromResponse(resp Response) *ErrorInfo {
	info := &ErrorInfo{
		Kind:    ErrKindServer,
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}
	if len(resp.Body) == 0 {
		return info
	}
	var raw map[string]any
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return info
	}
	if m, ok := raw["message"].(string); ok && m != "" {
		info.Message = m
	}
	delete(raw, "message")
	if c, ok := raw["code"].(string); ok {
		info.Code = c
	}
	delete(raw, "code")
	delete(raw, "status")
	if len(raw) > 0 {
		info.Fields = raw
	}
	return info
}

// AsErrorInfo unwraps the ErrorInfo in err's chain, if any.
func AsErrorInfo(err error) (*ErrorInfo, bool) {
	var info *ErrorInfo
	if errors.As(err, &info) {
		return info, true
	}
	return nil, false
}

// IsCancelled reports whether err represents a caller-initiated abort.
func IsCancelled(err error) bool {
	if info, ok := AsErrorInfo(err); ok {
		return info.Kind == ErrKindCancelled
	}
	return false
}
