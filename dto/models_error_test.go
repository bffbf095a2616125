package dto

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFromResponse_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resp       Response
		wantMsg    string
		wantCode   string
		wantStatus int
		wantFields map[string]any
	}{
		{
			name:       "full body preserved",
			resp:       Response{StatusCode: 422, Body: []byte(`{"message":"invalid quantity","code":"VALIDATION","field":"quantity"}`)},
			wantMsg:    "invalid quantity",
			wantCode:   "VALIDATION",
			wantStatus: 422,
			wantFields: map[string]any{"field": "quantity"},
		},
		{
			name:       "empty body falls back to status text",
			resp:       Response{StatusCode: 503},
			wantMsg:    "Service Unavailable",
			wantStatus: 503,
		},
		{
			name:       "non-json body falls back to status text",
			resp:       Response{StatusCode: 500, Body: []byte("<html>oops</html>")},
			wantMsg:    "Internal Server Error",
			wantStatus: 500,
		},
		{
			name:       "status field in body dropped in favor of real status",
			resp:       Response{StatusCode: 404, Body: []byte(`{"message":"not found","status":418}`)},
			wantMsg:    "not found",
			wantStatus: 404,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := ErrorFromResponse(tt.resp)
			if info.Kind != ErrKindServer {
				t.Fatalf("kind=%s want %s", info.Kind, ErrKindServer)
			}
			if info.Message != tt.wantMsg {
				t.Fatalf("message=%q want %q", info.Message, tt.wantMsg)
			}
			if info.Code != tt.wantCode {
				t.Fatalf("code=%q want %q", info.Code, tt.wantCode)
			}
			if info.Status != tt.wantStatus {
				t.Fatalf("status=%d want %d", info.Status, tt.wantStatus)
			}
			for k, v := range tt.wantFields {
				if got := info.Fields[k]; got != v {
					t.Fatalf("field %q=%v want %v", k, got, v)
				}
			}
		})
	}
}

func TestAsErrorInfo_Golden(t *testing.T) {
	t.Parallel()

	base := NewNetworkError(errors.New("dial tcp: timeout"))
	wrapped := fmt.Errorf("perform request: %w", base)

	info, ok := AsErrorInfo(wrapped)
	if !ok {
		t.Fatalf("expected ErrorInfo in chain")
	}
	if info.Code != CodeNetworkError {
		t.Fatalf("code=%q want %q", info.Code, CodeNetworkError)
	}

	if _, ok := AsErrorInfo(errors.New("plain")); ok {
		t.Fatalf("plain error should not unwrap to ErrorInfo")
	}
}

func TestIsCancelled_Golden(t *testing.T) {
	t.Parallel()

	if !IsCancelled(fmt.Errorf("wrap: %w", NewCancelledError())) {
		t.Fatalf("wrapped cancellation not detected")
	}
	if IsCancelled(NewNetworkError(nil)) {
		t.Fatalf("network error misread as cancellation")
	}
	if IsCancelled(nil) {
		t.Fatalf("nil misread as cancellation")
	}
}
