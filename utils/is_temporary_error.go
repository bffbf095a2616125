package utils

import (
	"context"
	"errors"
)

// IsTemporaryErr reports whether a transport error is worth retrying.
// Cancellation and deadline expiry are never temporary: a caller-initiated
// abort must not respawn the request.
func IsTemporaryErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr interface{ Temporary() bool }
	if errors.As(err, &netErr) {
		return netErr.Temporary()
	}
	// remaining network-level issues are assumed transient
	return true
}
