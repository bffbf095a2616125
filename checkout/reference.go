package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReference mints a client-side payment reference. The reference is
// generated before the order exists so the client can correlate the order,
// the widget and the verification call even when a response goes missing.
func NewReference(prefix string) string {
	if prefix == "" {
		prefix = "PSK"
	}
	id := uuid.NewString()
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), id)
}
