package knowledge

import (
	"context"
	"time"
)

// DefaultTTL is how long a lookup result stays valid after it was written.
const DefaultTTL = 24 * time.Hour

// Cache memoizes lookup results. Entries older than the TTL are absent; namespacing keys
// (e.g. "title:" / "search:") is the caller's job.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
}
