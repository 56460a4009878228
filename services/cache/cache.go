package cache

import (
	"time"
)

// CacheService is the short-TTL cache used for per-origin fetch blocks: a
// site that answered with a rate-limit status gets a block key so no
// extractor touches it again until the key expires.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
