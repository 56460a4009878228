package store

import "time"

// TimeBucket converts a wall-clock time to a snapshot bucket.
// Buckets are minute-granular so a re-run inside the same minute
// lands on the same key and becomes a no-op.
func TimeBucket(t time.Time) int64 {
	return t.Unix() / 60
}
