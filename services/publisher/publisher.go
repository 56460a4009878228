package publisher

// SnapshotEvent announces a completed snapshot write
type SnapshotEvent struct {
	StoreURL     string `json:"store_url"`
	Bucket       int64  `json:"bucket"`
	ProductCount int    `json:"product_count"`
}

// Publisher represents a service for publishing snapshot events
type Publisher interface {
	// Publish publishes a snapshot-completed event to a stream
	Publish(event SnapshotEvent) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
