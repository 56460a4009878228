package publisher

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, "test_snapshots", 1, 100)
	defer publisher.Close()

	// Create a subscriber to verify the event was published
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	_, err := client.Ping(ctx).Result()
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	err = client.XGroupCreateMkStream(ctx, "test_snapshots:0", "test_group", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		panic(err)
	}

	messages := make(chan string, 1)

	go func() {
		message, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Streams:  []string{"test_snapshots:0", ">"},
			Group:    "test_group",
			Consumer: "test_consumer",
			Block:    0,
		}).Result()
		assert.NoError(t, err)
		messages <- message[0].Messages[0].Values["snapshot"].(string)
	}()

	time.Sleep(100 * time.Millisecond)

	err = publisher.Publish(SnapshotEvent{
		StoreURL:     "https://smartstore.naver.com/teststore",
		Bucket:       29123456,
		ProductCount: 240,
	})
	assert.NoError(t, err)

	select {
	case msg := <-messages:
		var event SnapshotEvent
		assert.NoError(t, json.Unmarshal([]byte(msg), &event))
		assert.Equal(t, "https://smartstore.naver.com/teststore", event.StoreURL)
		assert.Equal(t, int64(29123456), event.Bucket)
		assert.Equal(t, 240, event.ProductCount)
	case <-time.After(1 * time.Second):
		t.Error("Timed out waiting for event")
	}
}
