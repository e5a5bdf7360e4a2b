package livequery

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "livequery:"

// RedisBus fans change signals out over Redis pub/sub so watchers on any
// instance are poked, not just the one that performed the write.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, key string) {
	if err := b.client.Publish(ctx, channelPrefix+key, "1").Err(); err != nil {
		log.Printf("livequery: publish %s: %v", key, err)
	}
}

func (b *RedisBus) Subscribe(key string, fn func()) func() {
	pubsub := b.client.Subscribe(context.Background(), channelPrefix+key)

	go func() {
		for range pubsub.Channel() {
			fn()
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			log.Printf("livequery: close subscription %s: %v", key, err)
		}
	}
}
