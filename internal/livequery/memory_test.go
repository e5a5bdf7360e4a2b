package livequery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryBus(t *testing.T) {
	ctx := context.Background()

	t.Run("publish reaches every subscriber on the key", func(t *testing.T) {
		bus := NewMemoryBus()

		a, b := 0, 0
		cancelA := bus.Subscribe("room:u1_u2", func() { a++ })
		cancelB := bus.Subscribe("room:u1_u2", func() { b++ })
		defer cancelA()
		defer cancelB()

		bus.Publish(ctx, "room:u1_u2")
		bus.Publish(ctx, "room:u1_u2")

		assert.Equal(t, 2, a)
		assert.Equal(t, 2, b)
	})

	t.Run("keys are isolated", func(t *testing.T) {
		bus := NewMemoryBus()

		calls := 0
		cancel := bus.Subscribe("mailbox:u1", func() { calls++ })
		defer cancel()

		bus.Publish(ctx, "mailbox:u2")
		bus.Publish(ctx, "room:u1_u2")

		assert.Equal(t, 0, calls)
	})

	t.Run("cancel stops delivery and is safe to call twice", func(t *testing.T) {
		bus := NewMemoryBus()

		calls := 0
		cancel := bus.Subscribe("messages:u1_u2", func() { calls++ })

		bus.Publish(ctx, "messages:u1_u2")
		cancel()
		cancel()
		bus.Publish(ctx, "messages:u1_u2")

		assert.Equal(t, 1, calls)
	})

	t.Run("publishing a key with no subscribers is fine", func(t *testing.T) {
		bus := NewMemoryBus()
		bus.Publish(ctx, "room:nobody")
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "mailbox:u1", MailboxKey("u1"))
	assert.Equal(t, "room:u1_u2", RoomKey("u1_u2"))
	assert.Equal(t, "messages:u1_u2", MessagesKey("u1_u2"))
}
