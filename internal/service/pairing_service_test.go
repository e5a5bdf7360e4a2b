package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain"
	"pairchat/internal/livequery"
)

func TestPairingSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("empty mailbox yields nil immediately", func(t *testing.T) {
		mailbox := newFakeMailboxRepo()
		svc := NewPairingService(mailbox, livequery.NewMemoryBus())

		called := false
		var got *domain.MailboxEntry
		cancel, err := svc.Subscribe(ctx, alice.UserID, func(entry *domain.MailboxEntry) {
			called = true
			got = entry
		})
		require.NoError(t, err)
		defer cancel()

		assert.True(t, called)
		assert.Nil(t, got)
	})

	t.Run("subscription established after the write still sees it", func(t *testing.T) {
		roomRepo := newFakeRoomRepo()
		mailbox := newFakeMailboxRepo()
		bus := livequery.NewMemoryBus()
		roomSvc := NewRoomService(roomRepo, mailbox, bus, 24*time.Hour)
		svc := NewPairingService(mailbox, bus)

		_, err := roomSvc.GetOrCreateRoom(ctx, alice, bob)
		require.NoError(t, err)

		var got *domain.MailboxEntry
		cancel, err := svc.Subscribe(ctx, alice.UserID, func(entry *domain.MailboxEntry) {
			got = entry
		})
		require.NoError(t, err)
		defer cancel()

		require.NotNil(t, got)
		assert.Equal(t, "u1_u2", got.RoomID)
		assert.Equal(t, bob, got.Other)
	})

	t.Run("clear notifies subscribers with nil", func(t *testing.T) {
		mailbox := newFakeMailboxRepo()
		bus := livequery.NewMemoryBus()
		svc := NewPairingService(mailbox, bus)

		require.NoError(t, mailbox.Put(ctx, alice.UserID, &domain.MailboxEntry{RoomID: "u1_u2", Other: bob}))

		var updates []*domain.MailboxEntry
		cancel, err := svc.Subscribe(ctx, alice.UserID, func(entry *domain.MailboxEntry) {
			updates = append(updates, entry)
		})
		require.NoError(t, err)
		defer cancel()

		svc.Clear(ctx, alice.UserID)

		require.Len(t, updates, 2)
		assert.NotNil(t, updates[0])
		assert.Nil(t, updates[1])
	})

	t.Run("clear failures are swallowed", func(t *testing.T) {
		mailbox := newFakeMailboxRepo()
		mailbox.deleteErr = errors.New("redis down")
		bus := livequery.NewMemoryBus()
		svc := NewPairingService(mailbox, bus)

		require.NoError(t, mailbox.Put(ctx, alice.UserID, &domain.MailboxEntry{RoomID: "u1_u2", Other: bob}))

		// Must not panic or propagate; the stale entry simply stays.
		svc.Clear(ctx, alice.UserID)

		entry, err := mailbox.Get(ctx, alice.UserID)
		require.NoError(t, err)
		assert.NotNil(t, entry)
	})
}
