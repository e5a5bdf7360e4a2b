// Package livequery is a minimal change-signal bus. Subscribers are poked
// whenever a key changes and re-read authoritative state themselves, so
// delivery is at-least-once and last-write-wins: a slow subscriber only
// ever observes the latest state, never a stale intermediate one.
package livequery

import "context"

// Bus routes change signals by key. Subscribe registers a callback for a
// key and returns a cancel func; the caller must invoke it on teardown to
// avoid receiving callbacks into a dead context.
type Bus interface {
	Publish(ctx context.Context, key string)
	Subscribe(key string, fn func()) (cancel func())
}

// Key helpers shared by services and transports.

func MailboxKey(userID string) string { return "mailbox:" + userID }

func RoomKey(roomID string) string { return "room:" + roomID }

func MessagesKey(roomID string) string { return "messages:" + roomID }
