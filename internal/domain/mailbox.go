package domain

import "time"

// MailboxEntry is the per-inviter pointer written when a scan completes a
// pairing. The inviter's waiting screen watches its own mailbox and
// navigates into the room once an entry appears. Entries are ephemeral:
// overwritten on the next pairing and cleared (best-effort) after
// consumption.
type MailboxEntry struct {
	RoomID string    `json:"room_id"`
	Other  Identity  `json:"other"`
	At     time.Time `json:"at"`
}
