package service

import (
	"context"
	"log"

	"pairchat/internal/domain"
	"pairchat/internal/livequery"
	"pairchat/internal/repository"
)

// PairingService is the inviter-side view of the pairing mailbox: a live
// subscription that fires with the current entry immediately and on every
// later write, plus a best-effort clear once the entry is consumed.
type PairingService struct {
	mailboxRepo repository.MailboxRepository
	bus         livequery.Bus
}

func NewPairingService(mailboxRepo repository.MailboxRepository, bus livequery.Bus) *PairingService {
	return &PairingService{
		mailboxRepo: mailboxRepo,
		bus:         bus,
	}
}

// Subscribe watches the user's mailbox. fn is invoked with the current
// entry (nil when empty) before Subscribe returns, then again on every
// change including deletion. A subscription established after the pairing
// completed therefore still observes it.
func (s *PairingService) Subscribe(ctx context.Context, userID string, fn func(*domain.MailboxEntry)) (func(), error) {
	entry, err := s.mailboxRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	fn(entry)

	cancel := s.bus.Subscribe(livequery.MailboxKey(userID), func() {
		entry, err := s.mailboxRepo.Get(ctx, userID)
		if err != nil {
			// Transient read failure; the next signal retries.
			log.Printf("pairing: reading mailbox for %s: %v", userID, err)
			return
		}
		fn(entry)
	})
	return cancel, nil
}

// Clear deletes the mailbox entry after the inviter navigated into the
// room. Failures are swallowed: a stale entry is harmless, it gets
// overwritten by the next pairing.
func (s *PairingService) Clear(ctx context.Context, userID string) {
	if err := s.mailboxRepo.Delete(ctx, userID); err != nil {
		log.Printf("pairing: clearing mailbox for %s: %v", userID, err)
		return
	}
	s.bus.Publish(ctx, livequery.MailboxKey(userID))
}
