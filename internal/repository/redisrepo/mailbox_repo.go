package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pairchat/internal/domain"
)

// MailboxRepo keeps the per-inviter pairing pointer in Redis. The entry is
// ephemeral by nature: overwritten on every pairing and deleted once the
// inviter's screen consumed it, so a volatile store fits.
type MailboxRepo struct {
	client *redis.Client
}

func NewMailboxRepo(client *redis.Client) *MailboxRepo {
	return &MailboxRepo{client: client}
}

func mailboxKey(userID string) string {
	return "users:" + userID + ":activeRoom"
}

func (r *MailboxRepo) Put(ctx context.Context, userID string, entry *domain.MailboxEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling mailbox entry: %w", err)
	}
	return r.client.Set(ctx, mailboxKey(userID), data, 0).Err()
}

func (r *MailboxRepo) Get(ctx context.Context, userID string) (*domain.MailboxEntry, error) {
	data, err := r.client.Get(ctx, mailboxKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry domain.MailboxEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling mailbox entry: %w", err)
	}
	return &entry, nil
}

func (r *MailboxRepo) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, mailboxKey(userID)).Err()
}
