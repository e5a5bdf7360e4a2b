package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"pairchat/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, room_id, sender_id, sender_username, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq`
	return r.pool.QueryRow(ctx, query,
		msg.ID, msg.RoomID, msg.Sender.UserID, msg.Sender.Username, msg.Text, msg.CreatedAt,
	).Scan(&msg.Seq)
}

func (r *MessageRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error) {
	query := `
		SELECT id, room_id, seq, sender_id, sender_username, text, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC, seq ASC`

	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.RoomID, &msg.Seq,
			&msg.Sender.UserID, &msg.Sender.Username,
			&msg.Text, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
