package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairchat/internal/domain"
)

type RoomRepo struct {
	pool *pgxpool.Pool
}

func NewRoomRepo(pool *pgxpool.Pool) *RoomRepo {
	return &RoomRepo{pool: pool}
}

// CreateIfAbsent is the single conditional write both scanning devices race
// through: ON CONFLICT DO NOTHING guarantees exactly one row per pair, with
// participants and timestamps set exactly once by whichever call wins.
func (r *RoomRepo) CreateIfAbsent(ctx context.Context, room *domain.Room) (bool, error) {
	query := `
		INSERT INTO rooms (id, inviter_id, inviter_username, joiner_id, joiner_username, extended, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $6)
		ON CONFLICT (id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, query,
		room.ID,
		room.Participants[0].UserID, room.Participants[0].Username,
		room.Participants[1].UserID, room.Participants[1].Username,
		room.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, inviter_id, inviter_username, joiner_id, joiner_username,
			extended, last_message_text, last_message_sender_id, last_message_at,
			created_at, updated_at
		FROM rooms
		WHERE id = $1`
	room, err := scanRoom(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return room, err
}

func (r *RoomRepo) ListByUser(ctx context.Context, userID string) ([]domain.Room, error) {
	query := `
		SELECT id, inviter_id, inviter_username, joiner_id, joiner_username,
			extended, last_message_text, last_message_sender_id, last_message_at,
			created_at, updated_at
		FROM rooms
		WHERE inviter_id = $1 OR joiner_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepo) TouchActivity(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE rooms SET updated_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *RoomRepo) SetExtended(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE rooms SET extended = true, updated_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *RoomRepo) SetLastMessage(ctx context.Context, id string, last domain.LastMessage, at time.Time) error {
	query := `
		UPDATE rooms
		SET last_message_text = $2, last_message_sender_id = $3, last_message_at = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, last.Text, last.SenderID, last.At, at)
	return err
}

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var room domain.Room
	var lastText, lastSenderID *string
	var lastAt *time.Time
	err := row.Scan(
		&room.ID,
		&room.Participants[0].UserID, &room.Participants[0].Username,
		&room.Participants[1].UserID, &room.Participants[1].Username,
		&room.Extended, &lastText, &lastSenderID, &lastAt,
		&room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastText != nil && lastSenderID != nil && lastAt != nil {
		room.LastMessage = &domain.LastMessage{Text: *lastText, SenderID: *lastSenderID, At: *lastAt}
	}
	return &room, nil
}
