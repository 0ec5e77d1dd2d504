package messages

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageRepository stores and retrieves direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error

	// ListConversation returns every message exchanged between the two
	// users, in both directions, oldest first.
	ListConversation(ctx context.Context, userA, userB string) ([]Message, error)
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a direct-message repository.
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *Message) error {
	query := `INSERT INTO messages (id, from_user_id, to_user_id, text, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.FromUserID,
		msg.ToUserID,
		msg.Text,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, userA, userB string) ([]Message, error) {
	query := `SELECT id, from_user_id, to_user_id, text, created_at
	          FROM messages
	          WHERE (from_user_id = ? AND to_user_id = ?)
	             OR (from_user_id = ? AND to_user_id = ?)
	          ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("listing conversation: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}
