package chatbot

import (
	"context"
	"database/sql"
	"fmt"
)

// MessageRepository stores and retrieves chatbot conversation turns.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error

	// ListByUser returns the user's conversation in chronological order.
	ListByUser(ctx context.Context, userID string) ([]Message, error)

	// DeleteByUser removes the user's entire conversation and reports how
	// many turns were deleted.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a chatbot message repository.
func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *Message) error {
	query := `INSERT INTO chatbot_messages (id, user_id, role, content, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		msg.Role,
		msg.Content,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting chatbot message: %w", err)
	}

	return nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID string) ([]Message, error) {
	query := `SELECT id, user_id, role, content, created_at
	          FROM chatbot_messages WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing chatbot messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning chatbot message row: %w", err)
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

func (r *messageRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	query := `DELETE FROM chatbot_messages WHERE user_id = ?`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting chatbot messages: %w", err)
	}

	return res.RowsAffected()
}
