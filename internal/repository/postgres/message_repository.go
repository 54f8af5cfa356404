package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, msg *domain.Message) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.Content, msg.Type).
		Scan(&msg.CreatedAt)
	if err != nil {
		return err
	}

	// Snapshot update rides the same transaction so a committed message is
	// always reflected in the conversation listing. The sender's read-mark
	// moves with it: their own message is never unread for them.
	_, err = tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message   = $1,
		    last_active    = $2,
		    low_last_read  = CASE WHEN user_low  = $3 THEN $2 ELSE low_last_read END,
		    high_last_read = CASE WHEN user_high = $3 THEN $2 ELSE high_last_read END
		WHERE id = $4
	`, msg.Content, msg.CreatedAt, msg.SenderID, msg.ConversationID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	var msgs []*domain.Message
	query := `
		SELECT id, conversation_id, sender_id, content, type, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`
	err := r.db.SelectContext(ctx, &msgs, query, conversationID)
	return msgs, err
}
