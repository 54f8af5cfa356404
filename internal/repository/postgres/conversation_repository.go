package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

const conversationColumns = `id, user_low, user_high, reveal_level, vote_low, vote_high,
	last_message, last_active, low_last_read, high_last_read, created_at`

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) CreateOrGet(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, bool, error) {
	low, high := domain.NormalizePair(conv.UserLow, conv.UserHigh)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	// Create-if-absent against the normalized-pair unique constraint; a
	// concurrent creation from the other member resolves to the same row.
	res, err := tx.ExecContext(ctx, `
		INSERT INTO conversations (id, user_low, user_high)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_low, user_high) DO NOTHING
	`, conv.ID, low, high)
	if err != nil {
		return nil, false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	var out domain.Conversation
	err = tx.GetContext(ctx, &out, `
		SELECT `+conversationColumns+`
		FROM conversations WHERE user_low = $1 AND user_high = $2
	`, low, high)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &out, inserted > 0, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	err := r.db.GetContext(ctx, &conv, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user_low = $1 OR user_high = $1
		ORDER BY last_active DESC
	`
	err := r.db.SelectContext(ctx, &convs, query, userID)
	return convs, err
}

func (r *conversationRepository) ListPartnerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `
		SELECT CASE WHEN user_low = $1 THEN user_high ELSE user_low END
		FROM conversations
		WHERE user_low = $1 OR user_high = $1
	`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

func (r *conversationRepository) CastRevealVote(ctx context.Context, id, voterID string, target int) (*domain.Conversation, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var conv domain.Conversation
	err = tx.GetContext(ctx, &conv, `
		SELECT `+conversationColumns+`
		FROM conversations WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, domain.ErrConversationNotFound
		}
		return nil, false, err
	}

	// Stale proposal: the level moved since the caller read it. The vote is
	// dropped rather than applied to the wrong transition.
	if conv.RevealLevel != target-1 {
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		return &conv, false, nil
	}

	switch voterID {
	case conv.UserLow:
		conv.VoteLow = &target
	case conv.UserHigh:
		conv.VoteHigh = &target
	default:
		return nil, false, domain.ErrAccessDenied
	}

	advanced := conv.VoteLow != nil && conv.VoteHigh != nil &&
		*conv.VoteLow == target && *conv.VoteHigh == target
	if advanced {
		conv.RevealLevel = target
		conv.VoteLow = nil
		conv.VoteHigh = nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE conversations
		SET reveal_level = $1, vote_low = $2, vote_high = $3
		WHERE id = $4
	`, conv.RevealLevel, conv.VoteLow, conv.VoteHigh, conv.ID)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &conv, advanced, nil
}

func (r *conversationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE conversations
		SET low_last_read  = CASE WHEN user_low = $2 THEN $3 ELSE low_last_read END,
		    high_last_read = CASE WHEN user_high = $2 THEN $3 ELSE high_last_read END
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, userID, at)
	return err
}
