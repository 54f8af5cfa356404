package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/repository"
)

type blockRepository struct {
	db *sqlx.DB
}

func NewBlockRepository(db *sqlx.DB) repository.BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) Upsert(ctx context.Context, block *domain.Block) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (blocker_id, blocked_id)
		DO UPDATE SET reason = EXCLUDED.reason
	`
	_, err := r.db.ExecContext(ctx, query, block.BlockerID, block.BlockedID, block.Reason)
	return err
}

func (r *blockRepository) IsBlockedEitherDirection(ctx context.Context, a, b string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM blocks
		WHERE (blocker_id = $1 AND blocked_id = $2)
		   OR (blocker_id = $2 AND blocked_id = $1)
	`
	if err := r.db.GetContext(ctx, &count, query, a, b); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *blockRepository) ListBlockedWith(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `
		SELECT CASE WHEN blocker_id = $1 THEN blocked_id ELSE blocker_id END
		FROM blocks
		WHERE blocker_id = $1 OR blocked_id = $1
	`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}
