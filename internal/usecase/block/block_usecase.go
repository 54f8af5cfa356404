package block

import (
	"context"
	"fmt"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/logger"
	"github.com/anondate/anondate-backend/internal/repository"
)

type UseCase struct {
	blockRepo repository.BlockRepository
	userRepo  repository.UserRepository
}

func NewUseCase(blockRepo repository.BlockRepository, userRepo repository.UserRepository) *UseCase {
	return &UseCase{blockRepo: blockRepo, userRepo: userRepo}
}

type BlockRequest struct {
	UserID string  `json:"user_id" binding:"required"`
	Reason *string `json:"reason"`
}

// Block records a directed block. Re-blocking the same user refreshes the
// reason instead of creating a second row.
func (uc *UseCase) Block(ctx context.Context, blockerID string, req *BlockRequest) error {
	if req.UserID == blockerID {
		return fmt.Errorf("%w: cannot block yourself", domain.ErrValidation)
	}
	if _, err := uc.userRepo.GetByID(ctx, req.UserID); err != nil {
		return err
	}

	err := uc.blockRepo.Upsert(ctx, &domain.Block{
		BlockerID: blockerID,
		BlockedID: req.UserID,
		Reason:    req.Reason,
	})
	if err != nil {
		return fmt.Errorf("failed to record block: %w", err)
	}

	logger.Info("user blocked", "blocker_id", blockerID, "blocked_id", req.UserID)
	return nil
}
