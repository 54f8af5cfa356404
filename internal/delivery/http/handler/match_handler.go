package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anondate/anondate-backend/internal/usecase/match"
)

type MatchHandler struct {
	matchUseCase *match.UseCase
}

func NewMatchHandler(matchUseCase *match.UseCase) *MatchHandler {
	return &MatchHandler{matchUseCase: matchUseCase}
}

// Find handles POST /matches/find: runs the matching engine and returns the
// ranked candidates.
func (h *MatchHandler) Find(c *gin.Context) {
	var req match.FindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}

	matches, err := h.matchUseCase.FindMatches(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
