package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anondate/anondate-backend/internal/usecase/block"
)

type BlockHandler struct {
	blockUseCase *block.UseCase
}

func NewBlockHandler(blockUseCase *block.UseCase) *BlockHandler {
	return &BlockHandler{blockUseCase: blockUseCase}
}

// Block handles POST /block.
func (h *BlockHandler) Block(c *gin.Context) {
	var req block.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}

	if err := h.blockUseCase.Block(c.Request.Context(), currentUserID(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
