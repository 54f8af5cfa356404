package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anondate/anondate-backend/internal/usecase/chat"
)

type ConversationHandler struct {
	chatUseCase *chat.UseCase
}

func NewConversationHandler(chatUseCase *chat.UseCase) *ConversationHandler {
	return &ConversationHandler{chatUseCase: chatUseCase}
}

// Start handles POST /conversations: create-or-get for a match.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req chat.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}

	result, err := h.chatUseCase.Start(c.Request.Context(), currentUserID(c), req.MatchID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// List handles GET /conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	summaries, err := h.chatUseCase.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetMessages handles GET /conversations/:id/messages.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	page, err := h.chatUseCase.GetMessages(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// PostMessage handles POST /conversations/:id/messages.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	var req chat.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c)
		return
	}

	msg, err := h.chatUseCase.PostMessage(c.Request.Context(), c.Param("id"), currentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Reveal handles POST /conversations/:id/reveal: records the caller's vote
// and advances the level when both members agree.
func (h *ConversationHandler) Reveal(c *gin.Context) {
	status, err := h.chatUseCase.ConfirmReveal(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
