package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/logger"
	"github.com/anondate/anondate-backend/internal/repository"
)

// bannedWords is the server-side respectfulness screen applied to every
// posted message.
var bannedWords = []string{"spam", "scam", "abuse", "hate"}

type UseCase struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	profileRepo repository.ProfileRepository
	blockRepo   repository.BlockRepository
}

func NewUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	blockRepo repository.BlockRepository,
) *UseCase {
	return &UseCase{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		profileRepo: profileRepo,
		blockRepo:   blockRepo,
	}
}

type StartRequest struct {
	MatchID string `json:"match_id" binding:"required"`
}

type StartResult struct {
	ConversationID string `json:"conversation_id"`
	Created        bool   `json:"created"`
}

// ConversationSummary is one entry of the conversation list, annotated with
// the partner's anonymous identity.
type ConversationSummary struct {
	ID          string    `json:"id"`
	PartnerID   string    `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	LastMessage *string   `json:"last_message"`
	LastActive  time.Time `json:"last_active"`
	RevealLevel int       `json:"reveal_level"`
	Unread      bool      `json:"unread"`
}

type MessageView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

type MessagePage struct {
	Messages        []MessageView `json:"messages"`
	RevealLevel     int           `json:"reveal_level"`
	RevealStage     string        `json:"reveal_stage"`
	FullyRevealed   bool          `json:"fully_revealed"`
	AwaitingPartner bool          `json:"awaiting_partner"`
}

type PostRequest struct {
	Text string `json:"text" binding:"required"`
}

// RevealStatus reports the handshake state after a reveal confirmation.
type RevealStatus struct {
	RevealLevel     int    `json:"reveal_level"`
	Stage           string `json:"stage"`
	Advanced        bool   `json:"advanced"`
	AwaitingPartner bool   `json:"awaiting_partner"`
	FullyRevealed   bool   `json:"fully_revealed"`
}

// Start creates the conversation for the pair or returns the existing one.
// Idempotent per unordered pair: retries and the partner's own attempt land
// on the same conversation.
func (uc *UseCase) Start(ctx context.Context, requesterID, matchID string) (*StartResult, error) {
	if matchID == requesterID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", domain.ErrValidation)
	}
	if _, err := uc.profileRepo.GetByUserID(ctx, matchID); err != nil {
		return nil, err
	}

	blocked, err := uc.blockRepo.IsBlockedEitherDirection(ctx, requesterID, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocks: %w", err)
	}
	if blocked {
		return nil, domain.ErrAccessDenied
	}

	conv, created, err := uc.convRepo.CreateOrGet(ctx, &domain.Conversation{
		ID:       uuid.NewString(),
		UserLow:  requesterID,
		UserHigh: matchID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	if created {
		logger.Info("conversation created", "conversation_id", conv.ID)
	}
	return &StartResult{ConversationID: conv.ID, Created: created}, nil
}

// List returns the caller's conversations, most recently active first.
func (uc *UseCase) List(ctx context.Context, userID string) ([]ConversationSummary, error) {
	convs, err := uc.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		partnerID, _ := c.OtherUserID(userID)
		partnerName := "Anonymous"
		if p, err := uc.profileRepo.GetByUserID(ctx, partnerID); err == nil {
			partnerName = p.AnonName
		}
		out = append(out, ConversationSummary{
			ID:          c.ID,
			PartnerID:   partnerID,
			PartnerName: partnerName,
			LastMessage: c.LastMessage,
			LastActive:  c.LastActive,
			RevealLevel: c.RevealLevel,
			Unread:      isUnread(c, userID),
		})
	}
	return out, nil
}

// isUnread reports whether activity happened after the member last read the
// conversation.
func isUnread(c *domain.Conversation, userID string) bool {
	if c.LastMessage == nil {
		return false
	}
	lastRead := c.LastReadFor(userID)
	return lastRead == nil || c.LastActive.After(*lastRead)
}

// GetMessages returns the ordered log plus the reveal state, and marks the
// conversation read for the caller. Non-members get ErrAccessDenied.
func (uc *UseCase) GetMessages(ctx context.Context, conversationID, requesterID string) (*MessagePage, error) {
	conv, err := uc.memberConversation(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}

	msgs, err := uc.msgRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView(m, requesterID))
	}

	if err := uc.convRepo.MarkRead(ctx, conversationID, requesterID, time.Now()); err != nil {
		logger.Warn("failed to mark conversation read",
			"conversation_id", conversationID, "user_id", requesterID, "err", err)
	}

	return &MessagePage{
		Messages:        views,
		RevealLevel:     conv.RevealLevel,
		RevealStage:     domain.RevealStageName(conv.RevealLevel),
		FullyRevealed:   conv.FullyRevealed(),
		AwaitingPartner: conv.VoteFor(requesterID) != nil,
	}, nil
}

// PostMessage appends a text message. The append and the conversation
// snapshot update are atomic in the storage layer.
func (uc *UseCase) PostMessage(ctx context.Context, conversationID, requesterID string, req *PostRequest) (*MessageView, error) {
	if _, err := uc.memberConversation(ctx, conversationID, requesterID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", domain.ErrValidation)
	}
	if containsBannedWord(text) {
		return nil, fmt.Errorf("%w: please keep conversations respectful", domain.ErrValidation)
	}

	msg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       requesterID,
		Content:        text,
		Type:           domain.MessageTypeText,
	}
	// Append also advances the sender's read-mark in the same transaction.
	if err := uc.msgRepo.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	view := messageView(msg, requesterID)
	return &view, nil
}

// ConfirmReveal records the caller's vote for the next reveal level. The
// stored level advances by exactly one only when both members have voted
// for it; it never moves past the terminal stage.
func (uc *UseCase) ConfirmReveal(ctx context.Context, conversationID, requesterID string) (*RevealStatus, error) {
	conv, err := uc.memberConversation(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}
	if conv.FullyRevealed() {
		return nil, fmt.Errorf("%w: conversation is already fully revealed", domain.ErrValidation)
	}

	target := conv.RevealLevel + 1
	updated, advanced, err := uc.convRepo.CastRevealVote(ctx, conversationID, requesterID, target)
	if err != nil {
		return nil, fmt.Errorf("failed to record reveal vote: %w", err)
	}

	if advanced {
		stage := domain.RevealStageName(updated.RevealLevel)
		sys := &domain.Message{
			ID:             uuid.NewString(),
			ConversationID: conversationID,
			SenderID:       requesterID,
			Content:        fmt.Sprintf("%s revealed", stage),
			Type:           domain.MessageTypeSystem,
		}
		if err := uc.msgRepo.Append(ctx, sys); err != nil {
			logger.Warn("failed to append reveal system message",
				"conversation_id", conversationID, "err", err)
		}
		logger.Info("reveal level advanced",
			"conversation_id", conversationID, "level", updated.RevealLevel)
	}

	return &RevealStatus{
		RevealLevel:     updated.RevealLevel,
		Stage:           domain.RevealStageName(updated.RevealLevel),
		Advanced:        advanced,
		AwaitingPartner: !advanced,
		FullyRevealed:   updated.FullyRevealed(),
	}, nil
}

// memberConversation loads the conversation and enforces membership.
func (uc *UseCase) memberConversation(ctx context.Context, conversationID, requesterID string) (*domain.Conversation, error) {
	conv, err := uc.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasUser(requesterID) {
		return nil, domain.ErrAccessDenied
	}
	return conv, nil
}

func messageView(m *domain.Message, requesterID string) MessageView {
	sender := "them"
	if m.Type == domain.MessageTypeSystem {
		sender = "system"
	} else if m.SenderID == requesterID {
		sender = "me"
	}
	return MessageView{
		ID:        m.ID,
		Text:      m.Content,
		Sender:    sender,
		Timestamp: m.CreatedAt,
		Type:      m.Type,
	}
}

func containsBannedWord(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range bannedWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
