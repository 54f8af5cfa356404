// Package repository defines the storage contracts consumed by the use
// cases. Implementations live in the postgres, memory and redissession
// subpackages.
package repository

import (
	"context"
	"time"

	"github.com/anondate/anondate-backend/internal/domain"
)

type UserRepository interface {
	// Create inserts the user; returns domain.ErrEmailTaken when the email
	// is already registered.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLastActive(ctx context.Context, id string) error
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// SaveAnswers overwrites only the quiz answers field.
	SaveAnswers(ctx context.Context, userID string, answers domain.AnswerMap) error
	// ListExcept returns every profile except the given user's.
	ListExcept(ctx context.Context, userID string) ([]*domain.Profile, error)
}

type PreferenceRepository interface {
	Create(ctx context.Context, pref *domain.Preference) error
	GetByUserID(ctx context.Context, userID string) (*domain.Preference, error)
	Update(ctx context.Context, pref *domain.Preference) error
}

type BlockRepository interface {
	// Upsert records the block, refreshing the reason if the ordered pair
	// already exists.
	Upsert(ctx context.Context, block *domain.Block) error
	IsBlockedEitherDirection(ctx context.Context, a, b string) (bool, error)
	// ListBlockedWith returns user ids with a block in either direction
	// relative to the given user.
	ListBlockedWith(ctx context.Context, userID string) ([]string, error)
}

type ConversationRepository interface {
	// CreateOrGet atomically creates the conversation for its normalized
	// pair if absent, or returns the existing one. The returned bool is
	// true when a new row was created.
	CreateOrGet(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	// ListForUser returns the user's conversations, most recently active
	// first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Conversation, error)
	ListPartnerIDs(ctx context.Context, userID string) ([]string, error)
	// CastRevealVote records the voter's proposal for the target level and
	// advances the stored level when both members' votes agree on it, all
	// under a row-level guard. The returned bool is true when the level
	// advanced.
	CastRevealVote(ctx context.Context, id, voterID string, target int) (*domain.Conversation, bool, error)
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
}

type MessageRepository interface {
	// Append inserts the message and, in the same transaction, updates the
	// conversation's last-message snapshot, last-active timestamp and the
	// sender's read-mark.
	Append(ctx context.Context, msg *domain.Message) error
	// ListByConversation returns messages in creation order, oldest first.
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error)
}

// SessionRepository is the revocation-aware store behind bearer tokens.
type SessionRepository interface {
	Store(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// UserID resolves a session to its user; returns domain.ErrInvalidToken
	// for unknown or revoked sessions.
	UserID(ctx context.Context, sessionID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}
