package domain

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

// Message is an immutable entry in a conversation's append-only log.
// Creation time defines display order.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	SenderID       string    `json:"sender_id" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	Type           string    `json:"type" db:"type"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
