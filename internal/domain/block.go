package domain

import "time"

// Block is a directed blocker→blocked relation. At most one row exists per
// ordered pair; re-blocking refreshes the reason.
type Block struct {
	BlockerID string    `json:"blocker_id" db:"blocker_id"`
	BlockedID string    `json:"blocked_id" db:"blocked_id"`
	Reason    *string   `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
