package domain

import "time"

// RevealStages names the disclosure levels 0..4. Level 0 (Chat) is the
// baseline every conversation starts at; level 4 (Identity) is terminal.
var RevealStages = [...]string{"Chat", "Interests", "Voice", "Photo", "Identity"}

// MaxRevealLevel is the terminal reveal level.
const MaxRevealLevel = len(RevealStages) - 1

// RevealStageName returns the stage name for a level, or "" out of range.
func RevealStageName(level int) string {
	if level < 0 || level >= len(RevealStages) {
		return ""
	}
	return RevealStages[level]
}

// Conversation is the single persistent pairing between two users. The pair
// is normalized before storage: UserLow < UserHigh by string comparison, and
// a unique constraint on (user_low, user_high) makes the pairing unique
// regardless of who initiated it.
//
// VoteLow/VoteHigh are the reveal handshake slots: each member's proposed
// next level. The stored level advances only when both equal level+1.
type Conversation struct {
	ID           string     `json:"id" db:"id"`
	UserLow      string     `json:"user_low" db:"user_low"`
	UserHigh     string     `json:"user_high" db:"user_high"`
	RevealLevel  int        `json:"reveal_level" db:"reveal_level"`
	VoteLow      *int       `json:"-" db:"vote_low"`
	VoteHigh     *int       `json:"-" db:"vote_high"`
	LastMessage  *string    `json:"last_message" db:"last_message"`
	LastActive   time.Time  `json:"last_active" db:"last_active"`
	LowLastRead  *time.Time `json:"-" db:"low_last_read"`
	HighLastRead *time.Time `json:"-" db:"high_last_read"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// NormalizePair orders two user ids into (low, high).
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

func (c *Conversation) HasUser(userID string) bool {
	return c.UserLow == userID || c.UserHigh == userID
}

func (c *Conversation) OtherUserID(userID string) (string, bool) {
	if c.UserLow == userID {
		return c.UserHigh, true
	}
	if c.UserHigh == userID {
		return c.UserLow, true
	}
	return "", false
}

// FullyRevealed reports whether the conversation reached the terminal stage.
func (c *Conversation) FullyRevealed() bool {
	return c.RevealLevel >= MaxRevealLevel
}

// VoteFor returns the member's current reveal vote.
func (c *Conversation) VoteFor(userID string) *int {
	if c.UserLow == userID {
		return c.VoteLow
	}
	if c.UserHigh == userID {
		return c.VoteHigh
	}
	return nil
}

// LastReadFor returns the member's last-read timestamp.
func (c *Conversation) LastReadFor(userID string) *time.Time {
	if c.UserLow == userID {
		return c.LowLastRead
	}
	if c.UserHigh == userID {
		return c.HighLastRead
	}
	return nil
}
