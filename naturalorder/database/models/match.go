package models

import (
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/matching"
	"github.com/uptrace/bun"
)

type MatchStatus string

const (
	MatchActive    MatchStatus = "active"
	MatchContacted MatchStatus = "contacted"
	MatchRequested MatchStatus = "requested"
	MatchConfirmed MatchStatus = "confirmed"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
	MatchDismissed MatchStatus = "dismissed"
)

// Terminal reports whether the status accepts no further transitions or
// card-level edits.
func (s MatchStatus) Terminal() bool {
	return s == MatchCompleted || s == MatchCancelled
}

type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID      int64  `bun:"id,pk,autoincrement"`
	MatchID string `bun:"match_id,notnull,unique"`
	UserAID string `bun:"user_a_id,notnull"`
	UserBID string `bun:"user_b_id,notnull"`

	Status MatchStatus        `bun:"status,notnull,default:'active'"`
	Type   matching.MatchType `bun:"match_type,notnull"`
	Score  float64            `bun:"score,notnull,default:0"`

	UserModified bool `bun:"user_modified,notnull,default:false"`

	RequestedBy     string     `bun:"requested_by,type:text,default:''"`
	RequestedAt     *time.Time `bun:"requested_at"`
	ConfirmedAt     *time.Time `bun:"confirmed_at"`
	EscrowExpiresAt *time.Time `bun:"escrow_expires_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Cards []*MatchCard `bun:"rel:has-many,join:id=match_id"`
}

// Participant reports whether userID is one of the two sides of the match.
func (m *Match) Participant(userID string) bool {
	return userID == m.UserAID || userID == m.UserBID
}

// Counterpart returns the other participant, or "" when userID is not a
// participant.
func (m *Match) Counterpart(userID string) string {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	}
	return ""
}
