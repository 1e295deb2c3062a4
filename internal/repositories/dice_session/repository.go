// Package dicesession stores short-lived groups of dice rolls served by the dice service
package dicesession

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=dicesessionmock github.com/Dizabanik/droll/internal/repositories/dice_session Repository

// DiceSession groups the rolls one entity made in one context
// (e.g. "char_1" rolling in "chain:longsword")
type DiceSession struct {
	EntityID  string     `json:"entity_id"`
	Context   string     `json:"context"`
	Rolls     []DiceRoll `json:"rolls"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// DiceRoll is one rolled notation
type DiceRoll struct {
	RollID      string  `json:"roll_id"`
	Notation    string  `json:"notation"`
	Dice        []int32 `json:"dice"`
	Total       int32   `json:"total"`
	Dropped     []int32 `json:"dropped,omitempty"`
	Description string  `json:"description"`
	DiceTotal   int32   `json:"dice_total"`
	Modifier    int32   `json:"modifier"`
}

// CreateInput starts a session. A zero TTL uses the repository default.
type CreateInput struct {
	EntityID string
	Context  string
	Rolls    []DiceRoll
	TTL      time.Duration
}

// CreateOutput returns the stored session
type CreateOutput struct {
	Session *DiceSession
}

// GetInput identifies a session
type GetInput struct {
	EntityID string
	Context  string
}

// GetOutput returns the session
type GetOutput struct {
	Session *DiceSession
}

// DeleteInput identifies the session to delete
type DeleteInput struct {
	EntityID string
	Context  string
}

// DeleteOutput reports how many rolls went away
type DeleteOutput struct {
	RollsDeleted int32
}

// Repository stores dice sessions with an expiry
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// Update rewrites a session keeping its original expiry
	Update(ctx context.Context, session *DiceSession) error
}
