package dice

import (
	"time"

	dicesession "github.com/Dizabanik/droll/internal/repositories/dice_session"
)

// RollDiceInput rolls one notation into the entity's session for Context
type RollDiceInput struct {
	EntityID    string
	Context     string
	Notation    string
	Description string
	TTL         time.Duration
}

// RollDiceOutput returns the new roll and the session it was added to
type RollDiceOutput struct {
	Roll    *dicesession.DiceRoll
	Session *dicesession.DiceSession
}

// GetRollSessionInput identifies a session
type GetRollSessionInput struct {
	EntityID string
	Context  string
}

// GetRollSessionOutput returns the session
type GetRollSessionOutput struct {
	Session *dicesession.DiceSession
}

// ClearRollSessionInput identifies the session to clear
type ClearRollSessionInput struct {
	EntityID string
	Context  string
}

// ClearRollSessionOutput reports how many rolls were removed
type ClearRollSessionOutput struct {
	RollsDeleted int32
}
