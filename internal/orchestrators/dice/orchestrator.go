// Package dice implements the dice service: it rolls NdS[+M] notation with
// the toolkit roller and keeps the results in short-lived sessions.
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/Dizabanik/droll/internal/orchestrators/dice Service

import (
	"context"
	"log/slog"
	"time"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/Dizabanik/droll/internal/engine/formula"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	dicesession "github.com/Dizabanik/droll/internal/repositories/dice_session"
)

// DefaultSessionTTL is used when neither the config nor the request sets one
const DefaultSessionTTL = 15 * time.Minute

// Service rolls dice and manages roll sessions
type Service interface {
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error)
	ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	DiceSessionRepo dicesession.Repository
	IDGenerator     idgen.Generator

	// Roller defaults to the toolkit's crypto roller
	Roller     toolkitdice.Roller
	SessionTTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.DiceSessionRepo == nil {
		vb.RequiredField("DiceSessionRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.SessionTTL < 0 {
		vb.Field("SessionTTL", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	diceSessionRepo dicesession.Repository
	idGen           idgen.Generator
	roller          toolkitdice.Roller
	sessionTTL      time.Duration
}

// NewOrchestrator creates a new dice orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = toolkitdice.DefaultRoller
	}
	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	return &orchestrator{
		diceSessionRepo: cfg.DiceSessionRepo,
		idGen:           cfg.IDGenerator,
		roller:          roller,
		sessionTTL:      ttl,
	}, nil
}

// parseNotation accepts NdS with an optional flat modifier. Unlike chain
// formulas, a malformed notation here is the caller's error.
func parseNotation(notation string) (formula.Simple, error) {
	parsed, ok := formula.MatchSimple(notation)
	if !ok || parsed.Sides <= 0 || parsed.Count <= 0 {
		return formula.Simple{}, errors.InvalidArgumentf("invalid dice notation: %s (expected format: NdS or NdS+M)", notation)
	}
	if parsed.Count > formula.MaxDicePerTerm {
		return formula.Simple{}, errors.InvalidArgumentf("at most %d dice per roll, got %d", formula.MaxDicePerTerm, parsed.Count)
	}
	return parsed, nil
}

// RollDice rolls the notation and appends the roll to the session, creating
// the session on first use
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("entity_id", input.EntityID, vb)
	errors.ValidateRequired("context", input.Context, vb)
	errors.ValidateRequired("notation", input.Notation, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	parsed, err := parseNotation(input.Notation)
	if err != nil {
		return nil, err
	}

	faces, err := o.roller.RollN(parsed.Count, parsed.Sides)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to roll dice")
	}

	roll := newDiceRoll(o.idGen.Generate(), input, parsed, faces)

	session, err := o.appendToSession(ctx, input, roll)
	if err != nil {
		return nil, err
	}

	slog.Info("Dice rolled successfully",
		"entity_id", input.EntityID,
		"context", input.Context,
		"notation", input.Notation,
		"total", roll.Total,
		"roll_id", roll.RollID,
	)

	return &RollDiceOutput{
		Roll:    roll,
		Session: session,
	}, nil
}

func newDiceRoll(id string, input *RollDiceInput, parsed formula.Simple, faces []int) *dicesession.DiceRoll {
	dice := make([]int32, len(faces))
	var diceTotal int32
	for i, f := range faces {
		// nolint:gosec // faces are bounded by the die size
		dice[i] = int32(f)
		diceTotal += dice[i]
	}

	// nolint:gosec // modifiers are small
	modifier := int32(parsed.Modifier)

	return &dicesession.DiceRoll{
		RollID:      id,
		Notation:    parsed.String(),
		Dice:        dice,
		Total:       diceTotal + modifier,
		Description: input.Description,
		DiceTotal:   diceTotal,
		Modifier:    modifier,
	}
}

func (o *orchestrator) appendToSession(
	ctx context.Context,
	input *RollDiceInput,
	roll *dicesession.DiceRoll,
) (*dicesession.DiceSession, error) {
	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err == nil {
		session := getOutput.Session
		session.Rolls = append(session.Rolls, *roll)
		if err := o.diceSessionRepo.Update(ctx, session); err != nil {
			return nil, errors.Wrap(err, "failed to update dice session")
		}
		return session, nil
	}
	if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, "failed to check for existing session")
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = o.sessionTTL
	}

	createOutput, err := o.diceSessionRepo.Create(ctx, dicesession.CreateInput{
		EntityID: input.EntityID,
		Context:  input.Context,
		Rolls:    []dicesession.DiceRoll{*roll},
		TTL:      ttl,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dice session")
	}
	return createOutput.Session, nil
}

// GetRollSession retrieves an existing dice roll session
func (o *orchestrator) GetRollSession(ctx context.Context, input *GetRollSessionInput) (*GetRollSessionOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	getOutput, err := o.diceSessionRepo.Get(ctx, dicesession.GetInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dice session")
	}

	return &GetRollSessionOutput{Session: getOutput.Session}, nil
}

// ClearRollSession removes a dice roll session
func (o *orchestrator) ClearRollSession(ctx context.Context, input *ClearRollSessionInput) (*ClearRollSessionOutput, error) {
	if input == nil || input.EntityID == "" {
		return nil, errors.InvalidArgument("entity ID is required")
	}
	if input.Context == "" {
		return nil, errors.InvalidArgument("context is required")
	}

	deleteOutput, err := o.diceSessionRepo.Delete(ctx, dicesession.DeleteInput{
		EntityID: input.EntityID,
		Context:  input.Context,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete dice session")
	}

	slog.Info("Dice session cleared",
		"entity_id", input.EntityID,
		"context", input.Context,
		"rolls_deleted", deleteOutput.RollsDeleted,
	)

	return &ClearRollSessionOutput{RollsDeleted: deleteOutput.RollsDeleted}, nil
}
