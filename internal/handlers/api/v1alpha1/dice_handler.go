// Package v1alpha1 serves the api.v1alpha1 gRPC services
package v1alpha1

import (
	"context"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/orchestrators/dice"
	dicesession "github.com/Dizabanik/droll/internal/repositories/dice_session"
)

// DiceHandlerConfig holds dependencies for the dice handler
type DiceHandlerConfig struct {
	DiceService dice.Service
}

// Validate ensures all required dependencies are present
func (c *DiceHandlerConfig) Validate() error {
	if c == nil || c.DiceService == nil {
		return errors.InvalidArgument("dice service is required")
	}
	return nil
}

// DiceHandler implements DiceService on top of the dice orchestrator
type DiceHandler struct {
	apiv1alpha1.UnimplementedDiceServiceServer
	diceService dice.Service
}

// NewDiceHandler creates a new dice handler
func NewDiceHandler(cfg *DiceHandlerConfig) (*DiceHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &DiceHandler{diceService: cfg.DiceService}, nil
}

func requireSessionKey(entityID, sessionContext string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("entity_id", entityID, vb)
	errors.ValidateRequired("context", sessionContext, vb)
	return vb.Build()
}

// RollDice rolls the notation and returns every roll in the session, the new
// one last
func (h *DiceHandler) RollDice(
	ctx context.Context,
	req *apiv1alpha1.RollDiceRequest,
) (*apiv1alpha1.RollDiceResponse, error) {
	if err := requireSessionKey(req.GetEntityId(), req.GetContext()); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if req.GetNotation() == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("notation is required"))
	}

	out, err := h.diceService.RollDice(ctx, &dice.RollDiceInput{
		EntityID:    req.GetEntityId(),
		Context:     req.GetContext(),
		Notation:    req.GetNotation(),
		Description: req.GetModifierDescription(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &apiv1alpha1.RollDiceResponse{
		Rolls:     toProtoRolls(out.Session.Rolls),
		ExpiresAt: out.Session.ExpiresAt.Unix(),
	}, nil
}

// GetRollSession returns the rolls of an existing session
func (h *DiceHandler) GetRollSession(
	ctx context.Context,
	req *apiv1alpha1.GetRollSessionRequest,
) (*apiv1alpha1.GetRollSessionResponse, error) {
	if err := requireSessionKey(req.GetEntityId(), req.GetContext()); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.diceService.GetRollSession(ctx, &dice.GetRollSessionInput{
		EntityID: req.GetEntityId(),
		Context:  req.GetContext(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &apiv1alpha1.GetRollSessionResponse{
		Rolls:     toProtoRolls(out.Session.Rolls),
		ExpiresAt: out.Session.ExpiresAt.Unix(),
		CreatedAt: out.Session.CreatedAt.Unix(),
	}, nil
}

// ClearRollSession deletes a session
func (h *DiceHandler) ClearRollSession(
	ctx context.Context,
	req *apiv1alpha1.ClearRollSessionRequest,
) (*apiv1alpha1.ClearRollSessionResponse, error) {
	if err := requireSessionKey(req.GetEntityId(), req.GetContext()); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.diceService.ClearRollSession(ctx, &dice.ClearRollSessionInput{
		EntityID: req.GetEntityId(),
		Context:  req.GetContext(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &apiv1alpha1.ClearRollSessionResponse{
		Message:      "Roll session cleared successfully",
		RollsCleared: out.RollsDeleted,
	}, nil
}

func toProtoRolls(rolls []dicesession.DiceRoll) []*apiv1alpha1.DiceRoll {
	out := make([]*apiv1alpha1.DiceRoll, 0, len(rolls))
	for _, r := range rolls {
		out = append(out, &apiv1alpha1.DiceRoll{
			RollId:      r.RollID,
			Notation:    r.Notation,
			Dice:        r.Dice,
			Total:       r.Total,
			Dropped:     r.Dropped,
			Description: r.Description,
			DiceTotal:   r.DiceTotal,
			Modifier:    r.Modifier,
		})
	}
	return out
}
