package dicesource

import (
	"context"
	"fmt"
	"log/slog"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/Dizabanik/droll/internal/engine/formula"
	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
)

// RemoteConfig configures a Remote source
type RemoteConfig struct {
	Client apiv1alpha1.DiceServiceClient

	// EntityID and Context name the dice session the rolls are recorded in
	EntityID string
	Context  string
}

// Validate ensures all required fields are present
func (c *RemoteConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	errors.ValidateRequired("EntityID", c.EntityID, vb)
	errors.ValidateRequired("Context", c.Context, vb)
	return vb.Build()
}

// Remote rolls through a DiceService. Each distinct die size in a batch is one
// RollDice call, split further so no call asks for more than
// formula.MaxDicePerTerm dice.
type Remote struct {
	client   apiv1alpha1.DiceServiceClient
	entityID string
	context  string
}

// NewRemote creates a Remote source
func NewRemote(cfg *RemoteConfig) (*Remote, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid remote dice source config")
	}
	return &Remote{
		client:   cfg.Client,
		entityID: cfg.EntityID,
		context:  cfg.Context,
	}, nil
}

// Roll implements Source. The roll made by a call is the last one in the
// returned session.
func (r *Remote) Roll(ctx context.Context, requests []roll.DieRequest) (map[string]int, error) {
	values := make(map[string]int, len(requests))
	for _, group := range groupBySides(requests) {
		if group.sides <= 0 {
			continue
		}
		for pending := group.requests; len(pending) > 0; {
			n := min(len(pending), formula.MaxDicePerTerm)
			if err := r.rollChunk(ctx, group.sides, pending[:n], values); err != nil {
				return values, err
			}
			pending = pending[n:]
		}
	}
	return values, nil
}

func (r *Remote) rollChunk(ctx context.Context, sides int, chunk []roll.DieRequest, values map[string]int) error {
	notation := fmt.Sprintf("%dd%d", len(chunk), sides)

	resp, err := r.client.RollDice(ctx, &apiv1alpha1.RollDiceRequest{
		EntityId: r.entityID,
		Context:  r.context,
		Notation: notation,
	})
	if err != nil {
		return errors.Wrapf(errors.FromGRPCError(err), "remote roll of %s failed", notation)
	}
	if len(resp.GetRolls()) == 0 {
		return errors.Internalf("remote roll of %s returned no rolls", notation)
	}

	rolled := resp.GetRolls()[len(resp.GetRolls())-1]
	if len(rolled.GetDice()) != len(chunk) {
		slog.Warn("Remote dice count mismatch",
			"notation", notation,
			"returned", len(rolled.GetDice()),
		)
	}
	for i, req := range chunk {
		if i < len(rolled.GetDice()) {
			values[req.ID] = int(rolled.GetDice()[i])
		}
	}
	return nil
}
