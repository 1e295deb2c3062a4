package dicesource

import (
	"context"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
)

// Local rolls every request in process with a toolkit roller
type Local struct {
	roller toolkitdice.Roller
}

// NewLocal returns a Local source. A nil roller uses the toolkit's default.
func NewLocal(roller toolkitdice.Roller) *Local {
	if roller == nil {
		roller = toolkitdice.DefaultRoller
	}
	return &Local{roller: roller}
}

// Roll asks the roller once per distinct die size
func (l *Local) Roll(ctx context.Context, requests []roll.DieRequest) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "dice roll canceled")
	}

	values := make(map[string]int, len(requests))
	for _, group := range groupBySides(requests) {
		if group.sides <= 0 {
			continue
		}
		faces, err := l.roller.RollN(len(group.requests), group.sides)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll %dd%d", len(group.requests), group.sides)
		}
		for i, req := range group.requests {
			if i < len(faces) {
				values[req.ID] = faces[i]
			}
		}
	}
	return values, nil
}
