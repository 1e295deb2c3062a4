package dicesource

import (
	"context"
	"log/slog"
	"time"

	toolkitdice "github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

// DefaultFallbackTimeout bounds a primary source call when none is configured
const DefaultFallbackTimeout = 2 * time.Second

// Fallback wraps a primary source so that a roll always completes: a slow or
// failing primary is cut off after the timeout and any value it did not
// supply is rolled locally.
type Fallback struct {
	primary Source
	roller  toolkitdice.Roller
	timeout time.Duration
	logger  *slog.Logger
}

// WithFallback wraps primary. A nil roller uses the toolkit default and a
// non-positive timeout uses DefaultFallbackTimeout.
func WithFallback(primary Source, roller toolkitdice.Roller, timeout time.Duration) *Fallback {
	if roller == nil {
		roller = toolkitdice.DefaultRoller
	}
	if timeout <= 0 {
		timeout = DefaultFallbackTimeout
	}
	return &Fallback{
		primary: primary,
		roller:  roller,
		timeout: timeout,
		logger:  slog.Default(),
	}
}

// Roll never returns an error for a live context. Values outside [1, sides]
// are treated as missing.
func (f *Fallback) Roll(ctx context.Context, requests []roll.DieRequest) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := f.callPrimary(ctx, requests)

	var filled int
	for _, req := range requests {
		if req.Sides <= 0 {
			continue
		}
		if v, ok := values[req.ID]; ok && v >= 1 && v <= req.Sides {
			continue
		}
		face, err := f.roller.Roll(req.Sides)
		if err != nil || face < 1 || face > req.Sides {
			// the toolkit roller only fails on a bad size, which was excluded above
			face = 1
		}
		values[req.ID] = face
		filled++
	}

	if filled > 0 {
		f.logger.Warn("Dice source fell back to local rolls",
			"requested", len(requests),
			"filled", filled,
		)
	}
	return values, nil
}

func (f *Fallback) callPrimary(ctx context.Context, requests []roll.DieRequest) map[string]int {
	values := make(map[string]int, len(requests))
	if f.primary == nil || len(requests) == 0 {
		return values
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	got, err := f.primary.Roll(callCtx, requests)
	if err != nil {
		f.logger.Warn("Primary dice source failed",
			"error", err,
			"requested", len(requests),
		)
	}
	for id, v := range got {
		values[id] = v
	}
	return values
}
