// Package history keeps a capped, newest-first log of chain results per character
package history

import (
	"context"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=historymock github.com/Dizabanik/droll/internal/repositories/history Repository

// AppendInput records one chain result
type AppendInput struct {
	CharacterID string
	Result      *roll.ChainResult
}

// AppendOutput is empty
type AppendOutput struct{}

// ListInput selects a character's history. Limit <= 0 returns everything kept.
type ListInput struct {
	CharacterID string
	Limit       int
}

// ListOutput returns results newest first
type ListOutput struct {
	Results []*roll.ChainResult
}

// Repository persists roll history
type Repository interface {
	Append(ctx context.Context, input AppendInput) (*AppendOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}
