// Package stats stores character stat sheets
package stats

import (
	"context"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=statsmock github.com/Dizabanik/droll/internal/repositories/stats Repository

// GetInput identifies a character
type GetInput struct {
	CharacterID string
}

// GetOutput returns the stat sheet
type GetOutput struct {
	Sheet *roll.StatSheet
}

// PutInput stores a sheet, replacing any previous one
type PutInput struct {
	Sheet *roll.StatSheet
}

// PutOutput returns the stored sheet
type PutOutput struct {
	Sheet *roll.StatSheet
}

// Repository persists stat sheets keyed by character
type Repository interface {
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Put(ctx context.Context, input PutInput) (*PutOutput, error)
}
