// Package item stores items and the roll chains they own
package item

import (
	"context"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=itemmock github.com/Dizabanik/droll/internal/repositories/item Repository

// CreateInput holds the item to store. The ID must already be assigned.
type CreateInput struct {
	Item *roll.Item
}

// CreateOutput returns the stored item
type CreateOutput struct {
	Item *roll.Item
}

// GetInput identifies an item
type GetInput struct {
	ID string
}

// GetOutput returns the item
type GetOutput struct {
	Item *roll.Item
}

// UpdateInput replaces an existing item
type UpdateInput struct {
	Item *roll.Item
}

// UpdateOutput returns the stored item
type UpdateOutput struct {
	Item *roll.Item
}

// DeleteInput identifies the item to delete
type DeleteInput struct {
	ID string
}

// DeleteOutput is empty
type DeleteOutput struct{}

// ListByOwnerInput selects an owner's items
type ListByOwnerInput struct {
	OwnerID string
}

// ListByOwnerOutput returns the items sorted by name
type ListByOwnerOutput struct {
	Items []*roll.Item
}

// Repository persists items
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
	ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error)
}
