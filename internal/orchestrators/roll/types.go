package roll

import (
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
)

// CreateItemInput holds a new item. An empty ID is assigned.
type CreateItemInput struct {
	Item *rollentity.Item
}

// CreateItemOutput returns the stored item
type CreateItemOutput struct {
	Item *rollentity.Item
}

// GetItemInput identifies an item
type GetItemInput struct {
	ItemID string
}

// GetItemOutput returns the item
type GetItemOutput struct {
	Item *rollentity.Item
}

// UpdateItemInput replaces an existing item
type UpdateItemInput struct {
	Item *rollentity.Item
}

// UpdateItemOutput returns the stored item
type UpdateItemOutput struct {
	Item *rollentity.Item
}

// DeleteItemInput identifies the item to delete
type DeleteItemInput struct {
	ItemID string
}

// DeleteItemOutput is empty
type DeleteItemOutput struct{}

// ListItemsInput selects an owner's items
type ListItemsInput struct {
	OwnerID string
}

// ListItemsOutput returns the owner's items sorted by name
type ListItemsOutput struct {
	Items []*rollentity.Item
}

// PutStatsInput stores a character's stat sheet
type PutStatsInput struct {
	Sheet *rollentity.StatSheet
}

// PutStatsOutput returns the stored sheet
type PutStatsOutput struct {
	Sheet *rollentity.StatSheet
}

// RollChainInput selects a chain and what to roll it with
type RollChainInput struct {
	ItemID  string
	ChainID string

	// CharacterID selects the stored stat sheet and the history the result
	// is recorded in. Optional.
	CharacterID string

	// Sheet, when set, is used instead of the stored sheet
	Sheet *rollentity.StatSheet

	// Variables override the chain's defaults
	Variables map[string]int
}

// RollChainOutput returns the result of the roll
type RollChainOutput struct {
	Result *rollentity.ChainResult
}

// ListHistoryInput selects a character's past rolls
type ListHistoryInput struct {
	CharacterID string
	Limit       int
}

// ListHistoryOutput returns results newest first
type ListHistoryOutput struct {
	Results []*rollentity.ChainResult
}

// ImportWeaponInput names an SRD weapon to turn into an item
type ImportWeaponInput struct {
	WeaponID string
	OwnerID  string
}

// ImportWeaponOutput returns the created item
type ImportWeaponOutput struct {
	Item *rollentity.Item
}
