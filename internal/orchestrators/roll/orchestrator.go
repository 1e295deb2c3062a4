// Package roll manages items and their roll chains, and rolls them against a
// character's stats.
package roll

//go:generate mockgen -destination=mock/mock_service.go -package=rollmock github.com/Dizabanik/droll/internal/orchestrators/roll Service

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/Dizabanik/droll/internal/clients/catalog"
	"github.com/Dizabanik/droll/internal/clients/dicesource"
	"github.com/Dizabanik/droll/internal/engine/chain"
	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	"github.com/Dizabanik/droll/internal/repositories/history"
	"github.com/Dizabanik/droll/internal/repositories/item"
	"github.com/Dizabanik/droll/internal/repositories/stats"
)

// Service is the item and chain rolling API
type Service interface {
	CreateItem(ctx context.Context, input *CreateItemInput) (*CreateItemOutput, error)
	GetItem(ctx context.Context, input *GetItemInput) (*GetItemOutput, error)
	UpdateItem(ctx context.Context, input *UpdateItemInput) (*UpdateItemOutput, error)
	DeleteItem(ctx context.Context, input *DeleteItemInput) (*DeleteItemOutput, error)
	ListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error)

	PutStats(ctx context.Context, input *PutStatsInput) (*PutStatsOutput, error)

	RollChain(ctx context.Context, input *RollChainInput) (*RollChainOutput, error)
	ListHistory(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error)

	ImportWeapon(ctx context.Context, input *ImportWeaponInput) (*ImportWeaponOutput, error)
}

// Config holds the dependencies for the roll orchestrator
type Config struct {
	ItemRepo    item.Repository
	StatsRepo   stats.Repository
	HistoryRepo history.Repository

	Runner     *chain.Runner
	DiceSource dicesource.Source

	ItemIDs idgen.Generator
	RollIDs idgen.Generator
	Clock   clock.Clock

	// Catalog is only needed by ImportWeapon
	Catalog catalog.Client
	// EventBus receives EventChainRolled. Optional.
	EventBus events.EventBus
	Logger   *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.ItemRepo == nil {
		vb.RequiredField("ItemRepo")
	}
	if c.StatsRepo == nil {
		vb.RequiredField("StatsRepo")
	}
	if c.HistoryRepo == nil {
		vb.RequiredField("HistoryRepo")
	}
	if c.Runner == nil {
		vb.RequiredField("Runner")
	}
	if c.DiceSource == nil {
		vb.RequiredField("DiceSource")
	}
	if c.ItemIDs == nil {
		vb.RequiredField("ItemIDs")
	}
	if c.RollIDs == nil {
		vb.RequiredField("RollIDs")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	itemRepo    item.Repository
	statsRepo   stats.Repository
	historyRepo history.Repository
	runner      *chain.Runner
	diceSource  dicesource.Source
	itemIDs     idgen.Generator
	rollIDs     idgen.Generator
	clock       clock.Clock
	catalog     catalog.Client
	eventBus    events.EventBus
	logger      *slog.Logger
}

// NewOrchestrator creates a new roll orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &orchestrator{
		itemRepo:    cfg.ItemRepo,
		statsRepo:   cfg.StatsRepo,
		historyRepo: cfg.HistoryRepo,
		runner:      cfg.Runner,
		diceSource:  cfg.DiceSource,
		itemIDs:     cfg.ItemIDs,
		rollIDs:     cfg.RollIDs,
		clock:       cfg.Clock,
		catalog:     cfg.Catalog,
		eventBus:    cfg.EventBus,
		logger:      logger,
	}, nil
}

// CreateItem validates and stores a new item
func (o *orchestrator) CreateItem(ctx context.Context, input *CreateItemInput) (*CreateItemOutput, error) {
	if input == nil || input.Item == nil {
		return nil, errors.InvalidArgument("item is required")
	}

	newItem := *input.Item
	if newItem.ID == "" {
		newItem.ID = o.itemIDs.Generate()
	}
	if err := chain.ValidateItem(&newItem); err != nil {
		return nil, err
	}

	out, err := o.itemRepo.Create(ctx, item.CreateInput{Item: &newItem})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create item %s", newItem.ID)
	}

	o.logger.Info("Item created",
		"item_id", out.Item.ID,
		"owner_id", out.Item.OwnerID,
		"chains", len(out.Item.Chains),
	)

	return &CreateItemOutput{Item: out.Item}, nil
}

// GetItem returns one item
func (o *orchestrator) GetItem(ctx context.Context, input *GetItemInput) (*GetItemOutput, error) {
	if input == nil || input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}

	out, err := o.itemRepo.Get(ctx, item.GetInput{ID: input.ItemID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get item")
	}
	return &GetItemOutput{Item: out.Item}, nil
}

// UpdateItem validates and replaces an existing item
func (o *orchestrator) UpdateItem(ctx context.Context, input *UpdateItemInput) (*UpdateItemOutput, error) {
	if input == nil || input.Item == nil {
		return nil, errors.InvalidArgument("item is required")
	}
	if input.Item.ID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}
	if err := chain.ValidateItem(input.Item); err != nil {
		return nil, err
	}

	out, err := o.itemRepo.Update(ctx, item.UpdateInput{Item: input.Item})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to update item %s", input.Item.ID)
	}

	o.logger.Info("Item updated", "item_id", out.Item.ID)
	return &UpdateItemOutput{Item: out.Item}, nil
}

// DeleteItem removes an item
func (o *orchestrator) DeleteItem(ctx context.Context, input *DeleteItemInput) (*DeleteItemOutput, error) {
	if input == nil || input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID is required")
	}

	if _, err := o.itemRepo.Delete(ctx, item.DeleteInput{ID: input.ItemID}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete item %s", input.ItemID)
	}

	o.logger.Info("Item deleted", "item_id", input.ItemID)
	return &DeleteItemOutput{}, nil
}

// ListItems returns an owner's items
func (o *orchestrator) ListItems(ctx context.Context, input *ListItemsInput) (*ListItemsOutput, error) {
	if input == nil || input.OwnerID == "" {
		return nil, errors.InvalidArgument("owner ID is required")
	}

	out, err := o.itemRepo.ListByOwner(ctx, item.ListByOwnerInput{OwnerID: input.OwnerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}
	return &ListItemsOutput{Items: out.Items}, nil
}

// PutStats stores a character's stat sheet
func (o *orchestrator) PutStats(ctx context.Context, input *PutStatsInput) (*PutStatsOutput, error) {
	if input == nil || input.Sheet == nil {
		return nil, errors.InvalidArgument("stat sheet is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("character_id", input.Sheet.CharacterID, vb)
	for i, c := range input.Sheet.Custom {
		if c.ID == "" {
			vb.Fieldf("custom", "entry %d: id is required", i)
		}
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	out, err := o.storeSheet(ctx, input.Sheet)
	if err != nil {
		return nil, err
	}
	return &PutStatsOutput{Sheet: out}, nil
}

func (o *orchestrator) storeSheet(ctx context.Context, sheet *rollentity.StatSheet) (*rollentity.StatSheet, error) {
	out, err := o.statsRepo.Put(ctx, stats.PutInput{Sheet: sheet})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to store stats for %s", sheet.CharacterID)
	}
	return out.Sheet, nil
}

// RollChain rolls one chain of an item. The result is recorded in the
// character's history and announced on the event bus; failures of either
// are logged and do not fail the roll.
func (o *orchestrator) RollChain(ctx context.Context, input *RollChainInput) (*RollChainOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("item_id", input.ItemID, vb)
	errors.ValidateRequired("chain_id", input.ChainID, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	itemOut, err := o.itemRepo.Get(ctx, item.GetInput{ID: input.ItemID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get item")
	}
	rolled := itemOut.Item

	target := rolled.FindChain(input.ChainID)
	if target == nil {
		return nil, errors.NotFoundf("chain %s not found on item %s", input.ChainID, input.ItemID)
	}

	sheet, err := o.sheetFor(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := o.runner.Run(ctx, &chain.RunInput{
		Chain:     target,
		Sheet:     sheet,
		Variables: input.Variables,
		Provider:  o.diceSource,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to roll chain %s", input.ChainID)
	}

	result.RollID = o.rollIDs.Generate()
	result.ItemID = rolled.ID
	result.CharacterID = input.CharacterID
	result.RolledAt = o.clock.Now()

	if input.CharacterID != "" {
		if _, err := o.historyRepo.Append(ctx, history.AppendInput{
			CharacterID: input.CharacterID,
			Result:      result,
		}); err != nil {
			o.logger.Warn("Failed to record roll history",
				"roll_id", result.RollID,
				"character_id", input.CharacterID,
				"error", err,
			)
		}
	}

	o.publishRolled(ctx, rolled, result)

	o.logger.Info("Chain rolled",
		"roll_id", result.RollID,
		"item_id", rolled.ID,
		"chain_id", target.ID,
		"character_id", input.CharacterID,
		"grand_total", result.GrandTotal,
	)

	return &RollChainOutput{Result: result}, nil
}

// sheetFor picks the sheet to roll with. A character without a stored sheet
// rolls with an empty one, so every stat resolves to its default.
func (o *orchestrator) sheetFor(ctx context.Context, input *RollChainInput) (*rollentity.StatSheet, error) {
	if input.Sheet != nil {
		return input.Sheet, nil
	}
	if input.CharacterID == "" {
		return &rollentity.StatSheet{}, nil
	}

	out, err := o.statsRepo.Get(ctx, stats.GetInput{CharacterID: input.CharacterID})
	if err != nil {
		if errors.IsNotFound(err) {
			o.logger.Debug("No stat sheet for character", "character_id", input.CharacterID)
			return &rollentity.StatSheet{CharacterID: input.CharacterID}, nil
		}
		return nil, errors.Wrap(err, "failed to get stats")
	}
	return out.Sheet, nil
}

// ListHistory returns a character's past rolls, newest first
func (o *orchestrator) ListHistory(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
	if input == nil || input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}
	if input.Limit < 0 {
		return nil, errors.InvalidArgument("limit must not be negative")
	}

	out, err := o.historyRepo.List(ctx, history.ListInput{
		CharacterID: input.CharacterID,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list history")
	}
	return &ListHistoryOutput{Results: out.Results}, nil
}

// ImportWeapon creates an item from an SRD weapon
func (o *orchestrator) ImportWeapon(ctx context.Context, input *ImportWeaponInput) (*ImportWeaponOutput, error) {
	if input == nil || input.WeaponID == "" {
		return nil, errors.InvalidArgument("weapon ID is required")
	}
	if o.catalog == nil {
		return nil, errors.FailedPrecondition("no weapon catalog configured")
	}

	weapon, err := o.catalog.GetWeapon(ctx, input.WeaponID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch weapon %s", input.WeaponID)
	}

	newItem := WeaponChain(weapon)
	newItem.OwnerID = input.OwnerID

	created, err := o.CreateItem(ctx, &CreateItemInput{Item: newItem})
	if err != nil {
		return nil, err
	}

	o.logger.Info("Weapon imported",
		"weapon_id", weapon.ID,
		"item_id", created.Item.ID,
		"damage", weapon.DamageDice,
	)
	return &ImportWeaponOutput{Item: created.Item}, nil
}
