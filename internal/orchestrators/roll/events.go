package roll

import (
	"context"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	rollentity "github.com/Dizabanik/droll/internal/entities/roll"
)

const (
	// EventChainRolled is published after every successful RollChain
	EventChainRolled = "droll.chain.rolled"

	// Keys set on the event context of EventChainRolled
	EventKeyResult  = "result"
	EventKeyChainID = "chain_id"

	entityTypeCharacter = "character"
	entityTypeItem      = "item"
)

// CharacterEntity is the roller of a chain as a toolkit entity
type CharacterEntity struct {
	ID string
}

// GetID returns the character's ID
func (c *CharacterEntity) GetID() string {
	return c.ID
}

// GetType returns the entity type for rpg-toolkit
func (c *CharacterEntity) GetType() string {
	return entityTypeCharacter
}

// ItemEntity wraps an item to implement core.Entity
type ItemEntity struct {
	*rollentity.Item
}

// GetID returns the item's ID
func (i *ItemEntity) GetID() string {
	return i.ID
}

// GetType returns the entity type for rpg-toolkit
func (i *ItemEntity) GetType() string {
	return entityTypeItem
}

var (
	_ core.Entity = (*CharacterEntity)(nil)
	_ core.Entity = (*ItemEntity)(nil)
)

func (o *orchestrator) publishRolled(ctx context.Context, item *rollentity.Item, result *rollentity.ChainResult) {
	if o.eventBus == nil {
		return
	}

	event := events.NewGameEvent(EventChainRolled, &CharacterEntity{ID: result.CharacterID}, &ItemEntity{Item: item})
	event.Context().Set(EventKeyResult, result)
	event.Context().Set(EventKeyChainID, result.ChainID)

	if err := o.eventBus.Publish(ctx, event); err != nil {
		o.logger.Warn("Failed to publish chain rolled event",
			"roll_id", result.RollID,
			"error", err,
		)
	}
}
