package item

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	redisclient "github.com/Dizabanik/droll/internal/redis"
)

const (
	itemKeyPrefix    = "item:"
	ownerIndexPrefix = "item:owner:"

	errItemNil     = "item cannot be nil"
	errItemIDEmpty = "item ID cannot be empty"
	errOwnerEmpty  = "owner ID cannot be empty"
)

// RedisConfig configures the Redis item repository
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate checks the config
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("Client")
	}
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// NewRedis creates a Redis-backed item repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Item == nil {
		return nil, errors.InvalidArgument(errItemNil)
	}
	if input.Item.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	key := itemKeyPrefix + input.Item.ID
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("item with ID %s already exists", input.Item.ID)
	}

	now := r.clock.Now()
	stored := *input.Item
	stored.CreatedAt = now
	stored.UpdatedAt = now

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal item")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	if stored.OwnerID != "" {
		pipe.SAdd(ctx, ownerIndexPrefix+stored.OwnerID, stored.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create item")
	}

	return &CreateOutput{Item: &stored}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	item, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Item: item}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Item == nil {
		return nil, errors.InvalidArgument(errItemNil)
	}
	if input.Item.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	existing, err := r.load(ctx, input.Item.ID)
	if err != nil {
		return nil, err
	}

	stored := *input.Item
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.clock.Now()

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal item")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, itemKeyPrefix+stored.ID, data, 0)
	if existing.OwnerID != stored.OwnerID {
		if existing.OwnerID != "" {
			pipe.SRem(ctx, ownerIndexPrefix+existing.OwnerID, stored.ID)
		}
		if stored.OwnerID != "" {
			pipe.SAdd(ctx, ownerIndexPrefix+stored.OwnerID, stored.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to update item")
	}

	return &UpdateOutput{Item: &stored}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errItemIDEmpty)
	}

	existing, err := r.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, itemKeyPrefix+input.ID)
	if existing.OwnerID != "" {
		pipe.SRem(ctx, ownerIndexPrefix+existing.OwnerID, input.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete item")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error) {
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerEmpty)
	}

	indexKey := ownerIndexPrefix + input.OwnerID
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", indexKey)
	}

	items := make([]*roll.Item, 0, len(ids))
	for _, id := range ids {
		item, err := r.load(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				slog.WarnContext(ctx, "item missing, cleaning up index",
					"item_id", id,
					"index_key", indexKey)
				r.client.SRem(ctx, indexKey, id)
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})

	slog.DebugContext(ctx, "listed items by owner",
		"owner_id", input.OwnerID,
		"count", len(items))

	return &ListByOwnerOutput{Items: items}, nil
}

func (r *redisRepository) load(ctx context.Context, id string) (*roll.Item, error) {
	raw, err := r.client.Get(ctx, itemKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, errors.NotFoundf("item with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get item")
	}

	var item roll.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal item")
	}
	return &item, nil
}
