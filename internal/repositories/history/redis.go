package history

import (
	"context"
	"encoding/json"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	redisclient "github.com/Dizabanik/droll/internal/redis"
)

const (
	historyKeyPrefix = "history:"

	// DefaultMaxEntries is how many results are kept per character
	DefaultMaxEntries = 50

	errCharacterIDEmpty = "character ID cannot be empty"
)

// RedisConfig configures the Redis history repository
type RedisConfig struct {
	Client     redisclient.Client
	MaxEntries int
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
	if cfg.MaxEntries < 0 {
		vb.Field("MaxEntries", "must not be negative")
	}
	return vb.Build()
}

type redisRepository struct {
	client     redisclient.Client
	maxEntries int
}

// NewRedis creates a Redis-backed history repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	maxEntries := cfg.MaxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}

	return &redisRepository{
		client:     cfg.Client,
		maxEntries: maxEntries,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Result == nil {
		return nil, errors.InvalidArgument("result cannot be nil")
	}

	data, err := json.Marshal(input.Result)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal chain result")
	}

	key := historyKeyPrefix + input.CharacterID
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(r.maxEntries-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to append history")
	}

	return &AppendOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	stop := int64(-1)
	if input.Limit > 0 {
		stop = int64(input.Limit - 1)
	}

	entries, err := r.client.LRange(ctx, historyKeyPrefix+input.CharacterID, 0, stop).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read history")
	}

	results := make([]*roll.ChainResult, 0, len(entries))
	for _, entry := range entries {
		var result roll.ChainResult
		if err := json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal chain result")
		}
		results = append(results, &result)
	}

	return &ListOutput{Results: results}, nil
}
