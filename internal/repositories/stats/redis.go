package stats

import (
	"context"
	"encoding/json"

	"github.com/Dizabanik/droll/internal/entities/roll"
	"github.com/Dizabanik/droll/internal/errors"
	redisclient "github.com/Dizabanik/droll/internal/redis"
)

const (
	statsKeyPrefix = "stats:"

	errCharacterIDEmpty = "character ID cannot be empty"
)

// RedisConfig configures the Redis stats repository
type RedisConfig struct {
	Client redisclient.Client
}

// Validate checks the config
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedis creates a Redis-backed stats repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	raw, err := r.client.Get(ctx, statsKeyPrefix+input.CharacterID).Bytes()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, errors.NotFoundf("stats for character %s not found", input.CharacterID)
		}
		return nil, errors.Wrapf(err, "failed to get stats")
	}

	var sheet roll.StatSheet
	if err := json.Unmarshal(raw, &sheet); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal stats")
	}
	return &GetOutput{Sheet: &sheet}, nil
}

func (r *redisRepository) Put(ctx context.Context, input PutInput) (*PutOutput, error) {
	if input.Sheet == nil {
		return nil, errors.InvalidArgument("stat sheet cannot be nil")
	}
	if input.Sheet.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	data, err := json.Marshal(input.Sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal stats")
	}
	if err := r.client.Set(ctx, statsKeyPrefix+input.Sheet.CharacterID, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to store stats")
	}

	return &PutOutput{Sheet: input.Sheet}, nil
}
