package dicesession

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	redisclient "github.com/Dizabanik/droll/internal/redis"
)

const (
	sessionKeyPrefix = "dice_session:"

	// DefaultTTL applies when neither the config nor the request sets one
	DefaultTTL = 15 * time.Minute

	errSessionNil    = "session cannot be nil"
	errEntityIDEmpty = "entity ID cannot be empty"
	errContextEmpty  = "context cannot be empty"
)

// Config holds the repository dependencies
type Config struct {
	Client     redisclient.Client
	Clock      clock.Clock
	DefaultTTL time.Duration
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.DefaultTTL < 0 {
		vb.Field("DefaultTTL", "must not be negative")
	}
	return vb.Build()
}

type redisRepository struct {
	client     redisclient.Client
	clock      clock.Clock
	defaultTTL time.Duration
}

// NewRedisRepository creates a Redis repository for dice sessions
func NewRedisRepository(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client:     cfg.Client,
		clock:      cfg.Clock,
		defaultTTL: ttl,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := checkKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	now := r.clock.Now()
	session := &DiceSession{
		EntityID:  input.EntityID,
		Context:   input.Context,
		Rolls:     input.Rolls,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := r.store(ctx, session, ttl); err != nil {
		return nil, err
	}
	return &CreateOutput{Session: session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := checkKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	key := buildKey(input.EntityID, input.Context)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return nil, errors.NotFound("dice session not found")
		}
		return nil, errors.Wrapf(err, "failed to get session")
	}

	var session DiceSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}

	// the key TTL and the stored expiry can disagree when the clock is injected
	if !r.clock.Now().Before(session.ExpiresAt) {
		r.client.Del(ctx, key)
		return nil, errors.NotFound("dice session has expired")
	}

	return &GetOutput{Session: &session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := checkKey(input.EntityID, input.Context); err != nil {
		return nil, err
	}

	var rollsDeleted int32
	if existing, err := r.Get(ctx, GetInput(input)); err == nil {
		// nolint:gosec // roll count is always small
		rollsDeleted = int32(len(existing.Session.Rolls))
	}

	if err := r.client.Del(ctx, buildKey(input.EntityID, input.Context)).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session")
	}

	return &DeleteOutput{RollsDeleted: rollsDeleted}, nil
}

func (r *redisRepository) Update(ctx context.Context, session *DiceSession) error {
	if session == nil {
		return errors.InvalidArgument(errSessionNil)
	}
	if err := checkKey(session.EntityID, session.Context); err != nil {
		return err
	}

	remaining := session.ExpiresAt.Sub(r.clock.Now())
	if remaining <= 0 {
		return errors.FailedPrecondition("session has already expired")
	}

	return r.store(ctx, session, remaining)
}

func (r *redisRepository) store(ctx context.Context, session *DiceSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal session")
	}
	if err := r.client.Set(ctx, buildKey(session.EntityID, session.Context), data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "failed to store session")
	}
	return nil
}

func checkKey(entityID, context string) error {
	vb := errors.NewValidationBuilder()
	if entityID == "" {
		vb.Field("entity_id", errEntityIDEmpty)
	}
	if context == "" {
		vb.Field("context", errContextEmpty)
	}
	return vb.Build()
}

func buildKey(entityID, context string) string {
	return sessionKeyPrefix + entityID + ":" + context
}
