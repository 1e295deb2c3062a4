// Package redis wraps go-redis behind a small interface so repositories can
// be tested against miniredis or a mock.
package redis

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dizabanik/droll/internal/errors"
)

// Nil is returned by reads of missing keys
const Nil = redis.Nil

// Config selects the deployment. One address is a single node, several are
// a cluster, and a MasterName switches to sentinel failover.
type Config struct {
	Addrs      []string
	MasterName string
	Password   string
	DB         int

	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	UseTLS       bool
}

// Validate checks the config
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if len(c.Addrs) == 0 {
		vb.RequiredField("Addrs")
	}
	for i, addr := range c.Addrs {
		if addr == "" {
			vb.Fieldf("Addrs", "address %d is empty", i)
		}
	}
	if c.DB < 0 {
		vb.Field("DB", "must not be negative")
	}
	return vb.Build()
}

// NewClient builds a universal client. Redis connects lazily, so this does
// not touch the network; call Ping to check reachability.
func NewClient(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("redis config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid redis config")
	}

	opts := &redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return redis.NewUniversalClient(opts), nil
}

// Ping verifies the server answers
func Ping(ctx context.Context, client Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "redis is unreachable")
	}
	return nil
}
