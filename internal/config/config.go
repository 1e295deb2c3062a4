// Package config loads droll's process configuration from the environment
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Dizabanik/droll/internal/engine/chain"
	"github.com/Dizabanik/droll/internal/errors"
	"github.com/Dizabanik/droll/internal/redis"
)

// Config is what `droll server` and the storing CLI commands read from the
// environment
type Config struct {
	GRPCPort int `env:"DROLL_GRPC_PORT" envDefault:"50051"`

	RedisAddrs    []string `env:"DROLL_REDIS_ADDR" envDefault:"localhost:6379" envSeparator:","`
	RedisPassword string   `env:"DROLL_REDIS_PASSWORD"`
	RedisDB       int      `env:"DROLL_REDIS_DB" envDefault:"0"`

	SessionTTL   time.Duration `env:"DROLL_SESSION_TTL" envDefault:"15m"`
	HistoryLimit int           `env:"DROLL_HISTORY_LIMIT" envDefault:"50"`
	DND5eBaseURL string        `env:"DROLL_DND5E_BASE_URL"`

	RollMode   string `env:"DROLL_ROLL_MODE" envDefault:"sequential"`
	CritPolicy string `env:"DROLL_CRIT_POLICY" envDefault:"propagate"`

	LogLevel string `env:"DROLL_LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional dotenv file and then the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load %s", envFile)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enum values
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRange("DROLL_GRPC_PORT", c.GRPCPort, 1, 65535, vb)
	if len(c.RedisAddrs) == 0 {
		vb.RequiredField("DROLL_REDIS_ADDR")
	}
	if c.SessionTTL <= 0 {
		vb.Field("DROLL_SESSION_TTL", "must be positive")
	}
	errors.ValidatePositive("DROLL_HISTORY_LIMIT", c.HistoryLimit, vb)
	errors.ValidateEnum("DROLL_ROLL_MODE", c.RollMode,
		[]string{string(chain.ModeSequential), string(chain.ModeSimultaneous)}, vb)
	errors.ValidateEnum("DROLL_CRIT_POLICY", c.CritPolicy,
		[]string{string(chain.CritPolicyPropagate), string(chain.CritPolicyPerStep)}, vb)
	errors.ValidateEnum("DROLL_LOG_LEVEL", c.LogLevel, []string{"debug", "info", "warn", "error"}, vb)

	return vb.Build()
}

// Redis returns the client config for the configured Redis
func (c *Config) Redis() *redis.Config {
	return &redis.Config{
		Addrs:    c.RedisAddrs,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
