package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/Dizabanik/droll/internal/clients/catalog"
	"github.com/Dizabanik/droll/internal/clients/dicesource"
	"github.com/Dizabanik/droll/internal/config"
	"github.com/Dizabanik/droll/internal/engine/chain"
	"github.com/Dizabanik/droll/internal/orchestrators/roll"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	"github.com/Dizabanik/droll/internal/redis"
	"github.com/Dizabanik/droll/internal/repositories/history"
	"github.com/Dizabanik/droll/internal/repositories/item"
	"github.com/Dizabanik/droll/internal/repositories/stats"
)

// cliEntityID names the dice session of rolls made without a character
const cliEntityID = "droll-cli"

func init() {
	viper.SetDefault("dice_timeout", dicesource.DefaultFallbackTimeout)
}

// loadConfig reads the process config from ./.env and the environment, then
// applies the --mode and --crit-policy overrides when given
func loadConfig(mode, critPolicy string) (*config.Config, error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}
	if mode != "" {
		cfg.RollMode = mode
	}
	if critPolicy != "" {
		cfg.CritPolicy = critPolicy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunner(cfg *config.Config) (*chain.Runner, error) {
	return chain.New(&chain.Config{
		Mode:       chain.Mode(cfg.RollMode),
		CritPolicy: chain.CritPolicy(cfg.CritPolicy),
		IDs:        idgen.NewSequential("die"),
	})
}

// newDiceSource returns the local roller, or with remote set the DiceService
// at the configured server behind a local fallback
func newDiceSource(remote bool, entityID, sessionContext string) (dicesource.Source, func(), error) {
	if !remote {
		return dicesource.NewLocal(nil), func() {}, nil
	}

	conn, err := grpc.NewClient(viper.GetString("server"),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to dice service: %w", err)
	}
	cleanup := func() {
		_ = conn.Close() // nolint:errcheck // safe to ignore in cleanup
	}

	if entityID == "" {
		entityID = cliEntityID
	}
	remoteSource, err := dicesource.NewRemote(&dicesource.RemoteConfig{
		Client:   apiv1alpha1.NewDiceServiceClient(conn),
		EntityID: entityID,
		Context:  sessionContext,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return dicesource.WithFallback(remoteSource, nil, viper.GetDuration("dice_timeout")), cleanup, nil
}

func newCatalog(cfg *config.Config) (catalog.Client, error) {
	return catalog.New(&catalog.Config{BaseURL: cfg.DND5eBaseURL})
}

// openRollService is swapped out in tests
var openRollService = newRollService

// newRollService wires the roll orchestrator to the configured Redis
func newRollService(ctx context.Context, cfg *config.Config, source dicesource.Source) (roll.Service, func(), error) {
	client, err := redis.NewClient(cfg.Redis())
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close() // nolint:errcheck // safe to ignore in cleanup
	}
	if err := redis.Ping(ctx, client); err != nil {
		cleanup()
		return nil, nil, err
	}

	clk := clock.New()
	itemRepo, err := item.NewRedis(&item.RedisConfig{Client: client, Clock: clk})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	statsRepo, err := stats.NewRedis(&stats.RedisConfig{Client: client})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	historyRepo, err := history.NewRedis(&history.RedisConfig{
		Client:     client,
		MaxEntries: cfg.HistoryLimit,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	runner, err := newRunner(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	cat, err := newCatalog(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc, err := roll.NewOrchestrator(&roll.Config{
		ItemRepo:    itemRepo,
		StatsRepo:   statsRepo,
		HistoryRepo: historyRepo,
		Runner:      runner,
		DiceSource:  source,
		ItemIDs:     idgen.NewUUID("item"),
		RollIDs:     idgen.NewUUID("roll"),
		Clock:       clk,
		Catalog:     cat,
		EventBus:    newEventBus(),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// newEventBus returns a bus that logs every rolled chain
func newEventBus() events.EventBus {
	bus := events.NewBus()
	bus.SubscribeFunc(roll.EventChainRolled, 0, func(_ context.Context, e events.Event) error {
		slog.Debug("Chain rolled event",
			"character_id", e.Source().GetID(),
			"item_id", e.Target().GetID(),
		)
		return nil
	})
	return bus
}
