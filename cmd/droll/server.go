package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	apiv1alpha1 "github.com/KirkDiggler/rpg-api-protos/gen/go/clients/api/v1alpha1"

	"github.com/Dizabanik/droll/internal/config"
	"github.com/Dizabanik/droll/internal/handlers/api/v1alpha1"
	"github.com/Dizabanik/droll/internal/orchestrators/dice"
	"github.com/Dizabanik/droll/internal/pkg/clock"
	"github.com/Dizabanik/droll/internal/pkg/idgen"
	"github.com/Dizabanik/droll/internal/redis"
	dicesession "github.com/Dizabanik/droll/internal/repositories/dice_session"
)

const (
	diceServiceName = "api.v1alpha1.DiceService"
	shutdownTimeout = 30 * time.Second
)

var (
	grpcPort int
	envFile  string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dice gRPC server",
	Long: `Start the DiceService gRPC server. Configuration comes from DROLL_*
environment variables, optionally loaded from a .env file.`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().IntVar(&grpcPort, "port", 0, "gRPC server port (overrides DROLL_GRPC_PORT)")
	serverCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

func runServer(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if grpcPort != 0 {
		cfg.GRPCPort = grpcPort
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, gracefully stopping")
		cancel()
	}()

	redisClient, err := redis.NewClient(cfg.Redis())
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer func() {
		_ = redisClient.Close() // nolint:errcheck // safe to ignore during shutdown
	}()
	if err := redis.Ping(ctx, redisClient); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	sessionRepo, err := dicesession.NewRedisRepository(&dicesession.Config{
		Client:     redisClient,
		Clock:      clock.New(),
		DefaultTTL: cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create dice session repository: %w", err)
	}

	diceService, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: sessionRepo,
		IDGenerator:     idgen.NewUUID("roll"),
		SessionTTL:      cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create dice service: %w", err)
	}

	diceHandler, err := v1alpha1.NewDiceHandler(&v1alpha1.DiceHandlerConfig{
		DiceService: diceService,
	})
	if err != nil {
		return fmt.Errorf("failed to create dice handler: %w", err)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	apiv1alpha1.RegisterDiceServiceServer(srv, diceHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(diceServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("gRPC server starting",
			"port", cfg.GRPCPort,
			"redis", cfg.RedisAddrs,
			"session_ttl", cfg.SessionTTL,
		)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down gRPC server")
		healthServer.Shutdown()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			slog.Warn("Graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			slog.Info("Server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

// logFunc routes interceptor logs into the default slog logger
func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
