package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/arrakis/arrakis-server-go/internal/config"
	"github.com/arrakis/arrakis-server-go/internal/game"
	"github.com/arrakis/arrakis-server-go/internal/server"
	"github.com/arrakis/arrakis-server-go/internal/storage"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arrakis server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("arrakis server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.Source, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	logger.Info("storage initialized",
		zap.String("driver", cfg.Storage.Driver),
	)

	mgr := game.NewManager(logger, store)
	restored, err := storage.RestoreAll(ctx, store, mgr, logger)
	if err != nil {
		return fmt.Errorf("restore matches: %w", err)
	}
	logger.Info("match manager initialized", zap.Int("restored_matches", restored))

	if cfg.Auth.HostPasswordHash == "" {
		logger.Warn("host password not configured; host RPC access disabled")
	}

	hub := server.NewHub(mgr, cfg.Server.WebSocket.AllowedOrigins, cfg.Server.WebSocket.PingInterval, logger)
	mgr.SetNotificationHandler(hub.Notify)

	limiter := server.NewPeerLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst, cfg.Server.RateLimit.Enabled)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			server.RecoveryInterceptor(logger),
			server.LoggingInterceptor(logger),
			server.RateLimitInterceptor(limiter, logger),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.Server.GRPC.KeepaliveTime,
			Timeout: cfg.Server.GRPC.KeepaliveTimeout,
		}),
		grpc.MaxConcurrentStreams(uint32(cfg.Server.GRPC.MaxConcurrentStreams)),
	)
	server.Register(grpcServer, server.NewEngineServer(mgr, server.Options{
		HostPasswordHash: cfg.Auth.HostPasswordHash,
		MatchDefaults:    cfg.Engine.MatchConfig(0, 0),
	}, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.GRPC.Address, err)
	}
	wsServer := server.NewWebSocketServer(cfg.Server.WebSocket.Address, hub)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting gRPC server", zap.String("address", cfg.Server.GRPC.Address))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("starting WebSocket server", zap.String("address", cfg.Server.WebSocket.Address))
		if err := wsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return limiter.Run(gctx, time.Minute) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		return wsServer.Shutdown(shutdownCtx)
	})

	logger.Info("arrakis server initialized",
		zap.String("version", version),
		zap.String("grpc_address", cfg.Server.GRPC.Address),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)
	return g.Wait()
}

// initLogger builds the process logger. JSON output uses the sampled
// production encoder; anything else gets colored console output.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging level: %w", err)
		}
		level = parsed
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]any{"service": "arrakis"}
	return zapCfg.Build()
}
