package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sun1tar/taskmanager/internal/auth"
	"github.com/sun1tar/taskmanager/internal/cache"
	"github.com/sun1tar/taskmanager/internal/config"
	taskgrpc "github.com/sun1tar/taskmanager/internal/grpc"
	apihttp "github.com/sun1tar/taskmanager/internal/http"
	"github.com/sun1tar/taskmanager/internal/middleware"
	"github.com/sun1tar/taskmanager/internal/repository"
	"github.com/sun1tar/taskmanager/internal/service"
	"github.com/sun1tar/taskmanager/shared/logger"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second

	limiterCleanupInterval = time.Minute
	limiterIdle            = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("taskd").WithError(err).Fatal("failed to load config")
	}

	log := logger.New("taskd", cfg.LogLevel, os.Stdout)
	logger.Logger = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище
	store, err := openStore(ctx, cfg.DB)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.DB.Driver).Fatal("failed to connect to database")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.WithError(err).Warn("failed to close store")
		}
	}()
	log.WithField("driver", cfg.DB.Driver).Info("store ready")

	// Кэш чтения (необязателен)
	var data repository.Store = store
	if cfg.Cache.RedisAddr != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		rc, err := cache.NewRedisCache(connectCtx, cfg.Cache.RedisAddr)
		cancel()
		if err != nil {
			log.WithError(err).WithField("addr", cfg.Cache.RedisAddr).Fatal("failed to connect to redis")
		}
		defer rc.Close()
		data = repository.WithCache(store, rc, cfg.Cache.TTL, log)
		log.WithField("addr", cfg.Cache.RedisAddr).Info("redis cache enabled")
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
	limiter.StartCleanup(ctx, limiterCleanupInterval, limiterIdle)

	handler := apihttp.NewRouter(apihttp.RouterConfig{
		Auth:              service.NewAuthService(data, hasher, tokens, log),
		Lists:             service.NewListService(data, log),
		Tasks:             service.NewTaskService(data, log),
		Tokens:            tokens,
		Store:             store,
		Logger:            log,
		ExposeErrorDetail: !cfg.IsProduction(),
		AllowedOrigins:    cfg.AllowedOrigins(),
		AuthRateLimiter:   limiter,
		HSTS:              cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// gRPC health-check для оркестратора
	var health *taskgrpc.HealthServer
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			log.WithError(err).WithField("port", cfg.GRPCPort).Fatal("failed to listen for grpc")
		}
		health = taskgrpc.NewHealthServer(store, log)
		go health.Watch(ctx, taskgrpc.DefaultProbeInterval)
		go func() {
			log.WithField("port", cfg.GRPCPort).Info("grpc health server starting")
			if err := health.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		log.WithError(err).Error("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if health != nil {
		health.GracefulStop()
	}
	log.Info("stopped")
}

func openStore(ctx context.Context, db config.DatabaseConfig) (repository.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch db.Driver {
	case config.DriverMongo:
		return repository.NewMongoStore(ctx, db.MongoURI, db.MongoDatabase)
	case config.DriverPostgres:
		return repository.NewPostgresStore(ctx, db.DSN())
	case config.DriverMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", db.Driver)
	}
}
