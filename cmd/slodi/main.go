package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/slodi/slodi/internal/app"
	"github.com/slodi/slodi/internal/authn"
	"github.com/slodi/slodi/internal/authz"
	"github.com/slodi/slodi/internal/groups"
	"github.com/slodi/slodi/internal/lookup"
	"github.com/slodi/slodi/internal/observability"
	"github.com/slodi/slodi/internal/platform/cache"
	"github.com/slodi/slodi/internal/platform/db"
	"github.com/slodi/slodi/internal/tags"
	"github.com/slodi/slodi/internal/users"
	"github.com/slodi/slodi/internal/workspaces"
	"github.com/slodi/slodi/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	var store lookup.Store
	var flushEnqueuer workspaces.FlushEnqueuer
	if cfg.CacheBackend == "redis" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store = lookup.NewRedisStore(redisClient)

		jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		flushEnqueuer = jobClient
	} else {
		store = lookup.NewMemoryStore()
	}

	userCache := lookup.NewUserCache(store, cfg.CacheUserTTL, logger, metrics)
	membershipCache := lookup.NewMembershipCache(store, cfg.CacheMembershipTTL, logger, metrics)
	tagCache := lookup.NewTagListCache(store, cfg.CacheTagsTTL, logger, metrics)

	keys := authn.NewKeyProvider(cfg.Auth0Domain, cfg.JWKSTTL, cfg.Auth0Timeout, logger)
	keys.SetRecorder(metrics)
	if err := keys.Warm(ctx); err != nil {
		logger.Warn("jwks warmup", slog.Any("error", err))
	}
	verifier := authn.NewVerifier(logger, keys, cfg.Auth0Domain, cfg.Auth0Audience, cfg.Auth0Algorithms)
	profiles := authn.NewProfileClient(cfg.Auth0Domain, cfg.Auth0Timeout)

	userService := users.NewService(users.NewRepository(pool))
	workspaceService := workspaces.NewService(logger, workspaces.NewRepository(pool), membershipCache, flushEnqueuer)
	groupService := groups.NewService(groups.NewRepository(pool))
	tagService := tags.NewService(tags.NewRepository(pool), tagCache)

	access := authz.New(authz.Config{
		Logger:           logger,
		Verifier:         verifier,
		Profiles:         profiles,
		Users:            userService,
		WorkspaceMembers: workspaceService,
		GroupMembers:     groupService,
		UserCache:        userCache,
		MembershipCache:  membershipCache,
		Metrics:          metrics,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Access:            access,
		UsersHandler:      users.NewHandler(logger, userService),
		TagsHandler:       tags.NewHandler(logger, tagService),
		WorkspacesHandler: workspaces.NewHandler(logger, workspaceService, access),
		GroupsHandler:     groups.NewHandler(logger, groupService, access),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
