package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/warp/hr-engine/api"
	"github.com/warp/hr-engine/award"
	"github.com/warp/hr-engine/cache"
	"github.com/warp/hr-engine/config"
	"github.com/warp/hr-engine/logging"
	"github.com/warp/hr-engine/metrics"
	"github.com/warp/hr-engine/store/sqlite"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *sqlite.Store
	metrics   *metrics.Manager
	generator *award.Generator
	handler   *api.Handler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewManager()

	gen := award.NewGenerator(store, store, logger)
	gen.Tiers = cfg.Award.Tiers
	gen.Source = award.ScoreSource(cfg.Award.ScoreSource)
	gen.Metrics = m

	auth, err := api.NewAuth(api.AuthOptions{
		Password: cfg.AdminPassword,
		Secret:   cfg.JWTSecret,
		TTL:      cfg.TokenTTL,
		Rate:     cfg.VerifyRate,
	})
	if err != nil {
		store.Close()
		logger.Sync()
		return nil, err
	}

	h := api.NewHandler(store, gen, logger)
	h.Auth = auth
	h.Metrics = m
	h.CacheTTL = cfg.CacheTTL

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: "hr",
		})
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			h.Cache.Close()
			h.Cache = rc
			logger.Info("statistics cache on redis", zap.String("addr", cfg.RedisAddr))
		}
	}

	if cfg.AdminPassword == "" {
		logger.Warn("admin password not set, admin-only operations are unavailable")
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		metrics:   m,
		generator: gen,
		handler:   h,
	}, nil
}

func (a *app) Close() {
	if err := a.handler.Cache.Close(); err != nil {
		a.logger.Warn("cache close failed", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("database close failed", zap.Error(err))
	}
	a.logger.Sync()
}
