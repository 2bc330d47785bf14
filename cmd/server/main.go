package main

import (
	"context"

	"github.com/campusmatch/matchengine/internal/app"
	"github.com/campusmatch/matchengine/internal/cache"
	"github.com/campusmatch/matchengine/internal/config"
	"github.com/campusmatch/matchengine/internal/db"
	"github.com/campusmatch/matchengine/internal/logger"
	"github.com/campusmatch/matchengine/internal/server"
	"github.com/campusmatch/matchengine/internal/service/crush"
	"github.com/campusmatch/matchengine/internal/service/discover"
	"github.com/campusmatch/matchengine/internal/service/engage"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log, cfg)

	registrars := []server.Registrar{
		discover.NewRegistrar(appCtx),
		engage.NewRegistrar(appCtx),
		crush.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
