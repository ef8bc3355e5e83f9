package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/cache"
	"github.com/stemtrack/cartline-backend/internal/catalog"
	"github.com/stemtrack/cartline-backend/internal/db"
	cartlinehttp "github.com/stemtrack/cartline-backend/internal/http"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Catalog  catalog.Catalog
	Repos    Repos
	Services Services
	Server   *cartlinehttp.Server

	snapshots cache.SnapshotCache
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	theDB, err := openDatabase(cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// Snapshot cache is optional: no REDIS_ADDR means no caching.
	var snapshots cache.SnapshotCache
	if os.Getenv("REDIS_ADDR") != "" {
		snapshots, err = cache.NewSnapshotCache(log, cfg.SnapshotTTL)
		if err != nil {
			log.Warn("Snapshot cache unavailable, continuing without it", "error", err)
			snapshots = nil
		}
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, snapshots)
	handlerset := wireHandlers(log, cfg, serviceset, cat)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, handlerset, middleware)

	return &App{
		Log:       log,
		DB:        theDB,
		Cfg:       cfg,
		Catalog:   cat,
		Repos:     reposet,
		Services:  serviceset,
		Server:    server,
		snapshots: snapshots,
	}, nil
}

func openDatabase(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		svc, err := db.NewSQLiteService(log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		if err := svc.AutoMigrateAll(); err != nil {
			return nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		return svc.DB(), nil
	default:
		svc, err := db.NewPostgresService(log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := svc.AutoMigrateAll(); err != nil {
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		return svc.DB(), nil
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.snapshots != nil {
		_ = a.snapshots.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
