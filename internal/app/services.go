package app

import (
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/cache"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/services"
)

type Services struct {
	Cart   services.CartService
	Export services.ExportService
	Auth   services.AuthService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, snapshots cache.SnapshotCache) Services {
	log.Info("Wiring services...")
	cartService := services.NewCartService(db, log, reposet.Cart, reposet.Package, snapshots, cfg.DefaultMaxPackages)
	return Services{
		Cart:   cartService,
		Export: services.NewExportService(log, cartService),
		Auth:   services.NewAuthService(db, log, reposet.Operator, cfg.JWTSecretKey, cfg.TokenTTL),
	}
}
