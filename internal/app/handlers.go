package app

import (
	"github.com/stemtrack/cartline-backend/internal/catalog"
	cartlinehttp "github.com/stemtrack/cartline-backend/internal/http"
	httpH "github.com/stemtrack/cartline-backend/internal/http/handlers"
	httpMW "github.com/stemtrack/cartline-backend/internal/http/middleware"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	Catalog *httpH.CatalogHandler
	Cart    *httpH.CartHandler
	Package *httpH.PackageHandler
	Export  *httpH.ExportHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, cat catalog.Catalog) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Auth:    httpH.NewAuthHandler(services.Auth, cfg.AllowRegister),
		Catalog: httpH.NewCatalogHandler(cat),
		Cart:    httpH.NewCartHandler(log, services.Cart),
		Package: httpH.NewPackageHandler(log, services.Cart, cat),
		Export:  httpH.NewExportHandler(log, services.Export),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, handlers Handlers, middleware Middleware) *cartlinehttp.Server {
	return cartlinehttp.NewServer(cartlinehttp.RouterConfig{
		Log:            log,
		AuthMiddleware: middleware.Auth,
		HealthHandler:  handlers.Health,
		AuthHandler:    handlers.Auth,
		CatalogHandler: handlers.Catalog,
		CartHandler:    handlers.Cart,
		PackageHandler: handlers.Package,
		ExportHandler:  handlers.Export,
	})
}
