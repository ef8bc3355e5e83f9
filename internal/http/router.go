package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/stemtrack/cartline-backend/internal/http/handlers"
	httpMW "github.com/stemtrack/cartline-backend/internal/http/middleware"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler  *httpH.HealthHandler
	AuthHandler    *httpH.AuthHandler
	CatalogHandler *httpH.CatalogHandler
	CartHandler    *httpH.CartHandler
	PackageHandler *httpH.PackageHandler
	ExportHandler  *httpH.ExportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.CatalogHandler != nil {
			protected.GET("/catalog", cfg.CatalogHandler.GetCatalog)
		}

		if cfg.CartHandler != nil {
			protected.GET("/carts", cfg.CartHandler.ListCarts)
			protected.GET("/carts/:id", cfg.CartHandler.GetCart)
			protected.POST("/carts", cfg.CartHandler.CreateCart)
			protected.PATCH("/carts/:id", cfg.CartHandler.UpdateCart)
			protected.DELETE("/carts/:id", cfg.CartHandler.DeleteCart)
			protected.GET("/carts/:id/packages", cfg.CartHandler.ListCartPackages)
		}

		if cfg.PackageHandler != nil {
			protected.POST("/packages", cfg.PackageHandler.CreatePackage)
			protected.PATCH("/packages/:id", cfg.PackageHandler.UpdatePackage)
			protected.DELETE("/packages/:id", cfg.PackageHandler.DeletePackage)
		}

		if cfg.ExportHandler != nil {
			protected.GET("/export/excel", cfg.ExportHandler.ExportExcel)
		}
	}

	return r
}
