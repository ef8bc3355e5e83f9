package app

import (
	"time"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/utils"
)

type Config struct {
	Port     string
	DBDriver string

	JWTSecretKey  string
	TokenTTL      time.Duration
	AllowRegister bool

	DefaultMaxPackages int
	CatalogPath        string
	SnapshotTTL        time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	tokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 43200, log)
	return Config{
		Port:               utils.GetEnv("PORT", "8080", log),
		DBDriver:           utils.GetEnv("DB_DRIVER", "postgres", log),
		JWTSecretKey:       utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		TokenTTL:           time.Duration(tokenTTLSeconds) * time.Second,
		AllowRegister:      utils.GetEnvAsBool("ALLOW_REGISTER", true, log),
		DefaultMaxPackages: utils.GetEnvAsInt("CART_CAPACITY_DEFAULT", 72, log),
		CatalogPath:        utils.GetEnv("CATALOG_PATH", "", log),
		SnapshotTTL:        utils.GetEnvAsMillis("SNAPSHOT_TTL_MS", 2*time.Second, log),
	}
}
