package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/types"
	"github.com/stemtrack/cartline-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	port := utils.GetEnv("POSTGRES_PORT", "5432", log)
	user := utils.GetEnv("POSTGRES_USER", "postgres", log)
	password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	name := utils.GetEnv("POSTGRES_NAME", "cartline", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := autoMigrate(s.db); err != nil {
		return err
	}
	// AutoMigrate runs with FK generation disabled; the one constraint that
	// matters (cascading package delete) is added explicitly.
	if err := s.db.Exec(`
		ALTER TABLE "packages"
		DROP CONSTRAINT IF EXISTS "fk_packages_cart_id"
	`).Error; err != nil {
		return fmt.Errorf("drop fk_packages_cart_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "packages"
		ADD CONSTRAINT "fk_packages_cart_id"
		FOREIGN KEY ("cart_id")
		REFERENCES "carts"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("add fk_packages_cart_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func autoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Operator{},
		&types.Cart{},
		&types.Package{},
	)
}
