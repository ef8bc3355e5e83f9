package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/utils"
)

// SQLiteService backs the same repos as Postgres for local runs and
// integration tests (DB_DRIVER=sqlite, SQLITE_PATH=:memory: works too).
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(log *logger.Logger) (*SQLiteService, error) {
	serviceLog := log.With("service", "SQLiteService")

	path := utils.GetEnv("SQLITE_PATH", "data/cartline.db", log)

	dsn := path + "?_foreign_keys=on"
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	}

	serviceLog.Info("Opening SQLite database...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	return &SQLiteService{db: gdb, log: serviceLog}, nil
}

func (s *SQLiteService) AutoMigrateAll() error {
	s.log.Info("Auto migrating sqlite tables...")
	return autoMigrate(s.db)
}

func (s *SQLiteService) DB() *gorm.DB {
	return s.db
}
