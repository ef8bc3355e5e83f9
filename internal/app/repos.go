package app

import (
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/repos"
)

type Repos struct {
	Cart     repos.CartRepo
	Package  repos.PackageRepo
	Operator repos.OperatorRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Cart:     repos.NewCartRepo(db, log),
		Package:  repos.NewPackageRepo(db, log),
		Operator: repos.NewOperatorRepo(db, log),
	}
}
