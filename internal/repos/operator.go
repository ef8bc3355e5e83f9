package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/types"
)

type OperatorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, op *types.Operator) (*types.Operator, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Operator, error)
	NameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error)
}

type operatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOperatorRepo(db *gorm.DB, baseLog *logger.Logger) OperatorRepo {
	return &operatorRepo{db: db, log: baseLog.With("repo", "OperatorRepo")}
}

func (or *operatorRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return or.db
}

func (or *operatorRepo) Create(ctx context.Context, tx *gorm.DB, op *types.Operator) (*types.Operator, error) {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if err := or.conn(tx).WithContext(ctx).Create(op).Error; err != nil {
		return nil, err
	}
	return op, nil
}

func (or *operatorRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Operator, error) {
	var op types.Operator
	if err := or.conn(tx).WithContext(ctx).First(&op, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (or *operatorRepo) NameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	var count int64
	err := or.conn(tx).WithContext(ctx).
		Model(&types.Operator{}).
		Where("name = ?", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
