package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// CartUpdate is a partial update; nil fields are left untouched.
type CartUpdate struct {
	Destination   *string
	Tag           *string
	BucketType    *string
	MaxPackages   *int
	TotalPackages *int
	IsCompleted   *bool
	CompletedAt   *time.Time
	Metadata      datatypes.JSON
}

type CartRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cart *types.Cart) (*types.Cart, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Cart, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Cart, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, update CartUpdate) (*types.Cart, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CountCompleted(ctx context.Context, tx *gorm.DB) (int64, error)
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return &cartRepo{db: db, log: baseLog.With("repo", "CartRepo")}
}

func (cr *cartRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *cartRepo) Create(ctx context.Context, tx *gorm.DB, cart *types.Cart) (*types.Cart, error) {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if err := cr.conn(tx).WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (cr *cartRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Cart, error) {
	var cart types.Cart
	err := cr.conn(tx).WithContext(ctx).
		Preload("Packages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (cr *cartRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Cart, error) {
	var carts []*types.Cart
	err := cr.conn(tx).WithContext(ctx).
		Preload("Packages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Order("created_at DESC").
		Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

func (cr *cartRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, update CartUpdate) (*types.Cart, error) {
	fields := map[string]interface{}{}
	if update.Destination != nil {
		fields["destination"] = *update.Destination
	}
	if update.Tag != nil {
		fields["tag"] = *update.Tag
	}
	if update.BucketType != nil {
		fields["bucket_type"] = *update.BucketType
	}
	if update.MaxPackages != nil {
		fields["max_packages"] = *update.MaxPackages
	}
	if update.TotalPackages != nil {
		fields["total_packages"] = *update.TotalPackages
	}
	if update.IsCompleted != nil {
		fields["is_completed"] = *update.IsCompleted
	}
	if update.CompletedAt != nil {
		fields["completed_at"] = *update.CompletedAt
	}
	if update.Metadata != nil {
		fields["metadata"] = update.Metadata
	}

	conn := cr.conn(tx).WithContext(ctx)
	if len(fields) > 0 {
		res := conn.Model(&types.Cart{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return cr.GetByID(ctx, tx, id)
}

func (cr *cartRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	conn := cr.conn(tx).WithContext(ctx)
	// Explicit child delete keeps the cascade working on SQLite files created
	// without foreign_keys=on.
	if err := conn.Where("cart_id = ?", id).Delete(&types.Package{}).Error; err != nil {
		return err
	}
	res := conn.Where("id = ?", id).Delete(&types.Cart{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (cr *cartRepo) CountCompleted(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := cr.conn(tx).WithContext(ctx).
		Model(&types.Cart{}).
		Where("is_completed = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
