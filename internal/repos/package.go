package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// PackageUpdate is a partial update; CartID is deliberately absent because
// a package never moves between carts.
type PackageUpdate struct {
	Variety  *string
	Length   *int
	Quantity *int
}

type PackageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pkg *types.Package) (*types.Package, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Package, error)
	GetByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]*types.Package, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, update PackageUpdate) (*types.Package, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type packageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPackageRepo(db *gorm.DB, baseLog *logger.Logger) PackageRepo {
	return &packageRepo{db: db, log: baseLog.With("repo", "PackageRepo")}
}

func (pr *packageRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return pr.db
}

func (pr *packageRepo) Create(ctx context.Context, tx *gorm.DB, pkg *types.Package) (*types.Package, error) {
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	if err := pr.conn(tx).WithContext(ctx).Create(pkg).Error; err != nil {
		return nil, err
	}
	return pkg, nil
}

func (pr *packageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Package, error) {
	var pkg types.Package
	if err := pr.conn(tx).WithContext(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (pr *packageRepo) GetByCartID(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]*types.Package, error) {
	var pkgs []*types.Package
	err := pr.conn(tx).WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at DESC").
		Find(&pkgs).Error
	if err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (pr *packageRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, update PackageUpdate) (*types.Package, error) {
	fields := map[string]interface{}{}
	if update.Variety != nil {
		fields["variety"] = *update.Variety
	}
	if update.Length != nil {
		fields["length"] = *update.Length
	}
	if update.Quantity != nil {
		fields["quantity"] = *update.Quantity
	}

	conn := pr.conn(tx).WithContext(ctx)
	if len(fields) > 0 {
		res := conn.Model(&types.Package{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return pr.GetByID(ctx, tx, id)
}

func (pr *packageRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := pr.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Package{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
