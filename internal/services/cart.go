package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/cache"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/repos"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// DefaultMaxPackages is the cart capacity used when a setup does not name one.
const DefaultMaxPackages = 72

// CartSetup carries the operator-chosen configuration of a cart. The same
// values are copied onto the successor cart when a cart seals.
type CartSetup struct {
	Destination string `json:"destination"`
	Tag         string `json:"tag"`
	BucketType  string `json:"bucketType"`
	MaxPackages int    `json:"maxPackages,omitempty"`
}

// CartService owns the cart aggregate: the stored total quantity and the
// completion flag are recomputed inside the same transaction as every
// package mutation, so they can never drift from the package set.
type CartService interface {
	CreateCart(ctx context.Context, setup CartSetup) (*types.Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (*types.Cart, error)
	GetAllCarts(ctx context.Context) ([]*types.Cart, error)
	UpdateCart(ctx context.Context, id uuid.UUID, update repos.CartUpdate) (*types.Cart, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error

	AddPackage(ctx context.Context, cartID uuid.UUID, variety string, length, quantity int) (*types.Package, error)
	UpdatePackage(ctx context.Context, packageID uuid.UUID, update repos.PackageUpdate) (*types.Package, error)
	DeletePackage(ctx context.Context, packageID uuid.UUID) error
	GetPackagesByCart(ctx context.Context, cartID uuid.UUID) ([]*types.Package, error)
}

type cartService struct {
	db          *gorm.DB
	log         *logger.Logger
	cartRepo    repos.CartRepo
	packageRepo repos.PackageRepo
	snapshots   cache.SnapshotCache
	defaultMax  int
}

// NewCartService accepts a nil db (the in-memory repos need no transaction)
// and a nil snapshot cache (caching off).
func NewCartService(db *gorm.DB, log *logger.Logger, cartRepo repos.CartRepo, packageRepo repos.PackageRepo, snapshots cache.SnapshotCache, defaultMax int) CartService {
	if defaultMax <= 0 {
		defaultMax = DefaultMaxPackages
	}
	return &cartService{
		db:          db,
		log:         log.With("service", "CartService"),
		cartRepo:    cartRepo,
		packageRepo: packageRepo,
		snapshots:   snapshots,
		defaultMax:  defaultMax,
	}
}

// withTx runs fn inside a transaction when a gorm handle is present. The
// memory store ignores the tx argument, so fn(nil) is equivalent there.
func (cs *cartService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if cs.db == nil {
		return fn(nil)
	}
	return cs.db.WithContext(ctx).Transaction(fn)
}

func (cs *cartService) CreateCart(ctx context.Context, setup CartSetup) (*types.Cart, error) {
	maxPackages := setup.MaxPackages
	if maxPackages <= 0 {
		maxPackages = cs.defaultMax
	}

	var created *types.Cart
	err := cs.withTx(ctx, func(tx *gorm.DB) error {
		completed, err := cs.cartRepo.CountCompleted(ctx, tx)
		if err != nil {
			return fmt.Errorf("count completed carts: %w", err)
		}
		cart := &types.Cart{
			CartNumber:  int(completed) + 1,
			Destination: setup.Destination,
			Tag:         setup.Tag,
			BucketType:  setup.BucketType,
			MaxPackages: maxPackages,
			CreatedAt:   time.Now(),
		}
		created, err = cs.cartRepo.Create(ctx, tx, cart)
		if err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.log.Info("Cart created",
		"cart_id", created.ID,
		"cart_number", created.CartNumber,
		"destination", created.Destination,
		"max_packages", created.MaxPackages,
	)
	return created, nil
}

func (cs *cartService) GetCart(ctx context.Context, id uuid.UUID) (*types.Cart, error) {
	if cs.snapshots != nil {
		if cart, ok := cs.snapshots.Get(ctx, id); ok {
			return cart, nil
		}
	}
	cart, err := cs.cartRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cs.snapshots != nil {
		cs.snapshots.Set(ctx, cart)
	}
	return cart, nil
}

func (cs *cartService) GetAllCarts(ctx context.Context) ([]*types.Cart, error) {
	carts, err := cs.cartRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get all carts: %w", err)
	}
	return carts, nil
}

func (cs *cartService) UpdateCart(ctx context.Context, id uuid.UUID, update repos.CartUpdate) (*types.Cart, error) {
	// Derived fields are owned by the recompute; a plain cart update must
	// not touch them.
	update.TotalPackages = nil
	update.IsCompleted = nil
	update.CompletedAt = nil

	var cart *types.Cart
	err := cs.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		cart, err = cs.cartRepo.Update(ctx, tx, id, update)
		if err != nil {
			return err
		}
		// A capacity change can push an open cart over the line.
		cart, err = cs.recompute(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("update cart: %w", err)
	}
	cs.invalidate(ctx, id)
	return cart, nil
}

func (cs *cartService) DeleteCart(ctx context.Context, id uuid.UUID) error {
	err := cs.withTx(ctx, func(tx *gorm.DB) error {
		return cs.cartRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return fmt.Errorf("delete cart: %w", err)
	}
	cs.invalidate(ctx, id)
	cs.log.Info("Cart deleted", "cart_id", id)
	return nil
}

func (cs *cartService) AddPackage(ctx context.Context, cartID uuid.UUID, variety string, length, quantity int) (*types.Package, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var created *types.Package
	err := cs.withTx(ctx, func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetByID(ctx, tx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartNotFound
			}
			return fmt.Errorf("get cart: %w", err)
		}
		if cart.IsCompleted {
			return ErrCartCompleted
		}

		pkg := &types.Package{
			CartID:    cartID,
			Variety:   variety,
			Length:    length,
			Quantity:  quantity,
			CreatedAt: time.Now(),
		}
		created, err = cs.packageRepo.Create(ctx, tx, pkg)
		if err != nil {
			return fmt.Errorf("create package: %w", err)
		}

		_, err = cs.recompute(ctx, tx, cartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cs.invalidate(ctx, cartID)
	cs.log.Info("Package added",
		"cart_id", cartID,
		"package_id", created.ID,
		"variety", variety,
		"length", length,
		"quantity", quantity,
	)
	return created, nil
}

func (cs *cartService) UpdatePackage(ctx context.Context, packageID uuid.UUID, update repos.PackageUpdate) (*types.Package, error) {
	if update.Quantity != nil && *update.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var updated *types.Package
	err := cs.withTx(ctx, func(tx *gorm.DB) error {
		var err error
		updated, err = cs.packageRepo.Update(ctx, tx, packageID, update)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return fmt.Errorf("update package: %w", err)
		}
		_, err = cs.recompute(ctx, tx, updated.CartID)
		return err
	})
	if err != nil {
		return nil, err
	}

	cs.invalidate(ctx, updated.CartID)
	return updated, nil
}

func (cs *cartService) DeletePackage(ctx context.Context, packageID uuid.UUID) error {
	var cartID uuid.UUID
	err := cs.withTx(ctx, func(tx *gorm.DB) error {
		pkg, err := cs.packageRepo.GetByID(ctx, tx, packageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return fmt.Errorf("get package: %w", err)
		}
		cartID = pkg.CartID

		if err := cs.packageRepo.Delete(ctx, tx, packageID); err != nil {
			return fmt.Errorf("delete package: %w", err)
		}

		_, err = cs.recompute(ctx, tx, cartID)
		return err
	})
	if err != nil {
		return err
	}

	cs.invalidate(ctx, cartID)
	return nil
}

func (cs *cartService) GetPackagesByCart(ctx context.Context, cartID uuid.UUID) ([]*types.Package, error) {
	pkgs, err := cs.packageRepo.GetByCartID(ctx, nil, cartID)
	if err != nil {
		return nil, fmt.Errorf("get packages: %w", err)
	}
	return pkgs, nil
}

// recompute re-derives total_packages from the package set and seals the
// cart the first time the total reaches capacity. Completion is monotonic:
// a later delete that drops the total below capacity never reopens the
// cart, the flag records that the threshold was crossed. Overflow above
// capacity is stored as-is; headroom checks are the caller's concern.
func (cs *cartService) recompute(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (*types.Cart, error) {
	cart, err := cs.cartRepo.GetByID(ctx, tx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("recompute get cart: %w", err)
	}

	pkgs, err := cs.packageRepo.GetByCartID(ctx, tx, cartID)
	if err != nil {
		return nil, fmt.Errorf("recompute get packages: %w", err)
	}

	total := 0
	for _, p := range pkgs {
		total += p.Quantity
	}

	update := repos.CartUpdate{TotalPackages: &total}
	if total >= cart.MaxPackages && !cart.IsCompleted {
		completed := true
		now := time.Now()
		update.IsCompleted = &completed
		update.CompletedAt = &now
		cs.log.Info("Cart completed",
			"cart_id", cartID,
			"cart_number", cart.CartNumber,
			"total_packages", total,
			"max_packages", cart.MaxPackages,
		)
	}

	updated, err := cs.cartRepo.Update(ctx, tx, cartID, update)
	if err != nil {
		return nil, fmt.Errorf("recompute update cart: %w", err)
	}
	return updated, nil
}

func (cs *cartService) invalidate(ctx context.Context, cartID uuid.UUID) {
	if cs.snapshots != nil {
		cs.snapshots.Invalidate(ctx, cartID)
	}
}
