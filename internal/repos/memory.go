package repos

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/types"
)

// MemoryStore is a map-backed implementation of the repo interfaces. It is
// the unit-test double for the gorm repos; the tx argument is ignored
// because there is nothing transactional to join.
type MemoryStore struct {
	mu        sync.RWMutex
	carts     map[uuid.UUID]*types.Cart
	packages  map[uuid.UUID]*types.Package
	operators map[uuid.UUID]*types.Operator
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:     map[uuid.UUID]*types.Cart{},
		packages:  map[uuid.UUID]*types.Package{},
		operators: map[uuid.UUID]*types.Operator{},
	}
}

func (s *MemoryStore) Carts() CartRepo         { return &memCartRepo{s: s} }
func (s *MemoryStore) Packages() PackageRepo   { return &memPackageRepo{s: s} }
func (s *MemoryStore) Operators() OperatorRepo { return &memOperatorRepo{s: s} }

func (s *MemoryStore) cartPackages(cartID uuid.UUID) []types.Package {
	var out []types.Package
	for _, p := range s.packages {
		if p.CartID == cartID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) cartCopy(c *types.Cart) *types.Cart {
	cp := *c
	cp.Packages = s.cartPackages(c.ID)
	return &cp
}

type memCartRepo struct{ s *MemoryStore }

func (r *memCartRepo) Create(ctx context.Context, _ *gorm.DB, cart *types.Cart) (*types.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now()
	}
	stored := *cart
	stored.Packages = nil
	r.s.carts[cart.ID] = &stored
	return r.s.cartCopy(&stored), nil
}

func (r *memCartRepo) GetByID(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*types.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.cartCopy(c), nil
}

func (r *memCartRepo) GetAll(ctx context.Context, _ *gorm.DB) ([]*types.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*types.Cart, 0, len(r.s.carts))
	for _, c := range r.s.carts {
		out = append(out, r.s.cartCopy(c))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memCartRepo) Update(ctx context.Context, _ *gorm.DB, id uuid.UUID, update CartUpdate) (*types.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if update.Destination != nil {
		c.Destination = *update.Destination
	}
	if update.Tag != nil {
		c.Tag = *update.Tag
	}
	if update.BucketType != nil {
		c.BucketType = *update.BucketType
	}
	if update.MaxPackages != nil {
		c.MaxPackages = *update.MaxPackages
	}
	if update.TotalPackages != nil {
		c.TotalPackages = *update.TotalPackages
	}
	if update.IsCompleted != nil {
		c.IsCompleted = *update.IsCompleted
	}
	if update.CompletedAt != nil {
		t := *update.CompletedAt
		c.CompletedAt = &t
	}
	if update.Metadata != nil {
		c.Metadata = update.Metadata
	}
	return r.s.cartCopy(c), nil
}

func (r *memCartRepo) Delete(ctx context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.carts, id)
	for pid, p := range r.s.packages {
		if p.CartID == id {
			delete(r.s.packages, pid)
		}
	}
	return nil
}

func (r *memCartRepo) CountCompleted(ctx context.Context, _ *gorm.DB) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, c := range r.s.carts {
		if c.IsCompleted {
			count++
		}
	}
	return count, nil
}

type memPackageRepo struct{ s *MemoryStore }

func (r *memPackageRepo) Create(ctx context.Context, _ *gorm.DB, pkg *types.Package) (*types.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if pkg.ID == uuid.Nil {
		pkg.ID = uuid.New()
	}
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now()
	}
	stored := *pkg
	r.s.packages[pkg.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memPackageRepo) GetByID(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*types.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPackageRepo) GetByCartID(ctx context.Context, _ *gorm.DB, cartID uuid.UUID) ([]*types.Package, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	pkgs := r.s.cartPackages(cartID)
	out := make([]*types.Package, len(pkgs))
	for i := range pkgs {
		cp := pkgs[i]
		out[i] = &cp
	}
	return out, nil
}

func (r *memPackageRepo) Update(ctx context.Context, _ *gorm.DB, id uuid.UUID, update PackageUpdate) (*types.Package, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if update.Variety != nil {
		p.Variety = *update.Variety
	}
	if update.Length != nil {
		p.Length = *update.Length
	}
	if update.Quantity != nil {
		p.Quantity = *update.Quantity
	}
	cp := *p
	return &cp, nil
}

func (r *memPackageRepo) Delete(ctx context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.packages[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.packages, id)
	return nil
}

type memOperatorRepo struct{ s *MemoryStore }

func (r *memOperatorRepo) Create(ctx context.Context, _ *gorm.DB, op *types.Operator) (*types.Operator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	stored := *op
	r.s.operators[op.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memOperatorRepo) GetByName(ctx context.Context, _ *gorm.DB, name string) (*types.Operator, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, op := range r.s.operators {
		if op.Name == name {
			cp := *op
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOperatorRepo) NameExists(ctx context.Context, _ *gorm.DB, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, op := range r.s.operators {
		if op.Name == name {
			return true, nil
		}
	}
	return false, nil
}
