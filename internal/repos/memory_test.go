package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stemtrack/cartline-backend/internal/pkg/pointers"
	"github.com/stemtrack/cartline-backend/internal/types"
)

func TestMemoryCartRepoRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	carts := store.Carts()
	ctx := context.Background()

	created, err := carts.Create(ctx, nil, &types.Cart{
		CartNumber:  1,
		Destination: "AALSMEER (N.11)",
		MaxPackages: 72,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("Create did not assign an ID")
	}

	got, err := carts.GetByID(ctx, nil, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Destination != "AALSMEER (N.11)" || got.MaxPackages != 72 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.Destination = "changed locally"
	again, err := carts.GetByID(ctx, nil, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if again.Destination != "AALSMEER (N.11)" {
		t.Fatalf("store shares memory with returned carts")
	}

	if _, err := carts.GetByID(ctx, nil, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing cart = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestMemoryCartRepoUpdateAppliesOnlySetFields(t *testing.T) {
	store := NewMemoryStore()
	carts := store.Carts()
	ctx := context.Background()

	created, err := carts.Create(ctx, nil, &types.Cart{Destination: "orig", Tag: "TAG5 (GIALLO)", MaxPackages: 72})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dest := "NAALDWIJK (N.10)"
	updated, err := carts.Update(ctx, nil, created.ID, CartUpdate{Destination: pointers.Ptr(dest), TotalPackages: pointers.Ptr(12)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Destination != dest || updated.TotalPackages != 12 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Tag != "TAG5 (GIALLO)" || updated.MaxPackages != 72 {
		t.Fatalf("unset fields changed: %+v", updated)
	}

	if _, err := carts.Update(ctx, nil, uuid.New(), CartUpdate{Destination: pointers.Ptr(dest)}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("update missing cart = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestMemoryCartDeleteCascades(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	cart, err := store.Carts().Create(ctx, nil, &types.Cart{MaxPackages: 72})
	if err != nil {
		t.Fatalf("Create cart: %v", err)
	}
	pkg, err := store.Packages().Create(ctx, nil, &types.Package{CartID: cart.ID, Variety: "MATTH GEM", Length: 60, Quantity: 5})
	if err != nil {
		t.Fatalf("Create package: %v", err)
	}

	if err := store.Carts().Delete(ctx, nil, cart.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Packages().GetByID(ctx, nil, pkg.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("package survived cart deletion: %v", err)
	}
	if err := store.Carts().Delete(ctx, nil, cart.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second delete = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestMemoryPackagesNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	cart, err := store.Carts().Create(ctx, nil, &types.Cart{MaxPackages: 72})
	if err != nil {
		t.Fatalf("Create cart: %v", err)
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		_, err := store.Packages().Create(ctx, nil, &types.Package{
			CartID:    cart.ID,
			Variety:   "MATTH WHITE",
			Length:    60,
			Quantity:  i + 1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Create package: %v", err)
		}
	}

	pkgs, err := store.Packages().GetByCartID(ctx, nil, cart.ID)
	if err != nil {
		t.Fatalf("GetByCartID: %v", err)
	}
	if len(pkgs) != 3 {
		t.Fatalf("len = %d, want 3", len(pkgs))
	}
	for i := 1; i < len(pkgs); i++ {
		if pkgs[i].CreatedAt.After(pkgs[i-1].CreatedAt) {
			t.Fatalf("packages not ordered newest first")
		}
	}

	loaded, err := store.Carts().GetByID(ctx, nil, cart.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(loaded.Packages) != 3 {
		t.Fatalf("cart loaded %d packages, want 3", len(loaded.Packages))
	}
}

func TestMemoryCountCompleted(t *testing.T) {
	store := NewMemoryStore()
	carts := store.Carts()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cart, err := carts.Create(ctx, nil, &types.Cart{MaxPackages: 72})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if i < 2 {
			if _, err := carts.Update(ctx, nil, cart.ID, CartUpdate{IsCompleted: pointers.Ptr(true)}); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}

	count, err := carts.CountCompleted(ctx, nil)
	if err != nil {
		t.Fatalf("CountCompleted: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestMemoryOperatorRepo(t *testing.T) {
	store := NewMemoryStore()
	ops := store.Operators()
	ctx := context.Background()

	created, err := ops.Create(ctx, nil, &types.Operator{Name: "mario", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := ops.GetByName(ctx, nil, "mario")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("GetByName returned wrong operator")
	}

	if _, err := ops.GetByName(ctx, nil, "luigi"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing operator = %v, want gorm.ErrRecordNotFound", err)
	}

	exists, err := ops.NameExists(ctx, nil, "mario")
	if err != nil || !exists {
		t.Fatalf("NameExists(mario) = %v, %v", exists, err)
	}
	exists, err = ops.NameExists(ctx, nil, "luigi")
	if err != nil || exists {
		t.Fatalf("NameExists(luigi) = %v, %v", exists, err)
	}
}
