package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/pkg/pointers"
	"github.com/stemtrack/cartline-backend/internal/repos"
	"github.com/stemtrack/cartline-backend/internal/types"
)

func newTestCartService(t *testing.T) (CartService, *repos.MemoryStore) {
	t.Helper()
	store := repos.NewMemoryStore()
	svc := NewCartService(nil, logger.NewNop(), store.Carts(), store.Packages(), nil, 0)
	return svc, store
}

func mustCreateCart(t *testing.T, svc CartService, setup CartSetup) *types.Cart {
	t.Helper()
	cart, err := svc.CreateCart(context.Background(), setup)
	if err != nil {
		t.Fatalf("CreateCart: %v", err)
	}
	return cart
}

func mustAddPackage(t *testing.T, svc CartService, cartID uuid.UUID, variety string, length, quantity int) *types.Package {
	t.Helper()
	pkg, err := svc.AddPackage(context.Background(), cartID, variety, length, quantity)
	if err != nil {
		t.Fatalf("AddPackage(%s, %d, %d): %v", variety, length, quantity, err)
	}
	return pkg
}

func TestCreateCartDefaults(t *testing.T) {
	svc, _ := newTestCartService(t)

	cart := mustCreateCart(t, svc, CartSetup{Destination: "FloraHolland Aalsmeer", Tag: "Consegna", BucketType: "Pieno"})

	if cart.ID == uuid.Nil {
		t.Fatalf("expected generated cart ID")
	}
	if cart.CartNumber != 1 {
		t.Fatalf("cart number = %d, want 1", cart.CartNumber)
	}
	if cart.MaxPackages != DefaultMaxPackages {
		t.Fatalf("max packages = %d, want %d", cart.MaxPackages, DefaultMaxPackages)
	}
	if cart.TotalPackages != 0 || cart.IsCompleted || cart.CompletedAt != nil {
		t.Fatalf("new cart not empty and open: total=%d completed=%v completedAt=%v",
			cart.TotalPackages, cart.IsCompleted, cart.CompletedAt)
	}
}

func TestCartNumberCountsCompletedCarts(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	first := mustCreateCart(t, svc, CartSetup{Destination: "Veiling Rhein-Maas", MaxPackages: 2})
	if first.CartNumber != 1 {
		t.Fatalf("first cart number = %d, want 1", first.CartNumber)
	}

	// An open cart does not advance the numbering.
	second := mustCreateCart(t, svc, CartSetup{Destination: "Veiling Rhein-Maas", MaxPackages: 2})
	if second.CartNumber != 1 {
		t.Fatalf("second cart number = %d, want 1 (no completions yet)", second.CartNumber)
	}

	mustAddPackage(t, svc, first.ID, "MATTH. WHITE", 60, 2)
	got, err := svc.GetCart(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !got.IsCompleted {
		t.Fatalf("expected first cart to be completed")
	}

	third := mustCreateCart(t, svc, CartSetup{Destination: "Veiling Rhein-Maas", MaxPackages: 2})
	if third.CartNumber != 2 {
		t.Fatalf("third cart number = %d, want 2 (one completion)", third.CartNumber)
	}
}

func TestTotalTracksPackageMutations(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Plantion Ede"})

	a := mustAddPackage(t, svc, cart.ID, "MATTH. PINK", 55, 10)
	b := mustAddPackage(t, svc, cart.ID, "MATTH. YELLOW", 70, 5)

	checkTotal := func(want int) {
		t.Helper()
		got, err := svc.GetCart(ctx, cart.ID)
		if err != nil {
			t.Fatalf("GetCart: %v", err)
		}
		if got.TotalPackages != want {
			t.Fatalf("total = %d, want %d", got.TotalPackages, want)
		}
		sum := 0
		for _, p := range got.Packages {
			sum += p.Quantity
		}
		if sum != got.TotalPackages {
			t.Fatalf("stored total %d does not match package sum %d", got.TotalPackages, sum)
		}
	}
	checkTotal(15)

	if _, err := svc.UpdatePackage(ctx, b.ID, repos.PackageUpdate{Quantity: pointers.Ptr(8)}); err != nil {
		t.Fatalf("UpdatePackage: %v", err)
	}
	checkTotal(18)

	if err := svc.DeletePackage(ctx, a.ID); err != nil {
		t.Fatalf("DeletePackage: %v", err)
	}
	checkTotal(8)

	if err := svc.DeletePackage(ctx, b.ID); err != nil {
		t.Fatalf("DeletePackage: %v", err)
	}
	checkTotal(0)
}

func TestCompletionAtCapacity(t *testing.T) {
	tests := []struct {
		name      string
		quantities []int
		wantTotal int
		wantDone  bool
	}{
		{"one short", []int{40, 31}, 71, false},
		{"exactly at capacity", []int{40, 32}, 72, true},
		{"overflow stored as-is", []int{40, 40}, 80, true},
		{"single oversized package", []int{100}, 100, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestCartService(t)
			ctx := context.Background()
			cart := mustCreateCart(t, svc, CartSetup{Destination: "Royal FloraHolland Naaldwijk"})

			for _, q := range tc.quantities {
				mustAddPackage(t, svc, cart.ID, "MATTH. WHITE", 60, q)
			}

			got, err := svc.GetCart(ctx, cart.ID)
			if err != nil {
				t.Fatalf("GetCart: %v", err)
			}
			if got.TotalPackages != tc.wantTotal {
				t.Fatalf("total = %d, want %d", got.TotalPackages, tc.wantTotal)
			}
			if got.IsCompleted != tc.wantDone {
				t.Fatalf("completed = %v, want %v", got.IsCompleted, tc.wantDone)
			}
			if tc.wantDone && got.CompletedAt == nil {
				t.Fatalf("completed cart missing completion timestamp")
			}
			if !tc.wantDone && got.CompletedAt != nil {
				t.Fatalf("open cart has completion timestamp %v", got.CompletedAt)
			}
		})
	}
}

func TestCompletionIsMonotonic(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Veiling Holambra", MaxPackages: 10})
	pkg := mustAddPackage(t, svc, cart.ID, "MATTH. LAVENDER", 65, 10)

	sealed, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !sealed.IsCompleted || sealed.CompletedAt == nil {
		t.Fatalf("cart should have sealed at capacity")
	}
	sealedAt := *sealed.CompletedAt

	// Dropping below capacity must not reopen the cart or move the stamp.
	if err := svc.DeletePackage(ctx, pkg.ID); err != nil {
		t.Fatalf("DeletePackage: %v", err)
	}
	after, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !after.IsCompleted {
		t.Fatalf("completion flag reset after delete")
	}
	if after.TotalPackages != 0 {
		t.Fatalf("total = %d after deleting only package, want 0", after.TotalPackages)
	}
	if after.CompletedAt == nil || !after.CompletedAt.Equal(sealedAt) {
		t.Fatalf("completion timestamp changed: %v -> %v", sealedAt, after.CompletedAt)
	}
}

func TestSealedCartRejectsNewPackages(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Plantion Ede", MaxPackages: 5})
	mustAddPackage(t, svc, cart.ID, "MATTH. APRICOT", 50, 5)

	if _, err := svc.AddPackage(ctx, cart.ID, "MATTH. WHITE", 60, 1); !errors.Is(err, ErrCartCompleted) {
		t.Fatalf("AddPackage on sealed cart = %v, want ErrCartCompleted", err)
	}

	got, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if got.TotalPackages != 5 || len(got.Packages) != 1 {
		t.Fatalf("rejected add mutated cart: total=%d packages=%d", got.TotalPackages, len(got.Packages))
	}
}

func TestPackageEditCanSealCart(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Veiling Rhein-Maas", MaxPackages: 20})
	pkg := mustAddPackage(t, svc, cart.ID, "MATTH. PURPLE", 75, 12)

	if _, err := svc.UpdatePackage(ctx, pkg.ID, repos.PackageUpdate{Quantity: pointers.Ptr(20)}); err != nil {
		t.Fatalf("UpdatePackage: %v", err)
	}

	got, err := svc.GetCart(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !got.IsCompleted || got.TotalPackages != 20 {
		t.Fatalf("edit to capacity: completed=%v total=%d", got.IsCompleted, got.TotalPackages)
	}
}

func TestCapacityChangeCanSealCart(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "FloraHolland Aalsmeer"})
	mustAddPackage(t, svc, cart.ID, "MATTH. WHITE", 60, 30)

	updated, err := svc.UpdateCart(ctx, cart.ID, repos.CartUpdate{MaxPackages: pointers.Ptr(30)})
	if err != nil {
		t.Fatalf("UpdateCart: %v", err)
	}
	if !updated.IsCompleted {
		t.Fatalf("lowering capacity to the current total should seal the cart")
	}
}

func TestUpdateCartIgnoresDerivedFields(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Plantion Ede"})
	mustAddPackage(t, svc, cart.ID, "MATTH. CREAM", 55, 3)

	dest := "Veiling Holambra"
	updated, err := svc.UpdateCart(ctx, cart.ID, repos.CartUpdate{
		Destination:   pointers.Ptr(dest),
		TotalPackages: pointers.Ptr(999),
		IsCompleted:   pointers.Ptr(true),
	})
	if err != nil {
		t.Fatalf("UpdateCart: %v", err)
	}
	if updated.Destination != dest {
		t.Fatalf("destination = %q, want %q", updated.Destination, dest)
	}
	if updated.TotalPackages != 3 {
		t.Fatalf("total = %d, derived field must be recomputed not set", updated.TotalPackages)
	}
	if updated.IsCompleted {
		t.Fatalf("completion flag set through a plain cart update")
	}
}

func TestAddPackageValidation(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Plantion Ede"})

	for _, qty := range []int{0, -3} {
		if _, err := svc.AddPackage(ctx, cart.ID, "MATTH. WHITE", 60, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("AddPackage quantity=%d: %v, want ErrInvalidQuantity", qty, err)
		}
	}

	if _, err := svc.AddPackage(ctx, uuid.New(), "MATTH. WHITE", 60, 1); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("AddPackage on missing cart: %v, want ErrCartNotFound", err)
	}
}

func TestUpdatePackageValidation(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	if _, err := svc.UpdatePackage(ctx, uuid.New(), repos.PackageUpdate{Quantity: pointers.Ptr(0)}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("UpdatePackage quantity=0: %v, want ErrInvalidQuantity", err)
	}
	if _, err := svc.UpdatePackage(ctx, uuid.New(), repos.PackageUpdate{Quantity: pointers.Ptr(1)}); !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("UpdatePackage missing package: %v, want ErrPackageNotFound", err)
	}
}

func TestDeleteCartRemovesPackages(t *testing.T) {
	svc, store := newTestCartService(t)
	ctx := context.Background()

	cart := mustCreateCart(t, svc, CartSetup{Destination: "Veiling Rhein-Maas"})
	pkg := mustAddPackage(t, svc, cart.ID, "MATTH. WHITE", 60, 4)

	if err := svc.DeleteCart(ctx, cart.ID); err != nil {
		t.Fatalf("DeleteCart: %v", err)
	}
	if _, err := svc.GetCart(ctx, cart.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("GetCart after delete: %v, want ErrCartNotFound", err)
	}
	if _, err := store.Packages().GetByID(ctx, nil, pkg.ID); err == nil {
		t.Fatalf("package survived cart deletion")
	}

	if err := svc.DeleteCart(ctx, cart.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("second DeleteCart: %v, want ErrCartNotFound", err)
	}
}

func TestGetAllCartsNewestFirst(t *testing.T) {
	svc, _ := newTestCartService(t)
	ctx := context.Background()

	mustCreateCart(t, svc, CartSetup{Destination: "a"})
	mustCreateCart(t, svc, CartSetup{Destination: "b"})
	mustCreateCart(t, svc, CartSetup{Destination: "c"})

	carts, err := svc.GetAllCarts(ctx)
	if err != nil {
		t.Fatalf("GetAllCarts: %v", err)
	}
	if len(carts) != 3 {
		t.Fatalf("len = %d, want 3", len(carts))
	}
	for i := 1; i < len(carts); i++ {
		if carts[i].CreatedAt.After(carts[i-1].CreatedAt) {
			t.Fatalf("carts not ordered newest first at index %d", i)
		}
	}
}
