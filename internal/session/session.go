package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/services"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// ErrActiveCartHasPackages is returned by Reset when the active cart still
// holds packages and force is false. Nothing is lost server-side either way;
// the confirmation protects the operator from navigating away by accident.
var ErrActiveCartHasPackages = errors.New("active cart has packages, reset requires confirmation")

// ErrNoActiveCart is returned by Reset when there is nothing to abandon.
var ErrNoActiveCart = errors.New("no active cart")

// CartSource is the server surface the session needs: it is satisfied by
// the in-process CartService and by the HTTP API client.
type CartSource interface {
	CreateCart(ctx context.Context, setup services.CartSetup) (*types.Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (*types.Cart, error)
}

// Hooks are optional observers for the presentation layer.
type Hooks struct {
	// OnCompleted fires exactly once per cart, on the poll that first
	// observes the completion flag set after an open observation.
	OnCompleted func(cart *types.Cart)
	// OnSwitched fires whenever the active cart pointer changes to a new
	// cart (StartCart, Observe, or automatic successor creation).
	OnSwitched func(cart *types.Cart)
}

type Config struct {
	// PollInterval is the fixed snapshot refresh period. Default 2s.
	PollInterval time.Duration
	// SuccessorDelay is how long after a completion edge the successor
	// cart is created, so the completion notice has time to display.
	// Default 3s.
	SuccessorDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.SuccessorDelay <= 0 {
		c.SuccessorDelay = 3 * time.Second
	}
	return c
}

// Session keeps one operator's view of "the currently active cart"
// consistent with the server, where completion is decided. It polls on a
// fixed interval, edge-detects the completion flag, and starts a successor
// cart carrying the completed cart's configuration.
type Session struct {
	log    *logger.Logger
	source CartSource
	cfg    Config
	hooks  Hooks

	rootCtx context.Context
	stop    context.CancelFunc

	mu         sync.Mutex
	activeID   uuid.UUID
	snapshot   *types.Cart
	observed   map[uuid.UUID]bool // last observed completion flag per cart
	handled    map[uuid.UUID]bool // completion edges already acted on
	pollCancel context.CancelFunc
	wg         sync.WaitGroup
}

func New(log *logger.Logger, source CartSource, cfg Config, hooks Hooks) *Session {
	rootCtx, stop := context.WithCancel(context.Background())
	return &Session{
		log:      log.With("component", "CartSession"),
		source:   source,
		cfg:      cfg.withDefaults(),
		hooks:    hooks,
		rootCtx:  rootCtx,
		stop:     stop,
		observed: map[uuid.UUID]bool{},
		handled:  map[uuid.UUID]bool{},
	}
}

// StartCart creates a cart from the setup and makes it the active cart.
func (s *Session) StartCart(ctx context.Context, setup services.CartSetup) (*types.Cart, error) {
	cart, err := s.source.CreateCart(ctx, setup)
	if err != nil {
		return nil, err
	}
	s.switchTo(cart)
	return cart, nil
}

// Observe attaches to an existing cart without creating anything. The first
// poll establishes the completion baseline, so attaching to an already
// completed cart does not fire the completion hook.
func (s *Session) Observe(ctx context.Context, cartID uuid.UUID) (*types.Cart, error) {
	cart, err := s.source.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	s.switchTo(cart)
	return cart, nil
}

// Reset abandons the active cart pointer and stops polling. Persisted data
// is untouched. When the active cart still holds packages the caller must
// pass force=true (the confirmed dialog path).
func (s *Session) Reset(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == uuid.Nil {
		return ErrNoActiveCart
	}
	if !force && s.snapshot != nil && len(s.snapshot.Packages) > 0 {
		return ErrActiveCartHasPackages
	}

	s.stopPollingLocked()
	s.activeID = uuid.Nil
	s.snapshot = nil
	s.log.Info("Session reset")
	return nil
}

// ActiveCartID reports the current pointer; uuid.Nil when idle.
func (s *Session) ActiveCartID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Snapshot returns the last observed state of the active cart.
func (s *Session) Snapshot() *types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Close stops polling and any pending successor timers.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopPollingLocked()
	s.mu.Unlock()
	s.stop()
	s.wg.Wait()
}

func (s *Session) switchTo(cart *types.Cart) {
	s.mu.Lock()
	s.stopPollingLocked()
	s.activeID = cart.ID
	s.snapshot = cart
	if _, seen := s.observed[cart.ID]; !seen {
		s.observed[cart.ID] = cart.IsCompleted
	}

	pollCtx, cancel := context.WithCancel(s.rootCtx)
	s.pollCancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.pollLoop(pollCtx, cart.ID)

	s.log.Info("Active cart switched", "cart_id", cart.ID, "cart_number", cart.CartNumber)
	if s.hooks.OnSwitched != nil {
		s.hooks.OnSwitched(cart)
	}
}

func (s *Session) stopPollingLocked() {
	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
}

func (s *Session) pollLoop(ctx context.Context, cartID uuid.UUID) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx, cartID)
		}
	}
}

func (s *Session) pollOnce(ctx context.Context, cartID uuid.UUID) {
	cart, err := s.source.GetCart(ctx, cartID)
	if err != nil {
		// Transient by contract: keep the last snapshot, never infer
		// completion or absence from a failed poll.
		s.log.Warn("Poll failed, keeping last snapshot", "cart_id", cartID, "error", err)
		return
	}

	s.mu.Lock()
	prev, seen := s.observed[cartID]
	s.observed[cartID] = cart.IsCompleted
	if s.activeID == cartID {
		s.snapshot = cart
	}
	edge := seen && !prev && cart.IsCompleted && !s.handled[cartID]
	if edge {
		s.handled[cartID] = true
	}
	s.mu.Unlock()

	if edge {
		s.onCompletionDetected(cart)
	}
}

// onCompletionDetected reacts to a single completion edge: notify, then
// after the configured delay start the successor cart with the completed
// cart's configuration. The timer targets the completed cart's setup, not
// the active pointer, so it runs to completion even if the operator
// switched carts meanwhile; the handled map keeps it to once per edge.
func (s *Session) onCompletionDetected(cart *types.Cart) {
	s.log.Info("Cart completion detected",
		"cart_id", cart.ID,
		"cart_number", cart.CartNumber,
		"total_packages", cart.TotalPackages,
	)
	if s.hooks.OnCompleted != nil {
		s.hooks.OnCompleted(cart)
	}

	setup := services.CartSetup{
		Destination: cart.Destination,
		Tag:         cart.Tag,
		BucketType:  cart.BucketType,
		MaxPackages: cart.MaxPackages,
	}

	s.wg.Add(1)
	timer := time.AfterFunc(s.cfg.SuccessorDelay, func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.rootCtx, 10*time.Second)
		defer cancel()

		successor, err := s.source.CreateCart(ctx, setup)
		if err != nil {
			s.log.Error("Successor cart creation failed", "after_cart", cart.ID, "error", err)
			return
		}
		s.switchTo(successor)
	})

	// Tie the timer to session shutdown.
	go func() {
		<-s.rootCtx.Done()
		if timer.Stop() {
			s.wg.Done()
		}
	}()
}
