package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/types"
)

// SnapshotCache keeps cart-with-packages snapshots hot for the poll path.
// Every client polls the active cart every couple of seconds, so a short TTL
// absorbs almost all of those reads. Mutations invalidate the touched cart.
type SnapshotCache interface {
	Get(ctx context.Context, cartID uuid.UUID) (*types.Cart, bool)
	Set(ctx context.Context, cart *types.Cart)
	Invalidate(ctx context.Context, cartID uuid.UUID)
	Close() error
}

type snapshotCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewSnapshotCache connects using REDIS_ADDR. Callers treat a nil cache as
// "no caching"; app wiring logs a warning and continues when Redis is absent.
func NewSnapshotCache(log *logger.Logger, ttl time.Duration) (SnapshotCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 2 * time.Second
	}

	return &snapshotCache{
		log: log.With("service", "SnapshotCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cartKey(cartID uuid.UUID) string {
	return "cartline:cart:" + cartID.String()
}

func (c *snapshotCache) Get(ctx context.Context, cartID uuid.UUID) (*types.Cart, bool) {
	raw, err := c.rdb.Get(ctx, cartKey(cartID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("Cache read failed", "cart_id", cartID, "error", err)
		}
		return nil, false
	}
	var cart types.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		c.log.Warn("Cache entry corrupt, dropping", "cart_id", cartID, "error", err)
		_ = c.rdb.Del(ctx, cartKey(cartID)).Err()
		return nil, false
	}
	return &cart, true
}

func (c *snapshotCache) Set(ctx context.Context, cart *types.Cart) {
	if cart == nil {
		return
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cartKey(cart.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache write failed", "cart_id", cart.ID, "error", err)
	}
}

func (c *snapshotCache) Invalidate(ctx context.Context, cartID uuid.UUID) {
	if err := c.rdb.Del(ctx, cartKey(cartID)).Err(); err != nil {
		c.log.Warn("Cache invalidation failed", "cart_id", cartID, "error", err)
	}
}

func (c *snapshotCache) Close() error {
	return c.rdb.Close()
}
