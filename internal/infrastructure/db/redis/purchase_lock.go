package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockTTL bounds how long an abandoned purchase can keep an item locked if
// the process dies before unlocking. Order creation finishes well within it.
const lockTTL = 30 * time.Second

// PurchaseLock serializes order creation per item using SET NX.
// Key format: purchase:<item_id>
type PurchaseLock struct {
	client *redis.Client
}

// NewPurchaseLock creates a PurchaseLock wrapping the given Redis client.
func NewPurchaseLock(client *redis.Client) *PurchaseLock {
	return &PurchaseLock{client: client}
}

// TryLock attempts to take the item's purchase lock. Returns false when a
// concurrent purchase already holds it.
func (l *PurchaseLock) TryLock(ctx context.Context, itemID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(itemID), "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("purchase lock: %w", err)
	}
	return ok, nil
}

// Unlock releases the item's purchase lock.
func (l *PurchaseLock) Unlock(ctx context.Context, itemID string) error {
	return l.client.Del(ctx, l.key(itemID)).Err()
}

func (l *PurchaseLock) key(itemID string) string {
	return fmt.Sprintf("purchase:%s", itemID)
}
