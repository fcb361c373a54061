package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pulppixels/pulppixels-backend/pkg/redis"
)

const verifyGuardScope = "payment_verify"

// VerifyGuard fences payment verification on the gateway payment id so a
// double-submitted verify call cannot race itself into two receipts.
type VerifyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewVerifyGuard builds a guard backed by the shared Redis client.
func NewVerifyGuard(store redis.IdempotencyStore, ttl time.Duration) (*VerifyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &VerifyGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark claims the payment id. It reports true when another request
// already holds the claim.
func (g *VerifyGuard) CheckAndMark(ctx context.Context, paymentID string) (bool, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return false, errors.New("payment id is required")
	}
	key := g.store.IdempotencyKey(verifyGuardScope, paymentID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Release drops the claim so a failed verification can be retried.
func (g *VerifyGuard) Release(ctx context.Context, paymentID string) error {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return errors.New("payment id is required")
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(verifyGuardScope, paymentID))
}
