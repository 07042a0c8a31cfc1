package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// CreateOrderInput carries all data needed to initiate a purchase.
type CreateOrderInput struct {
	ItemID        string
	BuyerID       string
	SellerID      string
	TradeMethod   string
	TradeLocation string
}

// PayInput is the payment metadata submitted by the buyer. Payment is
// recorded, not processed.
type PayInput struct {
	Method        string
	TransactionID string
}

// RateInput is a post-completion review left by one of the parties.
type RateInput struct {
	Score   int
	Comment string
}

// OrderService is the order lifecycle engine. Every transition enforces the
// state machine and applies the coupled item status effect.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	Pay(ctx context.Context, orderID string, payment PayInput) (*domain.Order, error)
	Ship(ctx context.Context, orderID string) (*domain.Order, error)
	Receive(ctx context.Context, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
	// SetStatus is the generic status write. The new status must be one of
	// the six known values and reachable from the current one.
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
	// Rate records a review on a completed order; the requester must be the
	// buyer or the seller.
	Rate(ctx context.Context, orderID, requesterID string, input RateInput) (*domain.Order, error)
	ListForUser(ctx context.Context, userID string, filter OrderListFilter) ([]*domain.Order, error)
}
