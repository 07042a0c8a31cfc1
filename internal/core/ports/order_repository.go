package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// OrderListFilter narrows a user's order history. Empty fields match all.
type OrderListFilter struct {
	TradeType string
	Status    domain.OrderStatus
}

// OrderRepository defines persistence operations for orders. Orders are
// addressed by their human-readable order id, not the storage id.
type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	// Transition atomically moves the order from one status to another.
	// The update applies only when the stored status still equals from;
	// a guard miss returns domain.ErrInvalidTransition. A non-nil payment
	// is recorded in the same write.
	Transition(ctx context.Context, orderID string, from, to domain.OrderStatus, payment *domain.PaymentInfo) (*domain.Order, error)
	// SetRating stores a post-completion rating for the given party
	// ("buyer" or "seller").
	SetRating(ctx context.Context, orderID string, party string, rating domain.Rating) (*domain.Order, error)
	// ListForUser returns orders where the user appears as buyer or seller
	// snapshot id, newest first.
	ListForUser(ctx context.Context, userID string, filter OrderListFilter) ([]*domain.Order, error)
}
