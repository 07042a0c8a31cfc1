package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// CreateItemInput carries all data needed to publish a listing. The seller
// snapshot is captured by the service from the authenticated user.
type CreateItemInput struct {
	Title         string
	Description   string
	Price         float64
	OriginalPrice float64
	Category      string
	Tags          []string
	Condition     string
	Images        []string
	Location      string
	Coordinates   *domain.Coordinates
	SellerID      string
}

// ItemService defines use-case operations for listings.
type ItemService interface {
	Create(ctx context.Context, input CreateItemInput) (*domain.Item, error)
	// Get returns the item detail and increments its view counter.
	Get(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Item, error)
	// Update applies an owner-only patch; requesterID must match the seller
	// snapshot id.
	Update(ctx context.Context, id string, patch ItemPatch, requesterID string) (*domain.Item, error)
	Delete(ctx context.Context, id string, requesterID string) error
	Search(ctx context.Context, keyword string) ([]*domain.Item, error)
	Filter(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	// SetStatus is reserved for the order lifecycle engine.
	SetStatus(ctx context.Context, id string, status domain.ItemStatus) error
}
