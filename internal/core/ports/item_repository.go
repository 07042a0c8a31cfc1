package ports

import (
	"context"

	"github.com/campus-market/trading-api/internal/core/domain"
)

// Sort keys accepted by item filtering.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNewest    = "newest"
	SortPopular   = "popular"
)

// ItemFilter carries the query parameters for the filter endpoint. Zero
// values mean "no constraint"; SortBy defaults to newest.
type ItemFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
}

// ItemPatch carries the owner-editable item fields. Nil fields are left
// untouched.
type ItemPatch struct {
	Title         *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	Category      *string
	Tags          []string
	Condition     *string
	Images        []string
	Location      *string
	Coordinates   *domain.Coordinates
}

// ItemRepository defines persistence operations for listings.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	// FindByID retrieves an item without side effects.
	FindByID(ctx context.Context, id string) (*domain.Item, error)
	// FindAndIncrementViews retrieves an item and bumps its view counter in
	// one write. Used by the detail endpoint.
	FindAndIncrementViews(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context) ([]*domain.Item, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*domain.Item, error)
	Update(ctx context.Context, id string, patch ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, keyword string) ([]*domain.Item, error)
	Filter(ctx context.Context, filter ItemFilter) ([]*domain.Item, error)
	SetStatus(ctx context.Context, id string, status domain.ItemStatus) error
	// SetStatusIf sets the status only when the current status equals from.
	// Returns domain.ErrItemNotAvailable when the guard does not match, so
	// concurrent purchases against the same item cannot both succeed.
	SetStatusIf(ctx context.Context, id string, from, to domain.ItemStatus) error
}
