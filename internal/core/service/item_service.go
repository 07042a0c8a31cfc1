package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// ItemService implements listing use cases.
type ItemService struct {
	repo     ports.ItemRepository
	userRepo ports.UserRepository
	logger   zerolog.Logger
}

func NewItemService(repo ports.ItemRepository, userRepo ports.UserRepository, logger zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, userRepo: userRepo, logger: logger}
}

// Create publishes a listing. The seller snapshot is captured here and never
// resynchronized with later profile edits.
func (s *ItemService) Create(ctx context.Context, input ports.CreateItemInput) (*domain.Item, error) {
	if input.Title == "" || input.Description == "" || input.Price <= 0 ||
		input.Category == "" || input.Condition == "" || input.Location == "" {
		return nil, fmt.Errorf("create item: %w", domain.ErrInvalidArgument)
	}

	seller, err := s.userRepo.FindByID(ctx, input.SellerID)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	now := time.Now().UTC()
	item := &domain.Item{
		Title:         input.Title,
		Description:   input.Description,
		Price:         input.Price,
		OriginalPrice: input.OriginalPrice,
		Category:      input.Category,
		Tags:          input.Tags,
		Condition:     input.Condition,
		Status:        domain.ItemStatusSelling,
		Images:        input.Images,
		Location:      input.Location,
		Coordinates:   input.Coordinates,
		Seller:        seller.Snapshot(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create item")
		return nil, err
	}

	s.logger.Info().Str("item_id", created.ID).Str("seller_id", seller.ID).Msg("item created")
	return created, nil
}

// Get returns the item detail; every detail read bumps the view counter.
func (s *ItemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	return s.repo.FindAndIncrementViews(ctx, id)
}

func (s *ItemService) List(ctx context.Context) ([]*domain.Item, error) {
	return s.repo.List(ctx)
}

func (s *ItemService) ListBySeller(ctx context.Context, sellerID string) ([]*domain.Item, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// Update applies the patch after verifying the requester owns the listing.
func (s *ItemService) Update(ctx context.Context, id string, patch ports.ItemPatch, requesterID string) (*domain.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Seller.ID != requesterID {
		return nil, domain.ErrForbidden
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *ItemService) Delete(ctx context.Context, id string, requesterID string) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item.Seller.ID != requesterID {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("item_id", id).Msg("item deleted")
	return nil
}

// Search matches a case-insensitive substring on title or description, or an
// exact tag.
func (s *ItemService) Search(ctx context.Context, keyword string) ([]*domain.Item, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("search: %w", domain.ErrInvalidArgument)
	}
	return s.repo.Search(ctx, keyword)
}

func (s *ItemService) Filter(ctx context.Context, filter ports.ItemFilter) ([]*domain.Item, error) {
	switch filter.SortBy {
	case ports.SortPriceAsc, ports.SortPriceDesc, ports.SortNewest, ports.SortPopular:
	case "":
		filter.SortBy = ports.SortNewest
	default:
		filter.SortBy = ports.SortNewest
	}
	return s.repo.Filter(ctx, filter)
}

// SetStatus writes the item status directly. Only the order lifecycle engine
// calls this.
func (s *ItemService) SetStatus(ctx context.Context, id string, status domain.ItemStatus) error {
	if !status.Valid() {
		return fmt.Errorf("set item status: %w", domain.ErrInvalidArgument)
	}
	return s.repo.SetStatus(ctx, id, status)
}

var _ ports.ItemService = (*ItemService)(nil)
