package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubItemRepo struct {
	items     map[string]*domain.Item // keyed by id
	nextID    int
	createErr error // if set, Create returns this error
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[string]*domain.Item)}
}

func cloneItem(i *domain.Item) *domain.Item {
	clone := *i
	return &clone
}

func (r *stubItemRepo) Create(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *item
	clone.ID = fmt.Sprintf("item-%d", r.nextID)
	r.items[clone.ID] = &clone
	return cloneItem(&clone), nil
}

func (r *stubItemRepo) FindByID(_ context.Context, id string) (*domain.Item, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return cloneItem(i), nil
}

func (r *stubItemRepo) FindAndIncrementViews(_ context.Context, id string) (*domain.Item, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	i.Views++
	return cloneItem(i), nil
}

func (r *stubItemRepo) List(_ context.Context) ([]*domain.Item, error) {
	out := make([]*domain.Item, 0, len(r.items))
	for _, i := range r.items {
		out = append(out, cloneItem(i))
	}
	return out, nil
}

func (r *stubItemRepo) ListBySeller(_ context.Context, sellerID string) ([]*domain.Item, error) {
	var out []*domain.Item
	for _, i := range r.items {
		if i.Seller.ID == sellerID {
			out = append(out, cloneItem(i))
		}
	}
	return out, nil
}

func (r *stubItemRepo) Update(_ context.Context, id string, patch ports.ItemPatch) (*domain.Item, error) {
	i, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if patch.Title != nil {
		i.Title = *patch.Title
	}
	if patch.Description != nil {
		i.Description = *patch.Description
	}
	if patch.Price != nil {
		i.Price = *patch.Price
	}
	if patch.Category != nil {
		i.Category = *patch.Category
	}
	if patch.Condition != nil {
		i.Condition = *patch.Condition
	}
	if patch.Tags != nil {
		i.Tags = patch.Tags
	}
	if patch.Images != nil {
		i.Images = patch.Images
	}
	if patch.Location != nil {
		i.Location = *patch.Location
	}
	i.UpdatedAt = time.Now().UTC()
	return cloneItem(i), nil
}

func (r *stubItemRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

// Search applies the same matching the real Mongo repo would: case-insensitive
// substring on title or description, exact tag.
func (r *stubItemRepo) Search(_ context.Context, keyword string) ([]*domain.Item, error) {
	kw := strings.ToLower(keyword)
	var out []*domain.Item
	for _, i := range r.items {
		titleMatch := strings.Contains(strings.ToLower(i.Title), kw)
		descMatch := strings.Contains(strings.ToLower(i.Description), kw)
		tagMatch := false
		for _, tag := range i.Tags {
			if tag == keyword {
				tagMatch = true
				break
			}
		}
		if titleMatch || descMatch || tagMatch {
			out = append(out, cloneItem(i))
		}
	}
	return out, nil
}

func (r *stubItemRepo) Filter(_ context.Context, f ports.ItemFilter) ([]*domain.Item, error) {
	var out []*domain.Item
	for _, i := range r.items {
		if f.Category != "" && i.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && i.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && i.Price > *f.MaxPrice {
			continue
		}
		out = append(out, cloneItem(i))
	}
	switch f.SortBy {
	case ports.SortPriceAsc:
		sort.Slice(out, func(a, b int) bool { return out[a].Price < out[b].Price })
	case ports.SortPriceDesc:
		sort.Slice(out, func(a, b int) bool { return out[a].Price > out[b].Price })
	case ports.SortPopular:
		sort.Slice(out, func(a, b int) bool { return out[a].Views > out[b].Views })
	default:
		sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	}
	return out, nil
}

func (r *stubItemRepo) SetStatus(_ context.Context, id string, status domain.ItemStatus) error {
	i, ok := r.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	i.Status = status
	return nil
}

func (r *stubItemRepo) SetStatusIf(_ context.Context, id string, from, to domain.ItemStatus) error {
	i, ok := r.items[id]
	if !ok {
		return domain.ErrItemNotFound
	}
	if i.Status != from {
		return domain.ErrItemNotAvailable
	}
	i.Status = to
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func itemInput(sellerID string) ports.CreateItemInput {
	return ports.CreateItemInput{
		SellerID:    sellerID,
		Title:       "Calculus Textbook",
		Description: "Barely used, 3rd edition",
		Price:       25,
		Category:    "books",
		Condition:   "like-new",
		Location:    "North Dorm",
		Tags:        []string{"math", "textbook"},
	}
}

func seedSeller(t *testing.T, users *stubUserRepo) *domain.User {
	t.Helper()
	seller, err := users.Create(context.Background(), &domain.User{
		Username:    "seller",
		Email:       "seller@campus.edu",
		Name:        "Li Lei",
		Role:        domain.RoleUser,
		CreditScore: domain.DefaultCreditScore,
	})
	if err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	return seller
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestItemService_Create_Success(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	item, err := svc.Create(context.Background(), itemInput(seller.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.ID == "" {
		t.Error("created item must have an id")
	}
	if item.Status != domain.ItemStatusSelling {
		t.Errorf("new item status %q, want %q", item.Status, domain.ItemStatusSelling)
	}
	if item.Seller.ID != seller.ID {
		t.Errorf("seller snapshot id %q, want %q", item.Seller.ID, seller.ID)
	}
	if item.Seller.Name != "Li Lei" {
		t.Errorf("seller snapshot name %q, want %q", item.Seller.Name, "Li Lei")
	}
	if item.CreatedAt.IsZero() {
		t.Error("CreatedAt must not be zero")
	}
}

func TestItemService_Create_MissingFields(t *testing.T) {
	users := newStubUserRepo()
	svc := NewItemService(newStubItemRepo(), users, discardLogger)
	seller := seedSeller(t, users)

	input := itemInput(seller.ID)
	input.Price = 0
	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestItemService_Create_UnknownSeller(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), newStubUserRepo(), discardLogger)

	_, err := svc.Create(context.Background(), itemInput("ghost"))
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Get tests
// ---------------------------------------------------------------------------

func TestItemService_Get_IncrementsViews(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	created, err := svc.Create(context.Background(), itemInput(seller.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	second, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if first.Views != 1 || second.Views != 2 {
		t.Errorf("view counter not incremented per read: got %d then %d", first.Views, second.Views)
	}
}

func TestItemService_Get_NotFound(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), newStubUserRepo(), discardLogger)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete ownership tests
// ---------------------------------------------------------------------------

func TestItemService_Update_NotOwner(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	created, err := svc.Create(context.Background(), itemInput(seller.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newTitle := "hijacked"
	_, err = svc.Update(context.Background(), created.ID, ports.ItemPatch{Title: &newTitle}, "someone-else")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestItemService_Update_Owner(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	created, err := svc.Create(context.Background(), itemInput(seller.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	price := 19.5
	updated, err := svc.Update(context.Background(), created.ID, ports.ItemPatch{Price: &price}, seller.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Price != 19.5 {
		t.Errorf("price %v, want 19.5", updated.Price)
	}
	if updated.Title != created.Title {
		t.Errorf("unpatched field changed: title %q, want %q", updated.Title, created.Title)
	}
}

func TestItemService_Delete_NotOwner(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	created, err := svc.Create(context.Background(), itemInput(seller.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "someone-else"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := repo.items[created.ID]; !ok {
		t.Error("item must survive a forbidden delete")
	}
}

func TestItemService_Delete_Owner(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	created, err := svc.Create(context.Background(), itemInput(seller.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, seller.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.items[created.ID]; ok {
		t.Error("item still stored after delete")
	}
}

// ---------------------------------------------------------------------------
// Search / Filter tests
// ---------------------------------------------------------------------------

func TestItemService_Search_EmptyKeyword(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), newStubUserRepo(), discardLogger)

	_, err := svc.Search(context.Background(), "   ")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestItemService_Search_MatchesTitle(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	if _, err := svc.Create(context.Background(), itemInput(seller.ID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other := itemInput(seller.ID)
	other.Title = "Desk Lamp"
	other.Tags = nil
	if _, err := svc.Create(context.Background(), other); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	results, err := svc.Search(context.Background(), "calculus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Calculus Textbook" {
		t.Errorf("wrong item matched: %q", results[0].Title)
	}
}

func TestItemService_Filter_PriceRangeAndSort(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seller := seedSeller(t, users)

	for _, price := range []float64{40, 10, 25} {
		input := itemInput(seller.ID)
		input.Title = fmt.Sprintf("Item %v", price)
		input.Price = price
		if _, err := svc.Create(context.Background(), input); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	min, max := 5.0, 30.0
	results, err := svc.Filter(context.Background(), ports.ItemFilter{
		MinPrice: &min,
		MaxPrice: &max,
		SortBy:   ports.SortPriceAsc,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results in range, got %d", len(results))
	}
	if results[0].Price != 10 || results[1].Price != 25 {
		t.Errorf("results not sorted by price ascending: %v, %v", results[0].Price, results[1].Price)
	}
}

func TestItemService_Filter_UnknownSortFallsBackToNewest(t *testing.T) {
	users := newStubUserRepo()
	repo := newStubItemRepo()
	svc := NewItemService(repo, users, discardLogger)
	seedSeller(t, users)

	if _, err := svc.Filter(context.Background(), ports.ItemFilter{SortBy: "bogus"}); err != nil {
		t.Fatalf("unknown sort key must not fail: %v", err)
	}
}

// ---------------------------------------------------------------------------
// SetStatus tests
// ---------------------------------------------------------------------------

func TestItemService_SetStatus_Invalid(t *testing.T) {
	svc := NewItemService(newStubItemRepo(), newStubUserRepo(), discardLogger)

	err := svc.SetStatus(context.Background(), "item-1", domain.ItemStatus("vanished"))
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
