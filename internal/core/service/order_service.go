package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// PurchaseLocker serializes order creation per item. Two buyers racing for
// the same item contend on the lock before either touches the item status.
type PurchaseLocker interface {
	// TryLock attempts to acquire the item's purchase lock. Returns false
	// when another purchase holds it.
	TryLock(ctx context.Context, itemID string) (bool, error)
	Unlock(ctx context.Context, itemID string) error
}

// OrderService is the order lifecycle engine. It owns the order entity and
// enforces the status state machine, including the coupled item status
// effects:
//
//	create  → item pending
//	receive → item sold
//	cancel  → item selling
type OrderService struct {
	repo     ports.OrderRepository
	itemRepo ports.ItemRepository
	userRepo ports.UserRepository
	locker   PurchaseLocker
	logger   zerolog.Logger
}

func NewOrderService(
	repo ports.OrderRepository,
	itemRepo ports.ItemRepository,
	userRepo ports.UserRepository,
	locker PurchaseLocker,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		repo:     repo,
		itemRepo: itemRepo,
		userRepo: userRepo,
		locker:   locker,
		logger:   logger,
	}
}

// Create initiates a purchase against a selling item.
//
// The item is reserved (selling → pending, compare-and-swap) before the order
// is inserted; a failed insert reverts the reservation. This ordering means a
// crash mid-sequence can leave a reserved item without an order, but never an
// order against an item someone else also bought.
func (s *OrderService) Create(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if input.ItemID == "" || input.BuyerID == "" || input.SellerID == "" || input.TradeMethod == "" {
		return nil, fmt.Errorf("create order: %w", domain.ErrInvalidArgument)
	}
	if !domain.ValidTradeMethod(input.TradeMethod) {
		return nil, fmt.Errorf("create order: trade method %q: %w", input.TradeMethod, domain.ErrInvalidArgument)
	}

	item, err := s.itemRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if item.Status != domain.ItemStatusSelling {
		return nil, fmt.Errorf("create order: item %s: %w", item.ID, domain.ErrItemNotAvailable)
	}

	buyer, err := s.userRepo.FindByID(ctx, input.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("create order: buyer: %w", err)
	}
	seller, err := s.userRepo.FindByID(ctx, input.SellerID)
	if err != nil {
		return nil, fmt.Errorf("create order: seller: %w", err)
	}

	if s.locker != nil {
		ok, lockErr := s.locker.TryLock(ctx, item.ID)
		if lockErr != nil {
			s.logger.Warn().Err(lockErr).Str("item_id", item.ID).Msg("purchase lock unavailable, relying on status guard")
		} else if !ok {
			return nil, fmt.Errorf("create order: item %s: %w", item.ID, domain.ErrItemNotAvailable)
		} else {
			defer func() {
				if unlockErr := s.locker.Unlock(ctx, item.ID); unlockErr != nil {
					s.logger.Warn().Err(unlockErr).Str("item_id", item.ID).Msg("failed to release purchase lock")
				}
			}()
		}
	}

	// Reserve the item first. The guard on the current status is what makes
	// two concurrent purchases impossible even without the lock.
	if err := s.itemRepo.SetStatusIf(ctx, item.ID, domain.ItemStatusSelling, domain.ItemStatusPending); err != nil {
		return nil, fmt.Errorf("create order: reserve item: %w", err)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderID:       generateOrderID(now),
		TotalAmount:   item.Price,
		Status:        domain.OrderStatusPendingPayment,
		Item:          item.Snapshot(),
		Buyer:         buyer.Snapshot(),
		Seller:        seller.Snapshot(),
		TradeType:     domain.TradeTypeBuy,
		TradeMethod:   input.TradeMethod,
		TradeLocation: input.TradeLocation,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		// Compensate: release the reservation so the item stays sellable.
		if revertErr := s.itemRepo.SetStatusIf(ctx, item.ID, domain.ItemStatusPending, domain.ItemStatusSelling); revertErr != nil {
			s.logger.Error().Err(revertErr).Str("item_id", item.ID).Msg("failed to revert item reservation")
		}
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to insert order")
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.OrderID).
		Str("item_id", item.ID).
		Str("buyer_id", buyer.ID).
		Msg("order created")

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// Pay records the buyer's payment metadata and moves the order to
// pending_shipment.
func (s *OrderService) Pay(ctx context.Context, orderID string, payment ports.PayInput) (*domain.Order, error) {
	info := &domain.PaymentInfo{
		Method:        payment.Method,
		TransactionID: payment.TransactionID,
		PaidAt:        time.Now().UTC(),
	}
	return s.transition(ctx, orderID, domain.OrderStatusPendingShipment, info)
}

// Ship moves the order to pending_receipt after the seller confirms dispatch.
func (s *OrderService) Ship(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderStatusPendingReceipt, nil)
}

// Receive completes the order and marks the item sold.
func (s *OrderService) Receive(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.transition(ctx, orderID, domain.OrderStatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.SetStatus(ctx, order.Item.ID, domain.ItemStatusSold); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Str("item_id", order.Item.ID).Msg("failed to mark item sold")
		return nil, fmt.Errorf("receive order: mark item sold: %w", err)
	}
	return order, nil
}

// Cancel aborts the order and puts the item back on sale. Recorded payment
// info is kept for the audit trail.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.transition(ctx, orderID, domain.OrderStatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if err := s.itemRepo.SetStatus(ctx, order.Item.ID, domain.ItemStatusSelling); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Str("item_id", order.Item.ID).Msg("failed to restore item")
		return nil, fmt.Errorf("cancel order: restore item: %w", err)
	}
	return order, nil
}

// SetStatus is the generic status write. The target must be a known status
// and a legal edge from the current one. Completing an order this way marks
// the item sold; no other status has an item effect here.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("set order status: %q: %w", status, domain.ErrInvalidOrderStatus)
	}

	order, err := s.transition(ctx, orderID, status, nil)
	if err != nil {
		return nil, err
	}

	if status == domain.OrderStatusCompleted {
		if err := s.itemRepo.SetStatus(ctx, order.Item.ID, domain.ItemStatusSold); err != nil {
			s.logger.Error().Err(err).Str("order_id", orderID).Str("item_id", order.Item.ID).Msg("failed to mark item sold")
			return nil, fmt.Errorf("set order status: mark item sold: %w", err)
		}
	}
	return order, nil
}

// Rate stores a post-completion review. Terminal orders stay immutable except
// for the rating fields.
func (s *OrderService) Rate(ctx context.Context, orderID, requesterID string, input ports.RateInput) (*domain.Order, error) {
	if input.Score < 1 || input.Score > 5 {
		return nil, fmt.Errorf("rate order: score %d: %w", input.Score, domain.ErrInvalidArgument)
	}

	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusCompleted {
		return nil, fmt.Errorf("rate order: order not completed: %w", domain.ErrInvalidTransition)
	}

	var party string
	switch requesterID {
	case order.Buyer.ID:
		party = "buyer"
	case order.Seller.ID:
		party = "seller"
	default:
		return nil, domain.ErrForbidden
	}

	rating := domain.Rating{
		Score:   input.Score,
		Comment: input.Comment,
		RatedAt: time.Now().UTC(),
	}
	return s.repo.SetRating(ctx, orderID, party, rating)
}

func (s *OrderService) ListForUser(ctx context.Context, userID string, filter ports.OrderListFilter) ([]*domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("list orders: %w", domain.ErrInvalidArgument)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("list orders: status %q: %w", filter.Status, domain.ErrInvalidOrderStatus)
	}
	return s.repo.ListForUser(ctx, userID, filter)
}

// transition loads the order, checks the state machine edge and applies the
// guarded status update. The repository re-checks the current status in the
// write, so a concurrent transition loses cleanly.
func (s *OrderService) transition(ctx context.Context, orderID string, to domain.OrderStatus, payment *domain.PaymentInfo) (*domain.Order, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("order %s: %w (from %s to %s)", orderID, domain.ErrInvalidTransition, order.Status, to)
	}

	updated, err := s.repo.Transition(ctx, orderID, order.Status, to, payment)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("from", string(order.Status)).
		Str("to", string(to)).
		Msg("order transitioned")

	return updated, nil
}

// generateOrderID builds a human-readable order identifier from the creation
// time plus a random suffix. Uniqueness is best-effort; the unique index on
// order_id catches the astronomically unlikely collision.
func generateOrderID(now time.Time) string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("ORD%d%04X", now.UnixMilli(), now.Nanosecond()&0xFFFF)
	}
	return fmt.Sprintf("ORD%d%04X", now.UnixMilli(), b)
}

var _ ports.OrderService = (*OrderService)(nil)
