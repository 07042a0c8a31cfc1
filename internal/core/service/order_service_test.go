package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	orders    map[string]*domain.Order // keyed by order id
	insertErr error                    // if set, Insert returns this error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order)}
}

func cloneOrder(o *domain.Order) *domain.Order {
	clone := *o
	return &clone
}

func (r *stubOrderRepo) Insert(_ context.Context, order *domain.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.orders[order.OrderID] = cloneOrder(order)
	return nil
}

func (r *stubOrderRepo) FindByOrderID(_ context.Context, orderID string) (*domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// Transition mirrors the real Mongo repo: the write applies only when the
// stored status still equals from.
func (r *stubOrderRepo) Transition(_ context.Context, orderID string, from, to domain.OrderStatus, payment *domain.PaymentInfo) (*domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != from {
		return nil, domain.ErrInvalidTransition
	}
	o.Status = to
	if payment != nil {
		o.PaymentInfo = payment
	}
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) SetRating(_ context.Context, orderID string, party string, rating domain.Rating) (*domain.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	switch party {
	case "buyer":
		o.BuyerRating = &rating
	case "seller":
		o.SellerRating = &rating
	}
	return cloneOrder(o), nil
}

func (r *stubOrderRepo) ListForUser(_ context.Context, userID string, filter ports.OrderListFilter) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.Buyer.ID != userID && o.Seller.ID != userID {
			continue
		}
		if filter.TradeType != "" && o.TradeType != filter.TradeType {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

type stubLocker struct {
	deny     bool  // TryLock returns false
	err      error // TryLock returns this error
	locked   []string
	unlocked []string
}

func (l *stubLocker) TryLock(_ context.Context, itemID string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.deny {
		return false, nil
	}
	l.locked = append(l.locked, itemID)
	return true, nil
}

func (l *stubLocker) Unlock(_ context.Context, itemID string) error {
	l.unlocked = append(l.unlocked, itemID)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type orderFixture struct {
	svc    *OrderService
	orders *stubOrderRepo
	items  *stubItemRepo
	users  *stubUserRepo
	locker *stubLocker
	buyer  *domain.User
	seller *domain.User
	item   *domain.Item
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	users := newStubUserRepo()
	items := newStubItemRepo()
	orders := newStubOrderRepo()
	locker := &stubLocker{}

	buyer, err := users.Create(context.Background(), &domain.User{Username: "buyer", Email: "buyer@campus.edu"})
	if err != nil {
		t.Fatalf("seed buyer: %v", err)
	}
	seller, err := users.Create(context.Background(), &domain.User{Username: "seller", Email: "seller@campus.edu"})
	if err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	item, err := items.Create(context.Background(), &domain.Item{
		Title:     "Road Bike",
		Price:     120,
		Status:    domain.ItemStatusSelling,
		Condition: "good",
		Seller:    seller.Snapshot(),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}

	return &orderFixture{
		svc:    NewOrderService(orders, items, users, locker, discardLogger),
		orders: orders,
		items:  items,
		users:  users,
		locker: locker,
		buyer:  buyer,
		seller: seller,
		item:   item,
	}
}

func (f *orderFixture) createInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{
		ItemID:        f.item.ID,
		BuyerID:       f.buyer.ID,
		SellerID:      f.seller.ID,
		TradeMethod:   domain.TradeMethodCampus,
		TradeLocation: "Library entrance",
	}
}

func (f *orderFixture) mustCreate(t *testing.T) *domain.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func (f *orderFixture) itemStatus() domain.ItemStatus {
	return f.items.items[f.item.ID].Status
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestOrderService_Create_Success(t *testing.T) {
	f := newOrderFixture(t)

	order := f.mustCreate(t)

	if !strings.HasPrefix(order.OrderID, "ORD") {
		t.Errorf("order id format wrong: %s", order.OrderID)
	}
	if order.Status != domain.OrderStatusPendingPayment {
		t.Errorf("new order status %q, want %q", order.Status, domain.OrderStatusPendingPayment)
	}
	if order.TotalAmount != 120 {
		t.Errorf("total amount %v, want item price 120", order.TotalAmount)
	}
	if order.Item.ID != f.item.ID || order.Item.Title != "Road Bike" {
		t.Errorf("item snapshot wrong: %+v", order.Item)
	}
	if order.Buyer.ID != f.buyer.ID || order.Seller.ID != f.seller.ID {
		t.Error("buyer/seller snapshots wrong")
	}
	if order.TradeType != domain.TradeTypeBuy {
		t.Errorf("trade type %q, want %q", order.TradeType, domain.TradeTypeBuy)
	}

	// Creating the order reserves the item.
	if got := f.itemStatus(); got != domain.ItemStatusPending {
		t.Errorf("item status after create %q, want %q", got, domain.ItemStatusPending)
	}
	// The purchase lock is taken and released.
	if len(f.locker.locked) != 1 || len(f.locker.unlocked) != 1 {
		t.Errorf("lock/unlock calls: %d/%d, want 1/1", len(f.locker.locked), len(f.locker.unlocked))
	}
}

func TestOrderService_Create_ItemNotSelling(t *testing.T) {
	f := newOrderFixture(t)
	f.items.items[f.item.ID].Status = domain.ItemStatusSold

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !errors.Is(err, domain.ErrItemNotAvailable) {
		t.Fatalf("expected ErrItemNotAvailable, got %v", err)
	}
}

func TestOrderService_Create_SecondPurchaseFails(t *testing.T) {
	f := newOrderFixture(t)

	f.mustCreate(t)

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !errors.Is(err, domain.ErrItemNotAvailable) {
		t.Fatalf("second purchase of same item: expected ErrItemNotAvailable, got %v", err)
	}
	if len(f.orders.orders) != 1 {
		t.Errorf("expected exactly 1 stored order, got %d", len(f.orders.orders))
	}
}

func TestOrderService_Create_LockDenied(t *testing.T) {
	f := newOrderFixture(t)
	f.locker.deny = true

	_, err := f.svc.Create(context.Background(), f.createInput())
	if !errors.Is(err, domain.ErrItemNotAvailable) {
		t.Fatalf("expected ErrItemNotAvailable when lock is held, got %v", err)
	}
	// The reservation must not have happened.
	if got := f.itemStatus(); got != domain.ItemStatusSelling {
		t.Errorf("item status %q, want %q", got, domain.ItemStatusSelling)
	}
}

func TestOrderService_Create_LockErrorFallsBackToGuard(t *testing.T) {
	f := newOrderFixture(t)
	f.locker.err = errors.New("redis down")

	order, err := f.svc.Create(context.Background(), f.createInput())
	if err != nil {
		t.Fatalf("create must survive a lock backend failure: %v", err)
	}
	if order.Status != domain.OrderStatusPendingPayment {
		t.Errorf("order status %q, want %q", order.Status, domain.OrderStatusPendingPayment)
	}
}

func TestOrderService_Create_InsertFailureRevertsReservation(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.insertErr = errors.New("db unavailable")

	_, err := f.svc.Create(context.Background(), f.createInput())
	if err == nil {
		t.Fatal("expected error when insert fails, got nil")
	}
	if got := f.itemStatus(); got != domain.ItemStatusSelling {
		t.Errorf("item status after failed insert %q, want %q", got, domain.ItemStatusSelling)
	}
}

func TestOrderService_Create_InvalidTradeMethod(t *testing.T) {
	f := newOrderFixture(t)

	input := f.createInput()
	input.TradeMethod = "pigeon"
	_, err := f.svc.Create(context.Background(), input)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Lifecycle tests
// ---------------------------------------------------------------------------

func TestOrderService_FullLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	paid, err := f.svc.Pay(context.Background(), order.OrderID, ports.PayInput{Method: "wechat", TransactionID: "tx-1"})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if paid.Status != domain.OrderStatusPendingShipment {
		t.Errorf("status after pay %q, want %q", paid.Status, domain.OrderStatusPendingShipment)
	}
	if paid.PaymentInfo == nil || paid.PaymentInfo.TransactionID != "tx-1" || paid.PaymentInfo.PaidAt.IsZero() {
		t.Errorf("payment info not recorded: %+v", paid.PaymentInfo)
	}

	shipped, err := f.svc.Ship(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if shipped.Status != domain.OrderStatusPendingReceipt {
		t.Errorf("status after ship %q, want %q", shipped.Status, domain.OrderStatusPendingReceipt)
	}

	received, err := f.svc.Receive(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if received.Status != domain.OrderStatusCompleted {
		t.Errorf("status after receive %q, want %q", received.Status, domain.OrderStatusCompleted)
	}
	if got := f.itemStatus(); got != domain.ItemStatusSold {
		t.Errorf("item status after completion %q, want %q", got, domain.ItemStatusSold)
	}
}

func TestOrderService_Cancel_RestoresItem(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	if _, err := f.svc.Pay(context.Background(), order.OrderID, ports.PayInput{Method: "alipay"}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), order.OrderID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Errorf("status after cancel %q, want %q", cancelled.Status, domain.OrderStatusCancelled)
	}
	if got := f.itemStatus(); got != domain.ItemStatusSelling {
		t.Errorf("item status after cancel %q, want %q", got, domain.ItemStatusSelling)
	}
	// Payment info survives the cancellation for the audit trail.
	if cancelled.PaymentInfo == nil || cancelled.PaymentInfo.Method != "alipay" {
		t.Errorf("payment info lost on cancel: %+v", cancelled.PaymentInfo)
	}
}

func TestOrderService_Ship_BeforePay(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	_, err := f.svc.Ship(context.Background(), order.OrderID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestOrderService_Pay_OnCancelledOrder(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	if _, err := f.svc.Cancel(context.Background(), order.OrderID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.svc.Pay(context.Background(), order.OrderID, ports.PayInput{Method: "wechat"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("terminal order must reject transitions, got %v", err)
	}
}

func TestOrderService_Receive_OnCompletedOrder(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)
	f.orders.orders[order.OrderID].Status = domain.OrderStatusCompleted

	_, err := f.svc.Receive(context.Background(), order.OrderID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// SetStatus tests
// ---------------------------------------------------------------------------

func TestOrderService_SetStatus_UnknownStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	_, err := f.svc.SetStatus(context.Background(), order.OrderID, domain.OrderStatus("teleported"))
	if !errors.Is(err, domain.ErrInvalidOrderStatus) {
		t.Fatalf("expected ErrInvalidOrderStatus, got %v", err)
	}
}

func TestOrderService_SetStatus_PendingTradeFlow(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	// Face-to-face trades bypass pay/ship via the generic status write.
	updated, err := f.svc.SetStatus(context.Background(), order.OrderID, domain.OrderStatusPendingTrade)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if updated.Status != domain.OrderStatusPendingTrade {
		t.Errorf("status %q, want %q", updated.Status, domain.OrderStatusPendingTrade)
	}

	completed, err := f.svc.SetStatus(context.Background(), order.OrderID, domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.OrderStatusCompleted {
		t.Errorf("status %q, want %q", completed.Status, domain.OrderStatusCompleted)
	}
	if got := f.itemStatus(); got != domain.ItemStatusSold {
		t.Errorf("completing via status write must mark the item sold, got %q", got)
	}
}

func TestOrderService_SetStatus_IllegalEdge(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	_, err := f.svc.SetStatus(context.Background(), order.OrderID, domain.OrderStatusCompleted)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending_payment → completed must be rejected, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Rate tests
// ---------------------------------------------------------------------------

func completedOrder(t *testing.T, f *orderFixture) *domain.Order {
	t.Helper()
	order := f.mustCreate(t)
	if _, err := f.svc.Pay(context.Background(), order.OrderID, ports.PayInput{Method: "wechat"}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if _, err := f.svc.Ship(context.Background(), order.OrderID); err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	if _, err := f.svc.Receive(context.Background(), order.OrderID); err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	return order
}

func TestOrderService_Rate_Buyer(t *testing.T) {
	f := newOrderFixture(t)
	order := completedOrder(t, f)

	rated, err := f.svc.Rate(context.Background(), order.OrderID, f.buyer.ID, ports.RateInput{Score: 5, Comment: "great"})
	if err != nil {
		t.Fatalf("rate failed: %v", err)
	}
	if rated.BuyerRating == nil || rated.BuyerRating.Score != 5 {
		t.Errorf("buyer rating not stored: %+v", rated.BuyerRating)
	}
	if rated.SellerRating != nil {
		t.Error("seller rating must stay empty")
	}
}

func TestOrderService_Rate_Seller(t *testing.T) {
	f := newOrderFixture(t)
	order := completedOrder(t, f)

	rated, err := f.svc.Rate(context.Background(), order.OrderID, f.seller.ID, ports.RateInput{Score: 4})
	if err != nil {
		t.Fatalf("rate failed: %v", err)
	}
	if rated.SellerRating == nil || rated.SellerRating.Score != 4 {
		t.Errorf("seller rating not stored: %+v", rated.SellerRating)
	}
}

func TestOrderService_Rate_Stranger(t *testing.T) {
	f := newOrderFixture(t)
	order := completedOrder(t, f)

	_, err := f.svc.Rate(context.Background(), order.OrderID, "stranger", ports.RateInput{Score: 3})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestOrderService_Rate_NotCompleted(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	_, err := f.svc.Rate(context.Background(), order.OrderID, f.buyer.ID, ports.RateInput{Score: 5})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for non-completed order, got %v", err)
	}
}

func TestOrderService_Rate_ScoreOutOfRange(t *testing.T) {
	f := newOrderFixture(t)
	order := completedOrder(t, f)

	for _, score := range []int{0, 6, -1} {
		if _, err := f.svc.Rate(context.Background(), order.OrderID, f.buyer.ID, ports.RateInput{Score: score}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("score %d: expected ErrInvalidArgument, got %v", score, err)
		}
	}
}

// ---------------------------------------------------------------------------
// ListForUser tests
// ---------------------------------------------------------------------------

func TestOrderService_ListForUser_FiltersByStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := f.mustCreate(t)

	pending, err := f.svc.ListForUser(context.Background(), f.buyer.ID, ports.OrderListFilter{Status: domain.OrderStatusPendingPayment})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OrderID != order.OrderID {
		t.Fatalf("expected the pending order, got %d results", len(pending))
	}

	done, err := f.svc.ListForUser(context.Background(), f.buyer.ID, ports.OrderListFilter{Status: domain.OrderStatusCompleted})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(done) != 0 {
		t.Errorf("expected no completed orders, got %d", len(done))
	}
}

func TestOrderService_ListForUser_SellerSide(t *testing.T) {
	f := newOrderFixture(t)
	f.mustCreate(t)

	sellerOrders, err := f.svc.ListForUser(context.Background(), f.seller.ID, ports.OrderListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sellerOrders) != 1 {
		t.Errorf("seller must see the order, got %d results", len(sellerOrders))
	}
}

func TestOrderService_ListForUser_UnknownStatus(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.ListForUser(context.Background(), f.buyer.ID, ports.OrderListFilter{Status: "limbo"})
	if !errors.Is(err, domain.ErrInvalidOrderStatus) {
		t.Fatalf("expected ErrInvalidOrderStatus, got %v", err)
	}
}
