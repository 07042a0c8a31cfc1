package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment  OrderStatus = "pending_payment"
	OrderStatusPendingShipment OrderStatus = "pending_shipment"
	OrderStatusPendingReceipt  OrderStatus = "pending_receipt"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
	// OrderStatusPendingTrade is kept for face-to-face trades arranged outside
	// the pay/ship flow. It is accepted by the generic status write only.
	OrderStatusPendingTrade OrderStatus = "pending_trade"
)

// Trade types: which side of the trade an order represents.
const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Trade methods: how the exchange happens.
const (
	TradeMethodFaceToFace = "face-to-face"
	TradeMethodCampus     = "campus"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingPayment:  {OrderStatusPendingShipment, OrderStatusPendingTrade, OrderStatusCancelled},
	OrderStatusPendingShipment: {OrderStatusPendingReceipt, OrderStatusCancelled},
	OrderStatusPendingReceipt:  {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusPendingTrade:    {OrderStatusCompleted, OrderStatusCancelled},
}

var ErrOrderNotFound = errors.New("order not found")
var ErrInvalidOrderStatus = errors.New("unknown order status")
var ErrInvalidTransition = errors.New("invalid order status transition")

// Valid reports whether s is one of the six known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusPendingShipment, OrderStatusPendingReceipt,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusPendingTrade:
		return true
	}
	return false
}

// Terminal reports whether no further transition is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether a transition from the current status to next
// is a legal edge of the state machine.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidTradeMethod reports whether m is a known trade method.
func ValidTradeMethod(m string) bool {
	return m == TradeMethodFaceToFace || m == TradeMethodCampus
}

// PaymentInfo records the buyer-supplied payment metadata. Payment itself is
// not processed here; the transaction id points at an external system.
type PaymentInfo struct {
	Method        string    `json:"method,omitempty" bson:"method,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	PaidAt        time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

// Rating is an optional post-completion review left by one party.
type Rating struct {
	Score   int       `json:"score" bson:"score"`
	Comment string    `json:"comment,omitempty" bson:"comment,omitempty"`
	RatedAt time.Time `json:"rated_at" bson:"rated_at"`
}

// Order is the core aggregate of the trading lifecycle. The item, buyer and
// seller fields are snapshots frozen at creation time; only the embedded ids
// refer back to the live records.
type Order struct {
	ID            string       `json:"-" bson:"_id,omitempty"`
	OrderID       string       `json:"order_id" bson:"order_id"`
	TotalAmount   float64      `json:"total_amount" bson:"total_amount"`
	Status        OrderStatus  `json:"status" bson:"status"`
	Item          ItemSnapshot `json:"item" bson:"item"`
	Buyer         UserSnapshot `json:"buyer" bson:"buyer"`
	Seller        UserSnapshot `json:"seller" bson:"seller"`
	TradeType     string       `json:"trade_type" bson:"trade_type"`
	TradeMethod   string       `json:"trade_method" bson:"trade_method"`
	TradeLocation string       `json:"trade_location,omitempty" bson:"trade_location,omitempty"`
	PaymentInfo   *PaymentInfo `json:"payment_info,omitempty" bson:"payment_info,omitempty"`
	BuyerRating   *Rating      `json:"buyer_rating,omitempty" bson:"buyer_rating,omitempty"`
	SellerRating  *Rating      `json:"seller_rating,omitempty" bson:"seller_rating,omitempty"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}
