package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-market/trading-api/internal/core/domain"
	"github.com/campus-market/trading-api/internal/core/ports"
)

const collectionOrders = "orders"

// OrderRepository implements ports.OrderRepository on MongoDB. All lookups go
// through the human-readable order_id, never the storage _id.
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(collectionOrders)}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	if err := r.coll.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

// Transition applies the guarded status update. The filter includes the
// expected current status, so a concurrent transition that got there first
// makes this one miss.
func (r *OrderRepository) Transition(ctx context.Context, orderID string, from, to domain.OrderStatus, payment *domain.PaymentInfo) (*domain.Order, error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if payment != nil {
		set["payment_info"] = payment
	}

	var order domain.Order
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"order_id": orderID, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("transition order: %w", err)
	}

	// Guard miss: tell the caller whether the order vanished or raced.
	if _, findErr := r.FindByOrderID(ctx, orderID); findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrInvalidTransition)
}

func (r *OrderRepository) SetRating(ctx context.Context, orderID string, party string, rating domain.Rating) (*domain.Order, error) {
	field := party + "_rating"

	var order domain.Order
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"order_id": orderID},
		bson.M{"$set": bson.M{field: rating, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("rate order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID string, f ports.OrderListFilter) ([]*domain.Order, error) {
	filter := bson.M{"$or": []bson.M{
		{"buyer.id": userID},
		{"seller.id": userID},
	}}
	if f.TradeType != "" {
		filter["trade_type"] = f.TradeType
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []*domain.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// EnsureIndexes creates the unique order id index that backstops the
// best-effort id generator, plus the user history indexes.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "buyer.id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller.id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
