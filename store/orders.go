package store

import (
	"context"
	"fmt"
	"time"

	"go-medicamp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateOrder stamps o with an id, the Pending status and the creation time
// and inserts it. Caller supplied values for those fields are replaced.
func (s *Store) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	if _, err := ParseID(o.CampID); err != nil {
		return nil, err
	}
	o.ID = primitive.NewObjectID()
	o.Status = models.OrderPending
	o.CreatedAt = time.Now().UTC()
	if _, err := s.orders.InsertOne(ctx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return &o, nil
}

// CustomerOrders lists the customer's orders joined with their camps.
// Orders whose camp cannot be resolved are left out.
func (s *Store) CustomerOrders(ctx context.Context, email string) ([]models.OrderView, error) {
	return s.joinedOrders(ctx, bson.D{{Key: "customer.email", Value: email}})
}

// SellerOrders lists the orders placed on the seller's camps
func (s *Store) SellerOrders(ctx context.Context, email string) ([]models.OrderView, error) {
	return s.joinedOrders(ctx, bson.D{{Key: "seller", Value: email}})
}

func (s *Store) joinedOrders(ctx context.Context, match bson.D) ([]models.OrderView, error) {
	cursor, err := s.orders.Aggregate(ctx, campJoinPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	views := []models.OrderView{}
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return views, nil
}

// UpdateOrderStatus sets the status of an order placed on the seller's camp
func (s *Store) UpdateOrderStatus(ctx context.Context, id, sellerEmail, status string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": oid, "seller": sellerEmail},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("update order %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update order %s: %w", id, ErrNotFound)
	}
	return nil
}

// CancelOrder deletes the customer's order unless it was delivered. The
// delivered check is part of the delete filter so it cannot race with a
// status update.
func (s *Store) CancelOrder(ctx context.Context, id, customerEmail string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid, "customer.email": customerEmail}

	res, err := s.orders.DeleteOne(ctx, bson.M{
		"_id":            oid,
		"customer.email": customerEmail,
		"status":         bson.M{"$ne": models.OrderDelivered},
	})
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if res.DeletedCount > 0 {
		return nil
	}

	order, err := findOne[models.Order](ctx, s.orders, filter)
	if err != nil {
		return fmt.Errorf("find order %s: %w", id, err)
	}
	if order.Status == models.OrderDelivered {
		return fmt.Errorf("cancel order %s: %w", id, ErrDelivered)
	}
	// deleted concurrently between the two calls
	return fmt.Errorf("cancel order %s: %w", id, ErrNotFound)
}

// AdminStats counts users, camps and orders and builds the daily order chart
func (s *Store) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{ChartData: []models.DailyStats{}}

	var err error
	if stats.TotalUsers, err = s.users.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalCamps, err = s.camps.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("count camps: %w", err)
	}

	var totals []struct {
		TotalOrders  int64   `bson:"totalOrders"`
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := aggregateAll(ctx, s.orders, orderTotalsPipeline(), &totals); err != nil {
		return nil, fmt.Errorf("order totals: %w", err)
	}
	if len(totals) > 0 {
		stats.TotalOrders = totals[0].TotalOrders
		stats.TotalRevenue = totals[0].TotalRevenue
	}

	if err := aggregateAll(ctx, s.orders, dailyStatsPipeline(), &stats.ChartData); err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	return stats, nil
}

func aggregateAll(ctx context.Context, coll *mongo.Collection, p mongo.Pipeline, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, p)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
