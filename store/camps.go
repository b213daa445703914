package store

import (
	"context"
	"fmt"

	"go-medicamp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateCamp inserts c and returns its generated id
func (s *Store) CreateCamp(ctx context.Context, c models.Camp) (primitive.ObjectID, error) {
	c.ID = primitive.NewObjectID()
	if _, err := s.camps.InsertOne(ctx, c); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert camp: %w", err)
	}
	return c.ID, nil
}

// ListCamps returns the first camps of the collection
func (s *Store) ListCamps(ctx context.Context) ([]models.Camp, error) {
	camps, err := findAll[models.Camp](ctx, s.camps, bson.M{}, options.Find().SetLimit(campListLimit))
	if err != nil {
		return nil, fmt.Errorf("list camps: %w", err)
	}
	return camps, nil
}

// FindCamp returns the camp with the given hex id
func (s *Store) FindCamp(ctx context.Context, id string) (*models.Camp, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	c, err := findOne[models.Camp](ctx, s.camps, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("find camp %s: %w", id, err)
	}
	return c, nil
}

// ReplaceCamp overwrites the descriptive fields of a camp. The seller and
// participant counter are left untouched.
func (s *Store) ReplaceCamp(ctx context.Context, id string, c models.Camp) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.camps.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":         c.Name,
		"image":        c.Image,
		"fee":          c.Fee,
		"location":     c.Location,
		"dateTime":     c.DateTime,
		"professional": c.Professional,
		"description":  c.Description,
	}})
	if err != nil {
		return fmt.Errorf("update camp %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update camp %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListSellerCamps returns the camps owned by the seller with the given email
func (s *Store) ListSellerCamps(ctx context.Context, sellerEmail string) ([]models.Camp, error) {
	camps, err := findAll[models.Camp](ctx, s.camps, bson.M{"seller.email": sellerEmail})
	if err != nil {
		return nil, fmt.Errorf("list camps of %s: %w", sellerEmail, err)
	}
	return camps, nil
}

// DeleteCamp removes a camp. When ownerEmail is set only a camp owned by that
// seller matches; an empty ownerEmail deletes regardless of owner.
func (s *Store) DeleteCamp(ctx context.Context, id, ownerEmail string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": oid}
	if ownerEmail != "" {
		filter["seller.email"] = ownerEmail
	}
	res, err := s.camps.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete camp %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete camp %s: %w", id, ErrNotFound)
	}
	return nil
}

// AdjustParticipants atomically adds delta to the camp's participant counter.
// The counter is not bounded.
func (s *Store) AdjustParticipants(ctx context.Context, id string, delta int) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.camps.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"participant": delta}})
	if err != nil {
		return fmt.Errorf("adjust participants of %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("adjust participants of %s: %w", id, ErrNotFound)
	}
	return nil
}
