package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-medicamp/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertUser inserts u as a customer unless a user with the same email
// already exists. It returns the stored record and whether it was created.
// An existing record is returned unchanged.
func (s *Store) UpsertUser(ctx context.Context, u models.User) (*models.User, bool, error) {
	onInsert := bson.M{}
	for k, v := range u.Profile {
		if !models.IsUserField(k) {
			onInsert[k] = v
		}
	}
	onInsert["email"] = u.Email
	onInsert["role"] = models.RoleCustomer
	onInsert["timestamp"] = time.Now().UnixMilli()
	if u.Name != "" {
		onInsert["name"] = u.Name
	}
	if u.Image != "" {
		onInsert["image"] = u.Image
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": u.Email},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert user %s: %w", u.Email, err)
	}

	stored, err := s.FindUser(ctx, u.Email)
	if err != nil {
		return nil, false, err
	}
	return stored, res.UpsertedCount > 0, nil
}

// FindUser returns the user with the given email or ErrNotFound
func (s *Store) FindUser(ctx context.Context, email string) (*models.User, error) {
	u, err := findOne[models.User](ctx, s.users, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", email, err)
	}
	return u, nil
}

// RequestStatus moves a user to Requested. The update only matches users
// that are not already Requested, so concurrent calls cannot both succeed.
func (s *Store) RequestStatus(ctx context.Context, email string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email, "status": bson.M{"$ne": models.StatusRequested}},
		bson.M{"$set": bson.M{"status": models.StatusRequested}},
	)
	if err != nil {
		return fmt.Errorf("request status for %s: %w", email, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	if _, err := s.FindUser(ctx, email); err != nil {
		return err
	}
	return fmt.Errorf("request status for %s: %w", email, ErrAlreadyRequested)
}

// ListUsersExcept returns every user but the one with the given email
func (s *Store) ListUsersExcept(ctx context.Context, email string) ([]models.User, error) {
	users, err := findAll[models.User](ctx, s.users, bson.M{"email": bson.M{"$ne": email}})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetRole assigns role and marks the user Verified
func (s *Store) SetRole(ctx context.Context, email, role string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"role": role, "status": models.StatusVerified}},
	)
	if err != nil {
		return fmt.Errorf("set role for %s: %w", email, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set role for %s: %w", email, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err means the document does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
