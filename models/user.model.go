package models

import (
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Account statuses. An empty status means the user never asked for a role change.
const (
	StatusRequested = "Requested"
	StatusVerified  = "Verified"
)

// User represents a registered user. Email is the identity key.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	Role      string             `bson:"role" json:"role"`
	Status    string             `bson:"status,omitempty" json:"status,omitempty"`
	Timestamp int64              `bson:"timestamp" json:"timestamp"` // Unix millis at creation

	// Profile keeps any other fields the client sent on first login. They are
	// stored and returned alongside the known fields.
	Profile map[string]interface{} `bson:",inline" json:"-"`
}

// userFields are the keys owned by User's named fields
var userFields = map[string]bool{
	"_id": true, "name": true, "email": true, "image": true,
	"role": true, "status": true, "timestamp": true,
}

// IsUserField reports whether key is one of User's named fields
func IsUserField(key string) bool {
	return userFields[key]
}

type userJSON User

// UnmarshalJSON decodes the named fields and collects the rest into Profile
func (u *User) UnmarshalJSON(data []byte) error {
	var known userJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	known.Profile = nil
	for k, v := range all {
		if userFields[k] {
			continue
		}
		if known.Profile == nil {
			known.Profile = map[string]interface{}{}
		}
		known.Profile[k] = v
	}
	*u = User(known)
	return nil
}

// MarshalJSON writes the named fields followed by the Profile extras
func (u User) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(userJSON(u))
	if err != nil || len(u.Profile) == 0 {
		return data, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	for k, v := range u.Profile {
		if !userFields[k] {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Party is the identity embedded in camps and orders
type Party struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email" json:"email"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// RoleUpdate is the admin request body for PATCH /user/role/{email}
type RoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=customer seller admin"`
}
