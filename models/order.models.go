package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. New orders always start Pending.
const (
	OrderPending   = "Pending"
	OrderDelivered = "Delivered"
)

// Order represents a customer's registration for a camp
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Customer      Party              `bson:"customer" json:"customer"`
	Seller        string             `bson:"seller" json:"seller"` // seller email
	CampID        string             `bson:"campId" json:"campId"`
	Price         float64            `bson:"price" json:"price"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Status        string             `bson:"status,omitempty" json:"status,omitempty"` // e.g., "Pending", "Delivered"
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// OrderRequest is the customer request body for POST /order. Id, status and
// creation time are owned by the server.
type OrderRequest struct {
	Customer      Party   `json:"customer"`
	Seller        string  `json:"seller" validate:"required,email"`
	CampID        string  `json:"campId" validate:"required,mongodb"`
	Price         float64 `json:"price" validate:"gte=0"`
	Quantity      int     `json:"quantity"`
	TransactionID string  `json:"transactionId,omitempty"`
}

// Order builds the order placed by customerEmail
func (r OrderRequest) Order(customerEmail string) Order {
	customer := r.Customer
	customer.Email = customerEmail
	return Order{
		Customer:      customer,
		Seller:        r.Seller,
		CampID:        r.CampID,
		Price:         r.Price,
		Quantity:      r.Quantity,
		TransactionID: r.TransactionID,
	}
}

// OrderView is an order joined with the camp it references
type OrderView struct {
	Order       `bson:",inline"`
	Name        string `bson:"name" json:"name"`
	Image       string `bson:"image" json:"image"`
	Participant int    `bson:"participant" json:"participant"`
}

// StatusUpdate is the seller request body for PATCH /orders/{id}
type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
}
