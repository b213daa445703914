// controllers/order.go
package controllers

import (
	"context"
	"net/http"

	"go-medicamp/models"
	"go-medicamp/notify"
	"go-medicamp/utils"

	"github.com/gorilla/mux"
)

// OrderStore is the persistence used by OrderController
type OrderStore interface {
	CreateOrder(ctx context.Context, o models.Order) (*models.Order, error)
	CustomerOrders(ctx context.Context, email string) ([]models.OrderView, error)
	SellerOrders(ctx context.Context, email string) ([]models.OrderView, error)
	UpdateOrderStatus(ctx context.Context, id, sellerEmail, status string) error
	CancelOrder(ctx context.Context, id, customerEmail string) error
}

// OrderController handles order-related requests
type OrderController struct {
	Store    OrderStore
	Notifier notify.Notifier
}

// NewOrderController creates a new OrderController
func NewOrderController(store OrderStore, notifier notify.Notifier) *OrderController {
	return &OrderController{Store: store, Notifier: notifier}
}

// CreateOrder places an order for the authenticated customer and notifies
// both the customer and the seller
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	order := req.Order(callerEmail(r))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	created, err := oc.Store.CreateOrder(ctx, order)
	if err != nil {
		writeError(w, r, err, "Order not found")
		return
	}

	orderID := created.ID.Hex()
	oc.Notifier.Notify(r.Context(), utils.OrderPlacedEmail(created.Customer.Email, orderID, created.Price))
	oc.Notifier.Notify(r.Context(), utils.NewOrderEmail(created.Seller, orderID, created.Customer.Email))

	writeJSON(w, http.StatusCreated, map[string]interface{}{"acknowledged": true, "insertedId": orderID})
}

// CustomerOrders lists a customer's orders joined with camp details
func (oc *OrderController) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	orders, err := oc.Store.CustomerOrders(ctx, mux.Vars(r)["email"])
	if err != nil {
		writeError(w, r, err, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// SellerOrders lists the orders placed on a seller's camps
func (oc *OrderController) SellerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	orders, err := oc.Store.SellerOrders(ctx, mux.Vars(r)["email"])
	if err != nil {
		writeError(w, r, err, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus lets the seller move an order along, e.g. to Delivered
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body models.StatusUpdate
	if !decodeValid(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := oc.Store.UpdateOrderStatus(ctx, mux.Vars(r)["id"], callerEmail(r), body.Status); err != nil {
		writeError(w, r, err, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": body.Status})
}

// CancelOrder deletes the caller's order unless it has been delivered
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := oc.Store.CancelOrder(ctx, mux.Vars(r)["id"], callerEmail(r)); err != nil {
		writeError(w, r, err, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
