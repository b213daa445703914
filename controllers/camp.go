package controllers

import (
	"context"
	"net/http"

	"go-medicamp/middleware"
	"go-medicamp/models"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampStore is the persistence used by CampController
type CampStore interface {
	CreateCamp(ctx context.Context, c models.Camp) (primitive.ObjectID, error)
	ListCamps(ctx context.Context) ([]models.Camp, error)
	FindCamp(ctx context.Context, id string) (*models.Camp, error)
	ReplaceCamp(ctx context.Context, id string, c models.Camp) error
	ListSellerCamps(ctx context.Context, sellerEmail string) ([]models.Camp, error)
	DeleteCamp(ctx context.Context, id, ownerEmail string) error
	AdjustParticipants(ctx context.Context, id string, delta int) error
}

// CampController handles camp-related requests
type CampController struct {
	Store CampStore
}

// NewCampController creates a new CampController
func NewCampController(store CampStore) *CampController {
	return &CampController{Store: store}
}

// CreateCamp adds a camp owned by the calling seller
func (cc *CampController) CreateCamp(w http.ResponseWriter, r *http.Request) {
	var camp models.Camp
	if !decodeValid(w, r, &camp) {
		return
	}
	if seller, ok := middleware.AccountFromContext(r.Context()); ok {
		camp.Seller = models.Party{Name: seller.Name, Email: seller.Email, Image: seller.Image}
	} else {
		camp.Seller = models.Party{Email: callerEmail(r)}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	id, err := cc.Store.CreateCamp(ctx, camp)
	if err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"acknowledged": true, "insertedId": id})
}

// GetCamps lists camps
func (cc *CampController) GetCamps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	camps, err := cc.Store.ListCamps(ctx)
	if err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, camps)
}

// GetCamp retrieves a single camp by ID
func (cc *CampController) GetCamp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	camp, err := cc.Store.FindCamp(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, camp)
}

// ReplaceCamp overwrites a camp's details
func (cc *CampController) ReplaceCamp(w http.ResponseWriter, r *http.Request) {
	var camp models.Camp
	if !decodeValid(w, r, &camp) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := cc.Store.ReplaceCamp(ctx, mux.Vars(r)["id"], camp); err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSellerCamps lists the calling seller's camps
func (cc *CampController) GetSellerCamps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	camps, err := cc.Store.ListSellerCamps(ctx, callerEmail(r))
	if err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, camps)
}

// DeleteCamp removes a camp. Sellers can only delete their own camps,
// admins can delete any.
func (cc *CampController) DeleteCamp(w http.ResponseWriter, r *http.Request) {
	owner := callerEmail(r)
	if account, ok := middleware.AccountFromContext(r.Context()); ok && account.Role == models.RoleAdmin {
		owner = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := cc.Store.DeleteCamp(ctx, mux.Vars(r)["id"], owner); err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateParticipants raises or lowers the camp's participant counter
func (cc *CampController) UpdateParticipants(w http.ResponseWriter, r *http.Request) {
	var body models.ParticipantUpdate
	if err := decodeJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := cc.Store.AdjustParticipants(ctx, mux.Vars(r)["id"], body.Delta()); err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
