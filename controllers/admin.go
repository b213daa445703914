package controllers

import (
	"context"
	"net/http"

	"go-medicamp/models"
)

// StatsStore computes the admin dashboard numbers
type StatsStore interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

// AdminController serves admin-only aggregates
type AdminController struct {
	Store StatsStore
}

func NewAdminController(store StatsStore) *AdminController {
	return &AdminController{Store: store}
}

// Stats returns user, camp and order totals plus the daily order chart
func (ac *AdminController) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	stats, err := ac.Store.AdminStats(ctx)
	if err != nil {
		writeError(w, r, err, "Stats not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
