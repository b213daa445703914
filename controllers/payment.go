package controllers

import (
	"context"
	"net/http"

	"go-medicamp/models"
)

// IntentCreator creates a payment intent and returns its client secret
type IntentCreator interface {
	CreateIntent(ctx context.Context, quantity float64, campID string) (string, error)
}

// PaymentController bridges checkout to the payment processor
type PaymentController struct {
	Payments IntentCreator
}

func NewPaymentController(payments IntentCreator) *PaymentController {
	return &PaymentController{Payments: payments}
}

// CreatePaymentIntent charges quantity times the camp fee
func (pc *PaymentController) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var body models.PaymentIntentRequest
	if !decodeValid(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	secret, err := pc.Payments.CreateIntent(ctx, body.Quantity, body.CampID)
	if err != nil {
		writeError(w, r, err, "Camp not found")
		return
	}
	writeJSON(w, http.StatusOK, models.PaymentIntentResponse{ClientSecret: secret})
}
