package models

// PaymentIntentRequest asks for a charge of Quantity times the camp fee
type PaymentIntentRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
	CampID   string  `json:"campId" validate:"required"`
}

// PaymentIntentResponse carries the secret the client needs to confirm payment
type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
