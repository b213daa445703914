// utils/email.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"html"

	"go-medicamp/logging"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNoRecipient is returned when an email has no destination address
var ErrNoRecipient = errors.New("email has no recipient")

// Email is one outbound message
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// emailBackend delivers a single message through a provider API
type emailBackend interface {
	send(ctx context.Context, from string, e Email) error
}

// EmailService sends emails through the configured provider
type EmailService struct {
	sender  string
	backend emailBackend
}

// NewEmailService returns an EmailService for provider "postmark",
// "sendgrid" or "log"
func NewEmailService(provider, apiKey, sender string) (*EmailService, error) {
	var backend emailBackend
	switch provider {
	case "postmark":
		backend = &postmarkBackend{client: postmark.NewClient(apiKey, "")}
	case "sendgrid":
		backend = &sendgridBackend{client: sendgrid.NewSendClient(apiKey)}
	case "log":
		backend = logBackend{}
	default:
		return nil, fmt.Errorf("unknown email provider %q", provider)
	}
	return &EmailService{sender: sender, backend: backend}, nil
}

// SendEmail sends e. A missing recipient is reported as ErrNoRecipient
// without contacting the provider.
func (es *EmailService) SendEmail(ctx context.Context, e Email) error {
	if e.To == "" {
		return ErrNoRecipient
	}
	if err := es.backend.send(ctx, es.sender, e); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type postmarkBackend struct {
	client *postmark.Client
}

func (b *postmarkBackend) send(_ context.Context, from string, e Email) error {
	_, err := b.client.SendEmail(postmark.Email{
		From:     from,
		To:       e.To,
		Subject:  e.Subject,
		HtmlBody: e.HTML,
		TextBody: e.HTML,
	})
	return err
}

type sendgridBackend struct {
	client *sendgrid.Client
}

func (b *sendgridBackend) send(ctx context.Context, from string, e Email) error {
	msg := mail.NewSingleEmail(mail.NewEmail("", from), e.Subject, mail.NewEmail("", e.To), e.HTML, e.HTML)
	resp, err := b.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logBackend writes mails to the log instead of sending them
type logBackend struct{}

func (logBackend) send(ctx context.Context, from string, e Email) error {
	logging.Ctx(ctx).Info().Str("from", from).Str("to", e.To).Str("subject", e.Subject).Msg("email (log provider)")
	return nil
}

// Templated values come from request bodies and are always HTML escaped.

// WelcomeEmail greets a newly created user
func WelcomeEmail(to, name string) Email {
	if name == "" {
		name = "there"
	}
	return Email{
		To:      to,
		Subject: "Welcome to MediHub",
		HTML:    fmt.Sprintf("<strong>Hi %s,</strong><br><br>Your MediHub account is ready. Browse upcoming medical camps and register any time.", html.EscapeString(name)),
	}
}

// OrderPlacedEmail confirms a camp registration to the customer
func OrderPlacedEmail(to, orderID string, price float64) Email {
	return Email{
		To:      to,
		Subject: "Camp Registration Confirmed",
		HTML: fmt.Sprintf(
			"<strong>Thank you for registering!</strong><br><br>Your order (ID: %s) has been placed.<br>Total fee: <strong>$%.2f</strong>",
			html.EscapeString(orderID), price,
		),
	}
}

// NewOrderEmail tells a seller that one of their camps received an order
func NewOrderEmail(to, orderID, customer string) Email {
	return Email{
		To:      to,
		Subject: "New Camp Registration",
		HTML:    fmt.Sprintf("<strong>You have a new order</strong> (ID: %s) from %s. Please process it from your dashboard.",
			html.EscapeString(orderID), html.EscapeString(customer)),
	}
}
