package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/monsoonshop/monsoon-backend/pkg/config"
)

// SendgridSender sends order confirmations through the SendGrid API.
type SendgridSender struct {
	client   *sendgrid.Client
	from     *sgmail.Email
	fromName string
}

// NewSendgridSender builds a sender from the configured API key.
func NewSendgridSender(cfg config.SendgridConfig) (*SendgridSender, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, errors.New("sendgrid from address is required")
	}
	return &SendgridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.DefaultFrom),
	}, nil
}

// SendOrderConfirmation delivers the post-payment confirmation email.
func (s *SendgridSender) SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	if msg.To == "" {
		return errors.New("recipient address is required")
	}

	shortID := msg.OrderID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	subject := "Your order is confirmed"
	plain := fmt.Sprintf("Thank you for your purchase. Order #%s has been confirmed. Total: %s %s.",
		shortID, msg.Total.StringFixed(2), strings.ToUpper(msg.Currency))
	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: auto;">
  <h1 style="text-align: center; text-transform: uppercase; letter-spacing: 2px;">Monsoon</h1>
  <p>Thank you for your purchase!</p>
  <p>Your order <strong>#%s</strong> has been confirmed.</p>
  <hr style="border: none; border-top: 1px solid #eee;" />
  <p>Total paid: <strong>%s %s</strong></p>
</div>`, shortID, msg.Total.StringFixed(2), strings.ToUpper(msg.Currency))

	message := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail("", msg.To), plain, html)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d", resp.StatusCode)
	}
	return nil
}
