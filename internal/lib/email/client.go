// Package email sends transactional email through Resend.
//
// Bodies are plain text, rendered HTML templates (embedded under
// templates/), or both.
package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Message is one email.
type Message struct {
	Recipients []string
	Subject    string
	Text       string
	HTML       string
}

// Client wraps the Resend client. With no API key configured messages are
// logged and dropped.
type Client struct {
	client *resend.Client
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{
		from:   cfg.Integration.EmailFrom,
		logger: logger,
	}
	if cfg.Integration.ResendAPIKey != "" {
		c.client = resend.NewClient(cfg.Integration.ResendAPIKey)
	}
	return c
}

// Enabled reports whether messages are actually delivered.
func (c *Client) Enabled() bool {
	return c.client != nil
}

// Send delivers msg.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return errors.New("email has no recipients")
	}

	if c.client == nil {
		c.logger.Warn().
			Strs("to", msg.Recipients).
			Str("subject", msg.Subject).
			Msg("email delivery disabled, message dropped")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      msg.Recipients,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}
	if _, err := c.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendTemplate renders tmpl with data and sends it as HTML.
func (c *Client) SendTemplate(ctx context.Context, to, subject string, tmpl Template, data map[string]string) error {
	html, err := Render(tmpl, data)
	if err != nil {
		return err
	}
	return c.Send(ctx, Message{Recipients: []string{to}, Subject: subject, HTML: html})
}
