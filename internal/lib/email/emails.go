package email

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) SendWelcomeEmail(ctx context.Context, to, name string) error {
	return c.SendTemplate(ctx, to, "Welcome to Tours!", TemplateWelcome, map[string]string{
		"UserFirstName": FirstName(name),
	})
}

// PasswordResetMessage builds the reset email with both a text and an
// HTML body.
func PasswordResetMessage(to, name, resetURL, validFor string) (Message, error) {
	html, err := Render(TemplatePasswordReset, map[string]string{
		"UserFirstName": FirstName(name),
		"ResetURL":      resetURL,
		"ValidFor":      validFor,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		Recipients: []string{to},
		Subject:    fmt.Sprintf("Your password reset token (valid for %s)", validFor),
		Text: fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password and passwordConfirm to: %s.\n"+
			"If you didn't forget your password, please ignore this email!", resetURL),
		HTML: html,
	}, nil
}

// FirstName returns the first word of a full name.
func FirstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
