package email

import (
	"context"
	"testing"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreviewData(t *testing.T) {
	for name, data := range PreviewData {
		t.Run(string(name), func(t *testing.T) {
			html, err := Render(name, data)
			require.NoError(t, err)
			assert.Contains(t, html, data["UserFirstName"])
		})
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing", nil)
	assert.Error(t, err)
}

func TestPasswordResetMessage(t *testing.T) {
	url := "http://localhost/api/v1/users/reset-password/abc"
	msg, err := PasswordResetMessage("jonas@example.com", "Jonas Schmedtmann", url, "90 minutes")
	require.NoError(t, err)

	assert.Equal(t, []string{"jonas@example.com"}, msg.Recipients)
	assert.Equal(t, "Your password reset token (valid for 90 minutes)", msg.Subject)
	assert.Contains(t, msg.Text, url)
	assert.Contains(t, msg.HTML, "Hi Jonas,")
}

func TestSendWithoutProviderDropsMessage(t *testing.T) {
	logger := zerolog.Nop()
	c := NewClient(&config.Config{}, &logger)
	assert.False(t, c.Enabled())

	assert.NoError(t, c.Send(context.Background(), Message{Recipients: []string{"a@b.io"}, Subject: "hi"}))
	assert.Error(t, c.Send(context.Background(), Message{Subject: "nobody"}))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Jonas", FirstName("Jonas Schmedtmann"))
	assert.Equal(t, "", FirstName(""))
}
