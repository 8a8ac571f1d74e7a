package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerSelectsProvider(t *testing.T) {
	assert.Equal(t, "INTERNAL", NewMailer(MailerConfig{Provider: "mock"}).Provider())
	assert.Equal(t, "GMAIL", NewMailer(MailerConfig{Provider: "gmail"}).Provider())
	assert.Equal(t, "SMTP", NewMailer(MailerConfig{Provider: "smtp"}).Provider())
	// Anything unrecognized degrades to the simulated sender
	assert.Equal(t, "INTERNAL", NewMailer(MailerConfig{Provider: ""}).Provider())
}

func TestMockMailerSend(t *testing.T) {
	m := &MockMailer{Latency: time.Millisecond}

	result := m.Send(EmailPayload{To: "jane@acme.io", Subject: "Hello", HTMLBody: "<p>Hi</p>"})
	require.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.MessageID, "msg_"))
	assert.Empty(t, result.Error)

	// Each send gets a fresh message id
	second := m.Send(EmailPayload{To: "jane@acme.io"})
	assert.NotEqual(t, result.MessageID, second.MessageID)
}

func TestBuildRawMessageMultipart(t *testing.T) {
	raw, err := BuildRawMessage(EmailPayload{
		From:     "outreach@leadreach.app",
		To:       "jane@acme.io",
		Subject:  "Quick question",
		HTMLBody: "<p>Hello from the team</p>",
	})
	require.NoError(t, err)

	msg := string(raw)
	assert.Contains(t, msg, "From: <outreach@leadreach.app>")
	assert.Contains(t, msg, "To: <jane@acme.io>")
	assert.Contains(t, msg, "Subject: Quick question")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain")
	assert.Contains(t, msg, "text/html")
	assert.Contains(t, msg, "<p>Hello from the team</p>")
	// Plain part derived from the HTML
	assert.Contains(t, msg, "Hello from the team")
}

func TestBuildRawMessagePrefersExplicitTextBody(t *testing.T) {
	raw, err := BuildRawMessage(EmailPayload{
		From:     "outreach@leadreach.app",
		To:       "jane@acme.io",
		Subject:  "Quick question",
		HTMLBody: "<p>HTML version</p>",
		TextBody: "Plain version",
	})
	require.NoError(t, err)

	assert.Contains(t, string(raw), "Plain version")
}
