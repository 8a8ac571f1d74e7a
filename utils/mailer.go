package utils

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"gopkg.in/gomail.v2"
)

const gmailSendURL = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"

// EmailPayload is a composed email handed to a mail transport
type EmailPayload struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	From     string
	ReplyTo  string
}

// EmailResult reports the outcome of a single send attempt. There is no
// retry anywhere in the send path; a failed result is terminal for that call
// and must be re-triggered by the caller.
type EmailResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Mailer hands a composed email to a transport
type Mailer interface {
	Send(payload EmailPayload) EmailResult
	Provider() string
}

// MailerConfig selects and configures the transport
type MailerConfig struct {
	Provider         string // mock, gmail or smtp
	FromEmail        string
	GmailAccessToken string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
}

// NewMailer builds the transport named by the config, defaulting to the
// simulated sender
func NewMailer(cfg MailerConfig) Mailer {
	switch cfg.Provider {
	case "gmail":
		return &GmailMailer{AccessToken: cfg.GmailAccessToken, From: cfg.FromEmail}
	case "smtp":
		return &SMTPMailer{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			Username: cfg.SMTPUsername, Password: cfg.SMTPPassword,
			From: cfg.FromEmail,
		}
	default:
		return &MockMailer{}
	}
}

// MockMailer simulates a transport for development: a short artificial delay,
// then success with a synthesized message id.
type MockMailer struct {
	// Latency overrides the simulated delay; zero means 500ms
	Latency time.Duration
}

func (m *MockMailer) Provider() string { return "INTERNAL" }

func (m *MockMailer) Send(payload EmailPayload) EmailResult {
	delay := m.Latency
	if delay == 0 {
		delay = 500 * time.Millisecond
	}
	time.Sleep(delay)

	return EmailResult{
		Success:   true,
		MessageID: "msg_" + uuid.NewString(),
	}
}

// GmailMailer posts a raw MIME message to the Gmail API with a bearer token.
// One attempt, no retry; the provider's error text is surfaced on failure.
type GmailMailer struct {
	AccessToken string
	From        string

	client fasthttp.Client
}

func (g *GmailMailer) Provider() string { return "GMAIL" }

func (g *GmailMailer) Send(payload EmailPayload) EmailResult {
	if payload.From == "" {
		payload.From = g.From
	}

	raw, err := BuildRawMessage(payload)
	if err != nil {
		return EmailResult{Error: fmt.Sprintf("failed to build message: %v", err)}
	}

	body, err := json.Marshal(map[string]string{
		"raw": base64.RawURLEncoding.EncodeToString(raw),
	})
	if err != nil {
		return EmailResult{Error: err.Error()}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(gmailSendURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+g.AccessToken)
	req.SetBody(body)

	if err := g.client.DoTimeout(req, resp, 15*time.Second); err != nil {
		return EmailResult{Error: fmt.Sprintf("gmail request failed: %v", err)}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := fmt.Sprintf("gmail API returned status %d", resp.StatusCode())
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return EmailResult{Error: msg}
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body(), &sent); err != nil {
		return EmailResult{Error: fmt.Sprintf("unexpected gmail response: %v", err)}
	}

	return EmailResult{Success: true, MessageID: sent.ID}
}

// SMTPMailer delivers through a plain SMTP relay
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTPMailer) Provider() string { return "SMTP" }

func (s *SMTPMailer) Send(payload EmailPayload) EmailResult {
	from := payload.From
	if from == "" {
		from = s.From
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", payload.To)
	m.SetHeader("Subject", payload.Subject)
	if payload.ReplyTo != "" {
		m.SetHeader("Reply-To", payload.ReplyTo)
	}
	m.SetBody("text/plain", textOrStripped(payload))
	m.AddAlternative("text/html", payload.HTMLBody)

	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return EmailResult{Error: fmt.Sprintf("smtp send error: %v", err)}
	}

	return EmailResult{Success: true, MessageID: "smtp_" + uuid.NewString()}
}

// BuildRawMessage assembles a multipart/alternative MIME message with plain
// text and HTML parts
func BuildRawMessage(payload EmailPayload) ([]byte, error) {
	var b bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: payload.From}})
	h.SetAddressList("To", []*mail.Address{{Address: payload.To}})
	h.SetSubject(payload.Subject)
	if payload.ReplyTo != "" {
		h.SetAddressList("Reply-To", []*mail.Address{{Address: payload.ReplyTo}})
	}

	mw, err := mail.CreateWriter(&b, h)
	if err != nil {
		return nil, err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}

	var textHeader mail.InlineHeader
	textHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(pw, textOrStripped(payload)); err != nil {
		return nil, err
	}
	pw.Close()

	var htmlHeader mail.InlineHeader
	htmlHeader.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	pw, err = tw.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(pw, payload.HTMLBody); err != nil {
		return nil, err
	}
	pw.Close()

	tw.Close()
	mw.Close()

	return b.Bytes(), nil
}

func textOrStripped(payload EmailPayload) string {
	if payload.TextBody != "" {
		return payload.TextBody
	}
	return HTMLToText(payload.HTMLBody)
}
