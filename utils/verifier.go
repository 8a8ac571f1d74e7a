package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/likexian/whois"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// VerificationResult reports the outcome of checking one address
type VerificationResult struct {
	Email       string `json:"email"`
	Status      string `json:"status"` // valid, invalid, risky, unknown
	Deliverable bool   `json:"deliverable"`
	Confidence  int    `json:"confidence"` // 0-100
	Details     string `json:"details,omitempty"`
	WHOIS       string `json:"whois,omitempty"`
}

// Verifier checks contact addresses. With a Hunter key it consults the
// email-verifier API; otherwise it degrades to syntax and MX checks. No
// check here ever errors out - external failures fall back to the offline
// result.
type Verifier struct {
	HunterAPIKey string
	Logger       *logrus.Logger

	client fasthttp.Client
}

func NewVerifier(hunterKey string, logger *logrus.Logger) *Verifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Verifier{HunterAPIKey: hunterKey, Logger: logger}
}

// Verify runs the full check pipeline for one address
func (v *Verifier) Verify(email string) VerificationResult {
	result := VerificationResult{Email: email, Status: "unknown"}

	if err := checkmail.ValidateFormat(email); err != nil {
		result.Status = "invalid"
		result.Details = "malformed address"
		return result
	}

	domain := email[strings.LastIndex(email, "@")+1:]

	if v.HunterAPIKey != "" {
		if hunterResult, ok := v.verifyViaHunter(email); ok {
			hunterResult.WHOIS = v.whoisSnippet(domain)
			return hunterResult
		}
		// fall through to the offline checks
	}

	mxRecords, err := net.LookupMX(domain)
	if err != nil || len(mxRecords) == 0 {
		result.Status = "risky"
		result.Confidence = 20
		result.Details = "no MX records for domain"
		return result
	}

	result.Status = "valid"
	result.Deliverable = true
	result.Confidence = 60
	result.Details = "format and MX checks passed"
	result.WHOIS = v.whoisSnippet(domain)
	return result
}

func (v *Verifier) verifyViaHunter(email string) (VerificationResult, bool) {
	uri := fmt.Sprintf(
		"https://api.hunter.io/v2/email-verifier?email=%s&api_key=%s",
		url.QueryEscape(email), url.QueryEscape(v.HunterAPIKey),
	)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	if err := v.client.DoTimeout(req, resp, 15*time.Second); err != nil {
		v.Logger.WithError(err).Error("Hunter verification request failed")
		return VerificationResult{}, false
	}

	var payload struct {
		Data struct {
			Result string `json:"result"`
			Score  int    `json:"score"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		v.Logger.WithError(err).Error("Hunter verification parse failed")
		return VerificationResult{}, false
	}

	deliverable := payload.Data.Result == "deliverable"
	status := "risky"
	if deliverable {
		status = "valid"
	} else if payload.Data.Result == "undeliverable" {
		status = "invalid"
	}

	return VerificationResult{
		Email:       email,
		Status:      status,
		Deliverable: deliverable,
		Confidence:  payload.Data.Score,
		Details:     "hunter: " + payload.Data.Result,
	}, true
}

// whoisSnippet fetches the first lines of the domain's WHOIS record for the
// verification report. Best effort; empty on any failure.
func (v *Verifier) whoisSnippet(domain string) string {
	raw, err := whois.Whois(domain)
	if err != nil {
		v.Logger.WithError(err).WithField("domain", domain).Debug("whois lookup failed")
		return ""
	}

	lines := strings.SplitN(raw, "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
