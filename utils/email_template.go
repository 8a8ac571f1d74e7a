package utils

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/badoux/checkmail"
)

// EmailContext carries the lead/campaign attributes interpolated into the
// outreach templates
type EmailContext struct {
	CompanyName    string
	Industry       string
	Website        string
	RecipientEmail string
	SenderName     string
	SenderCompany  string
	CampaignType   string
}

// GeneratedEmail is the rendered output of the template engine
type GeneratedEmail struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

type templateBucket struct {
	subjects []string
	bodies   []string
}

// Embedded outreach templates by campaign type. Placeholders use the
// {name} form and are substituted from EmailContext.
var emailTemplates = map[string]templateBucket{
	"REAM_CLEANING": {
		subjects: []string{
			"Professional Cleaning Services for {companyName}",
			"Quick Question About Your Cleaning Needs",
			"Elevate Your Workspace with Ream Cleaning",
		},
		bodies: []string{
			`<p>Hello,</p>
<p>I noticed <strong>{companyName}</strong> is doing great work in the {industry} space. We're Ream Cleaning, and we specialize in professional commercial cleaning services.</p>
<p>Many businesses like yours have found that a consistently clean environment:</p>
<ul>
<li>Boosts employee productivity by up to 15%</li>
<li>Creates a better first impression for clients</li>
<li>Reduces sick days and maintains a healthier workspace</li>
</ul>
<p>Would you be open to a quick 10-minute call to see if we might be a fit?</p>
<p>Best regards,<br/>{senderName}<br/>{senderCompany}</p>`,
		},
	},
	"UNIDOXIA": {
		subjects: []string{
			"Document Management Solution for {companyName}",
			"Streamline Student Records with UniDoxia",
			"Quick Question About Your Documentation Process",
		},
		bodies: []string{
			`<p>Dear Team at {companyName},</p>
<p>I'm reaching out because UniDoxia helps educational institutions streamline their document management processes.</p>
<p>Our platform offers:</p>
<ul>
<li>Automated document verification and processing</li>
<li>Secure student record management</li>
<li>Integration with existing systems</li>
<li>Compliance with educational data regulations</li>
</ul>
<p>Would you be interested in seeing a quick demo of how other institutions are saving 20+ hours per week?</p>
<p>Best,<br/>{senderName}<br/>{senderCompany}</p>`,
		},
	},
	"COLD_OUTREACH": {
		subjects: []string{
			"Quick question about {companyName}",
			"Idea for {companyName}",
			"{senderCompany} + {companyName}",
		},
		bodies: []string{
			`<p>Hi there,</p>
<p>I came across {companyName} and was impressed by what you're building in the {industry} space.</p>
<p>I'm {senderName} from {senderCompany}. We help businesses like yours [describe value proposition].</p>
<p>Would you be open to a brief chat to explore if there's a fit?</p>
<p>No pressure either way - just thought it might be worth a conversation.</p>
<p>Best,<br/>{senderName}</p>`,
		},
	},
	"FOLLOW_UP": {
		subjects: []string{
			"Following up on my previous email",
			"Did you get a chance to review?",
			"Circling back - {companyName}",
		},
		bodies: []string{
			`<p>Hi,</p>
<p>I wanted to follow up on my previous message about [service/product].</p>
<p>I understand you're busy, so I'll keep this brief. If you have 15 minutes this week, I'd love to show you how we can help {companyName}.</p>
<p>Would [suggest specific times] work for a quick call?</p>
<p>Thanks,<br/>{senderName}</p>`,
		},
	},
}

// Location substrings mapped to the greeting text used by AddPersonalization
var locationGreetings = []struct {
	match    string
	greeting string
}{
	{"london", "London"},
	{"uk", "the UK"},
	{"usa", "across the pond"},
	{"san francisco", "sunny San Francisco"},
	{"new york", "NYC"},
}

// Role-based local parts; addresses starting with one of these are generic
// mailboxes rather than named individuals
var rolePrefixes = []string{
	"info@", "contact@", "hello@", "admin@", "support@",
	"sales@", "marketing@", "team@", "office@", "careers@",
	"jobs@", "hr@", "press@", "media@", "enquiries@", "inquiries@",
}

var (
	tagRe      = regexp.MustCompile(`<[^>]*>`)
	brRe       = regexp.MustCompile(`<br\s*/?>`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// GenerateEmail renders an outreach email for the given context, picking a
// subject and body variant uniformly at random. Callers needing
// deterministic output use GenerateEmailAt instead.
func GenerateEmail(ctx EmailContext) GeneratedEmail {
	bucket := bucketFor(ctx.CampaignType)
	return GenerateEmailAt(ctx, rand.Intn(len(bucket.subjects)), rand.Intn(len(bucket.bodies)))
}

// GenerateEmailAt renders an outreach email using explicit variant indexes.
// Unknown campaign types fall back to the cold-outreach bucket; out-of-range
// indexes wrap. It never fails: absent context fields degrade to neutral
// defaults.
func GenerateEmailAt(ctx EmailContext, subjectIdx, bodyIdx int) GeneratedEmail {
	bucket := bucketFor(ctx.CampaignType)

	subject := replacePlaceholders(bucket.subjects[wrapIndex(subjectIdx, len(bucket.subjects))], ctx)
	htmlBody := replacePlaceholders(bucket.bodies[wrapIndex(bodyIdx, len(bucket.bodies))], ctx)

	return GeneratedEmail{
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: HTMLToText(htmlBody),
	}
}

// wrapIndex maps any integer onto [0, n); Go's % keeps the sign of the
// dividend, so negative indexes need the extra addition
func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}

func bucketFor(campaignType string) templateBucket {
	if bucket, ok := emailTemplates[campaignType]; ok {
		return bucket
	}
	return emailTemplates["COLD_OUTREACH"]
}

func replacePlaceholders(text string, ctx EmailContext) string {
	industry := ctx.Industry
	if industry == "" {
		industry = "business"
	}

	r := strings.NewReplacer(
		"{companyName}", ctx.CompanyName,
		"{industry}", industry,
		"{website}", ctx.Website,
		"{senderName}", ctx.SenderName,
		"{senderCompany}", ctx.SenderCompany,
		"{recipientEmail}", ctx.RecipientEmail,
	)
	return r.Replace(text)
}

// HTMLToText derives a plaintext body from HTML. Only <p>, <br> and <li>
// map to line breaks and bullets; every other tag is dropped. Deliberately
// lossy - this is not a full HTML-to-text engine.
func HTMLToText(html string) string {
	text := strings.ReplaceAll(html, "<p>", "\n")
	text = strings.ReplaceAll(text, "</p>", "\n")
	text = brRe.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, "<li>", "• ")
	text = strings.ReplaceAll(text, "</li>", "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// AddPersonalization rewrites a leading generic greeting to reference the
// lead's location when it matches a known region. No-op when nothing
// matches or the body opens differently.
func AddPersonalization(email GeneratedEmail, location string) GeneratedEmail {
	if location == "" {
		return email
	}
	greeting := locationGreeting(location)
	if greeting == "" {
		return email
	}

	html := email.HTMLBody
	html = strings.Replace(html, "<p>Hello,</p>", fmt.Sprintf("<p>Hello from %s!</p>", greeting), 1)
	html = strings.Replace(html, "<p>Hi there,</p>", fmt.Sprintf("<p>Hi from %s!</p>", greeting), 1)

	email.HTMLBody = html
	return email
}

func locationGreeting(location string) string {
	lower := strings.ToLower(location)
	for _, g := range locationGreetings {
		if strings.Contains(lower, g.match) {
			return g.greeting
		}
	}
	return ""
}

// ComplianceFooter builds the unsubscribe/postal footer appended to every
// generated draft
func ComplianceFooter(unsubscribeURL, postalAddress string) string {
	return fmt.Sprintf(`
<div style="margin-top: 40px; padding-top: 20px; border-top: 1px solid #e5e7eb; font-size: 12px; color: #6b7280;">
<p>This email was sent to you because we believe our services may be relevant to your business.</p>
<p><a href="%s" style="color: #2563eb;">Unsubscribe</a> | %s</p>
</div>`, unsubscribeURL, postalAddress)
}

// IsRoleBasedEmail reports whether the address uses a generic local part
// (info@, contact@, ...) rather than a named individual
func IsRoleBasedEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, prefix := range rolePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ValidEmailAddress checks address syntax before a send is attempted
func ValidEmailAddress(email string) bool {
	return checkmail.ValidateFormat(email) == nil
}
