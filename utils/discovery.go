package utils

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// Lead provenance tags
const (
	SourceGooglePlaces = "GOOGLE_PLACES"
	SourceFirecrawl    = "FIRECRAWL"
	SourceManual       = "MANUAL"
)

// SearchFilters describes a discovery query
type SearchFilters struct {
	Query    string
	Location string
	Industry string
	Limit    int
}

// DiscoveredLead is a normalized search result. Emails holds addresses found
// by the enrichment pass; persistence of both is the caller's job, as is any
// dedup against existing leads.
type DiscoveredLead struct {
	CompanyName string   `json:"company_name"`
	Website     string   `json:"website,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Location    string   `json:"location,omitempty"`
	PlaceID     string   `json:"place_id,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Source      string   `json:"source"`
	Emails      []string `json:"emails,omitempty"`
}

// DiscoveryKeys carries the optional external API credentials. Empty keys
// switch the corresponding call to its offline fallback.
type DiscoveryKeys struct {
	GoogleMaps string
	Hunter     string
	Firecrawl  string
}

// Discoverer queries external search/enrichment APIs, falling back to fixed
// mock data when credentials are missing or any call fails. Every failure is
// soft: logged, never surfaced.
type Discoverer struct {
	Keys   DiscoveryKeys
	Logger *logrus.Logger

	client fasthttp.Client
}

func NewDiscoverer(keys DiscoveryKeys, logger *logrus.Logger) *Discoverer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Discoverer{Keys: keys, Logger: logger}
}

// Discover searches for candidate leads and best-effort enriches the first
// five results with domain emails
func (d *Discoverer) Discover(filters SearchFilters) []DiscoveredLead {
	results := d.searchGooglePlaces(filters.Query, filters.Location)

	// Enrichment runs only with a Hunter credential; guessed pattern
	// addresses must never end up attached to results. Capped to the first
	// results to stay under provider rate limits; a failed lookup never
	// removes the lead from the result set.
	if d.Keys.Hunter != "" {
		for i := range results {
			if i >= 5 {
				break
			}
			if results[i].Website == "" {
				continue
			}
			emails := d.FindEmailsForDomain(results[i].Website)
			if len(emails) > 0 {
				d.Logger.WithFields(logrus.Fields{
					"company": results[i].CompanyName,
					"emails":  len(emails),
				}).Info("found domain emails")
				results[i].Emails = emails
			}
		}
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (d *Discoverer) searchGooglePlaces(query, location string) []DiscoveredLead {
	if d.Keys.GoogleMaps == "" {
		d.Logger.Debug("Google Places API key not configured, returning mock data")
		return mockLeads(query, location)
	}

	searchQuery := query
	if location != "" {
		searchQuery = fmt.Sprintf("%s in %s", query, location)
	}
	uri := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/place/textsearch/json?query=%s&key=%s",
		url.QueryEscape(searchQuery), url.QueryEscape(d.Keys.GoogleMaps),
	)

	body, err := d.get(uri)
	if err != nil {
		d.Logger.WithError(err).Error("Google Places request failed")
		return mockLeads(query, location)
	}

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			Name             string   `json:"name"`
			Types            []string `json:"types"`
			FormattedAddress string   `json:"formatted_address"`
			PlaceID          string   `json:"place_id"`
			Rating           float64  `json:"rating"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		d.Logger.WithError(err).Error("Google Places response parse failed")
		return mockLeads(query, location)
	}
	if payload.Status != "OK" {
		d.Logger.WithField("status", payload.Status).Error("Google Places API error")
		return mockLeads(query, location)
	}

	leads := make([]DiscoveredLead, 0, len(payload.Results))
	for _, place := range payload.Results {
		industry := ""
		if len(place.Types) > 0 {
			industry = strings.ReplaceAll(place.Types[0], "_", " ")
		}
		leads = append(leads, DiscoveredLead{
			CompanyName: place.Name,
			Industry:    industry,
			Location:    place.FormattedAddress,
			Address:     place.FormattedAddress,
			PlaceID:     place.PlaceID,
			Rating:      place.Rating,
			Source:      SourceGooglePlaces,
		})
	}
	return leads
}

// FindEmailsForDomain looks up published addresses for a domain via the
// Hunter API. Without a key it returns the common role-address patterns.
func (d *Discoverer) FindEmailsForDomain(domain string) []string {
	if d.Keys.Hunter == "" {
		return []string{
			"info@" + domain,
			"contact@" + domain,
			"hello@" + domain,
		}
	}

	uri := fmt.Sprintf(
		"https://api.hunter.io/v2/domain-search?domain=%s&api_key=%s",
		url.QueryEscape(domain), url.QueryEscape(d.Keys.Hunter),
	)
	body, err := d.get(uri)
	if err != nil {
		d.Logger.WithError(err).WithField("domain", domain).Error("Hunter domain search failed")
		return nil
	}

	var payload struct {
		Data struct {
			Emails []struct {
				Value string `json:"value"`
			} `json:"emails"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		d.Logger.WithError(err).Error("Hunter response parse failed")
		return nil
	}

	emails := make([]string, 0, len(payload.Data.Emails))
	for _, e := range payload.Data.Emails {
		emails = append(emails, e.Value)
	}
	return emails
}

var discoveryEmailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// ExtractEmailsFromWebsite scrapes a page through Firecrawl and pulls unique
// business addresses out of the content. Returns nil without a key or on any
// failure.
func (d *Discoverer) ExtractEmailsFromWebsite(pageURL string) []string {
	if d.Keys.Firecrawl == "" {
		d.Logger.Debug("Firecrawl API key not configured")
		return nil
	}

	reqBody, _ := json.Marshal(map[string]interface{}{
		"url":         pageURL,
		"pageOptions": map[string]bool{"onlyMainContent": false},
	})

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("https://api.firecrawl.dev/v0/scrape")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+d.Keys.Firecrawl)
	req.SetBody(reqBody)

	if err := d.client.DoTimeout(req, resp, 20*time.Second); err != nil {
		d.Logger.WithError(err).Error("Firecrawl scrape failed")
		return nil
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		d.Logger.WithError(err).Error("Firecrawl response parse failed")
		return nil
	}

	seen := make(map[string]struct{})
	var emails []string
	for _, email := range discoveryEmailRe.FindAllString(payload.Content, -1) {
		lower := strings.ToLower(email)
		if strings.Contains(lower, "example.com") ||
			strings.Contains(lower, "gmail.com") ||
			strings.Contains(lower, "test.com") {
			continue
		}
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		emails = append(emails, email)
	}
	return emails
}

func (d *Discoverer) get(uri string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	if err := d.client.DoTimeout(req, resp, 15*time.Second); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	// Body is pooled; copy before release
	return append([]byte(nil), resp.Body()...), nil
}

// Fixed development dataset used when no Places key is configured. The query
// is matched as a case-insensitive substring of the company name or industry.
func mockLeads(query, location string) []DiscoveredLead {
	companies := []DiscoveredLead{
		{CompanyName: "TechStart Solutions", Website: "techstart.com", Industry: "Technology", Location: "San Francisco, CA", Source: SourceGooglePlaces},
		{CompanyName: "Innovation Labs Inc", Website: "innovationlabs.io", Industry: "Software", Location: "Austin, TX", Source: SourceGooglePlaces},
		{CompanyName: "Digital Marketing Pro", Website: "digitalmarketingpro.com", Industry: "Marketing", Location: "New York, NY", Source: SourceGooglePlaces},
		{CompanyName: "CloudSync Technologies", Website: "cloudsync.tech", Industry: "Cloud Computing", Location: "Seattle, WA", Source: SourceGooglePlaces},
		{CompanyName: "GreenEnergy Solutions", Website: "greenenergy.co", Industry: "Clean Energy", Location: "Denver, CO", Source: SourceGooglePlaces},
	}

	if location != "" {
		for i := range companies {
			companies[i].Location = location
		}
	}

	if query == "" {
		return companies
	}

	lower := strings.ToLower(query)
	var filtered []DiscoveredLead
	for _, c := range companies {
		if strings.Contains(strings.ToLower(c.CompanyName), lower) ||
			strings.Contains(strings.ToLower(c.Industry), lower) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
