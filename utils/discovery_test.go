package utils

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDiscoverOfflineFiltersByQuery(t *testing.T) {
	d := NewDiscoverer(DiscoveryKeys{}, quietLogger())

	results := d.Discover(SearchFilters{Query: "marketing"})
	require.Len(t, results, 1)
	assert.Equal(t, "Digital Marketing Pro", results[0].CompanyName)
	assert.Equal(t, SourceGooglePlaces, results[0].Source)
}

func TestDiscoverOfflineMatchesIndustry(t *testing.T) {
	d := NewDiscoverer(DiscoveryKeys{}, quietLogger())

	results := d.Discover(SearchFilters{Query: "clean energy"})
	require.Len(t, results, 1)
	assert.Equal(t, "GreenEnergy Solutions", results[0].CompanyName)
}

func TestDiscoverLocationOverride(t *testing.T) {
	d := NewDiscoverer(DiscoveryKeys{}, quietLogger())

	results := d.Discover(SearchFilters{Query: "", Location: "Manchester, UK"})
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "Manchester, UK", r.Location)
	}
}

func TestDiscoverHonorsLimit(t *testing.T) {
	d := NewDiscoverer(DiscoveryKeys{}, quietLogger())

	results := d.Discover(SearchFilters{Query: "", Limit: 2})
	assert.Len(t, results, 2)
}

func TestDiscoverWithoutHunterKeySkipsEnrichment(t *testing.T) {
	d := NewDiscoverer(DiscoveryKeys{}, quietLogger())

	results := d.Discover(SearchFilters{Query: "techstart"})
	require.Len(t, results, 1)
	// Guessed pattern addresses never ride along on discovery results
	assert.Empty(t, results[0].Emails)
}

func TestFindEmailsForDomainOfflinePatterns(t *testing.T) {
	d := NewDiscoverer(DiscoveryKeys{}, quietLogger())

	emails := d.FindEmailsForDomain("acme.io")
	assert.Equal(t, []string{"info@acme.io", "contact@acme.io", "hello@acme.io"}, emails)
}
