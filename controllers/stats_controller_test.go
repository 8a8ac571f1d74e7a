package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreach/models"
)

func TestGetStatsAggregates(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	env.createLead(t, models.Lead{CompanyName: "Booked Co", Status: models.LeadStatusBooked})
	env.createLead(t, models.Lead{CompanyName: "Replied Co", Status: models.LeadStatusReplied})

	draftID := createDraft(t, env, lead.ID, campaign.ID)
	status, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/send", draftID), nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.request(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})

	overview := data["overview"].(map[string]interface{})
	assert.EqualValues(t, 3, overview["total_leads"])
	assert.EqualValues(t, 1, overview["total_campaigns"])
	assert.EqualValues(t, 1, overview["total_drafts"])

	leadsByStatus := overview["leads_by_status"].(map[string]interface{})
	assert.EqualValues(t, 1, leadsByStatus[models.LeadStatusSent])
	assert.EqualValues(t, 1, leadsByStatus[models.LeadStatusBooked])

	draftsByStatus := overview["drafts_by_status"].(map[string]interface{})
	assert.EqualValues(t, 1, draftsByStatus[models.DraftStatusSent])

	// One booked lead at the assumed pipeline value per meeting
	metrics := data["metrics"].(map[string]interface{})
	assert.EqualValues(t, 30000, metrics["revenue_influence"])
	assert.EqualValues(t, 50, metrics["meeting_conv_rate"])

	funnel := data["funnel"].([]interface{})
	require.Len(t, funnel, 4)
	first := funnel[0].(map[string]interface{})
	assert.Equal(t, "sent", first["stage"])
	assert.EqualValues(t, 3, first["count"])

	campaigns := data["campaigns"].([]interface{})
	require.Len(t, campaigns, 1)
	conversion := campaigns[0].(map[string]interface{})
	assert.EqualValues(t, 100, conversion["progress"])
}

func TestGetStatsEmptyDatabase(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.request(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	overview := data["overview"].(map[string]interface{})
	assert.EqualValues(t, 0, overview["total_leads"])

	metrics := data["metrics"].(map[string]interface{})
	assert.EqualValues(t, 0, metrics["revenue_influence"])
	assert.EqualValues(t, 0, metrics["sentiment_index"])
}
