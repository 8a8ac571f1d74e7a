package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreach/models"
)

func TestCreateLeadWithContactMethod(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.request(t, http.MethodPost, "/api/v1/leads", map[string]interface{}{
		"company_name": "Acme Corp",
		"website":      "acme.io",
		"industry":     "Manufacturing",
		"email":        "info@acme.io",
	})
	require.Equal(t, http.StatusCreated, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.LeadStatusNew, data["status"])
	assert.NotZero(t, data["workspace_id"])

	var contact models.ContactMethod
	require.NoError(t, env.db.Where("value = ?", "info@acme.io").First(&contact).Error)
	assert.True(t, contact.IsRoleBased)
}

func TestCreateLeadRequiresCompanyName(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.request(t, http.MethodPost, "/api/v1/leads", map[string]interface{}{
		"website": "acme.io",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestGetLeadsSearchAndStatusFilter(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createLead(t, models.Lead{CompanyName: "Acme Corp", Industry: "Manufacturing"})
	env.createLead(t, models.Lead{CompanyName: "Nexus AI", Industry: "Technology", Status: models.LeadStatusSent})
	env.createLead(t, models.Lead{CompanyName: "Stanford University", Location: "San Francisco"})

	status, body := env.request(t, http.MethodGet, "/api/v1/leads?search=acme", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 1, body["total"])

	// Search matches location too
	status, body = env.request(t, http.MethodGet, "/api/v1/leads?search=francisco", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = env.request(t, http.MethodGet, "/api/v1/leads?status=SENT", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = env.request(t, http.MethodGet, "/api/v1/leads", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["total"])
}

func TestUpdateLeadStatusValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	lead := env.createLead(t, models.Lead{CompanyName: "Acme Corp"})

	status, _ := env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/leads/%d", lead.ID), map[string]interface{}{
		"status": "ON_FIRE",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/leads/%d", lead.ID), map[string]interface{}{
		"status":   models.LeadStatusBooked,
		"industry": "Logistics",
	})
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.LeadStatusBooked, data["status"])
	assert.Equal(t, "Logistics", data["industry"])
}

func TestDeleteLeadCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/send", draftID), nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/leads/%d", lead.ID), nil)
	require.Equal(t, http.StatusOK, status)

	var counts [4]int64
	env.db.Model(&models.Lead{}).Count(&counts[0])
	env.db.Model(&models.ContactMethod{}).Count(&counts[1])
	env.db.Model(&models.DraftEmail{}).Count(&counts[2])
	env.db.Model(&models.SendEvent{}).Count(&counts[3])
	for _, count := range counts {
		assert.Zero(t, count)
	}

	// Campaign survives the lead deletion
	var campaigns int64
	env.db.Model(&models.Campaign{}).Count(&campaigns)
	assert.EqualValues(t, 1, campaigns)
}

func TestDeleteLeadNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.request(t, http.MethodDelete, "/api/v1/leads/42", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
