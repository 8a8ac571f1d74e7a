package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreach/models"
)

func seedLeadAndCampaign(t *testing.T, env *testEnv) (*models.Lead, *models.Campaign) {
	t.Helper()

	lead := env.createLead(t, models.Lead{
		CompanyName: "Acme Corp",
		Website:     "acme.io",
		Industry:    "Manufacturing",
		Location:    "London, UK",
		ContactMethods: []models.ContactMethod{
			{Type: models.ContactTypeEmail, Value: "jane.doe@acme.io"},
		},
	})
	campaign := env.createCampaign(t, models.Campaign{
		Name: "Q3 Cold Outreach",
		Type: models.CampaignTypeColdOutreach,
	})
	return lead, campaign
}

func createDraft(t *testing.T, env *testEnv, leadID, campaignID uint) uint {
	t.Helper()

	status, body := env.request(t, http.MethodPost, "/api/v1/drafts", map[string]interface{}{
		"lead_id":     leadID,
		"campaign_id": campaignID,
	})
	require.Equal(t, http.StatusCreated, status)

	data := body["data"].(map[string]interface{})
	return uint(data["ID"].(float64))
}

func TestCreateDraftGeneratesContentAndAdvancesLead(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)

	status, body := env.request(t, http.MethodPost, "/api/v1/drafts", map[string]interface{}{
		"lead_id":     lead.ID,
		"campaign_id": campaign.ID,
	})
	require.Equal(t, http.StatusCreated, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.DraftStatusDraft, data["status"])
	assert.Equal(t, "jane.doe@acme.io", data["to_address"])
	assert.Contains(t, data["subject"], "Acme Corp")

	html := data["body_html"].(string)
	assert.Contains(t, html, "Acme Corp")
	assert.Contains(t, html, "Unsubscribe")
	assert.Contains(t, html, "548 Market St")
	// Location personalization rewrites the generic opener
	assert.Contains(t, html, "Hi from London!")

	var stored models.Lead
	require.NoError(t, env.db.First(&stored, lead.ID).Error)
	assert.Equal(t, models.LeadStatusDrafted, stored.Status)
}

func TestCreateDraftFallsBackToWebsiteContact(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.createCampaign(t, models.Campaign{Name: "No Contact", Type: models.CampaignTypeColdOutreach})
	lead := env.createLead(t, models.Lead{CompanyName: "Ghost Co", Website: "ghost.example"})

	status, body := env.request(t, http.MethodPost, "/api/v1/drafts", map[string]interface{}{
		"lead_id":     lead.ID,
		"campaign_id": campaign.ID,
	})
	require.Equal(t, http.StatusCreated, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "contact@ghost.example", data["to_address"])
}

func TestCreateDraftUnknownLead(t *testing.T) {
	env := newTestEnv(t, nil)
	_, campaign := seedLeadAndCampaign(t, env)

	status, body := env.request(t, http.MethodPost, "/api/v1/drafts", map[string]interface{}{
		"lead_id":     uint(9999),
		"campaign_id": campaign.ID,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestUpdateDraftRejectsStatusEdits(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, _ := env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/drafts/%d", draftID), map[string]interface{}{
		"status": models.DraftStatusApproved,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var stored models.DraftEmail
	require.NoError(t, env.db.First(&stored, draftID).Error)
	assert.Equal(t, models.DraftStatusDraft, stored.Status)
}

func TestUpdateDraftEditsSubjectAndBody(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, body := env.request(t, http.MethodPut, fmt.Sprintf("/api/v1/drafts/%d", draftID), map[string]interface{}{
		"subject":   "Revised subject",
		"body_html": "<p>Rewritten by hand.</p>",
	})
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Revised subject", data["subject"])
	assert.Equal(t, "<p>Rewritten by hand.</p>", data["body_html"])
}

func TestApproveDraftAppendsAuditRowEachCall(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	path := fmt.Sprintf("/api/v1/drafts/%d/approve", draftID)
	status, _ := env.request(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = env.request(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)

	var draft models.DraftEmail
	require.NoError(t, env.db.First(&draft, draftID).Error)
	assert.Equal(t, models.DraftStatusApproved, draft.Status)

	// Every decision appends its own audit row
	var approvals int64
	env.db.Model(&models.ApprovalItem{}).Where("draft_email_id = ?", draftID).Count(&approvals)
	assert.EqualValues(t, 2, approvals)

	var stored models.Lead
	require.NoError(t, env.db.First(&stored, lead.ID).Error)
	assert.Equal(t, models.LeadStatusApproved, stored.Status)
}

func TestRejectDraftLeavesLeadStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/reject", draftID), nil)
	require.Equal(t, http.StatusOK, status)

	var draft models.DraftEmail
	require.NoError(t, env.db.First(&draft, draftID).Error)
	assert.Equal(t, models.DraftStatusRejected, draft.Status)

	var approval models.ApprovalItem
	require.NoError(t, env.db.Where("draft_email_id = ?", draftID).First(&approval).Error)
	assert.Equal(t, models.DraftStatusRejected, approval.Status)
	assert.Equal(t, lead.ID, approval.LeadID)

	// The lead keeps the status it had when the draft was created
	var stored models.Lead
	require.NoError(t, env.db.First(&stored, lead.ID).Error)
	assert.Equal(t, models.LeadStatusDrafted, stored.Status)
}

func TestSendDraftSuccess(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, body := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/send", draftID), nil)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	messageID := data["message_id"].(string)
	assert.True(t, strings.HasPrefix(messageID, "msg_"))

	var draft models.DraftEmail
	require.NoError(t, env.db.First(&draft, draftID).Error)
	assert.Equal(t, models.DraftStatusSent, draft.Status)

	var event models.SendEvent
	require.NoError(t, env.db.Where("draft_email_id = ?", draftID).First(&event).Error)
	assert.Equal(t, models.ProviderInternal, event.Provider)
	assert.Equal(t, messageID, event.MessageID)
	assert.NotZero(t, event.ContactMethodID)

	var stored models.Lead
	require.NoError(t, env.db.First(&stored, lead.ID).Error)
	assert.Equal(t, models.LeadStatusSent, stored.Status)
}

func TestSendDraftTwiceConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	path := fmt.Sprintf("/api/v1/drafts/%d/send", draftID)
	status, _ := env.request(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.request(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, status)

	var events int64
	env.db.Model(&models.SendEvent{}).Where("draft_email_id = ?", draftID).Count(&events)
	assert.EqualValues(t, 1, events)
}

func TestSendDraftTransportFailureLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t, &failingMailer{})
	lead, campaign := seedLeadAndCampaign(t, env)
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, body := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/send", draftID), nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, false, body["success"])

	var draft models.DraftEmail
	require.NoError(t, env.db.First(&draft, draftID).Error)
	assert.Equal(t, models.DraftStatusDraft, draft.Status)

	var events int64
	env.db.Model(&models.SendEvent{}).Count(&events)
	assert.Zero(t, events)

	var stored models.Lead
	require.NoError(t, env.db.First(&stored, lead.ID).Error)
	assert.Equal(t, models.LeadStatusDrafted, stored.Status)
}

func TestSendDraftCreatesContactMethodForFallbackAddress(t *testing.T) {
	env := newTestEnv(t, nil)
	campaign := env.createCampaign(t, models.Campaign{Name: "Fallback", Type: models.CampaignTypeColdOutreach})
	lead := env.createLead(t, models.Lead{CompanyName: "Ghost Co", Website: "ghost.example"})
	draftID := createDraft(t, env, lead.ID, campaign.ID)

	status, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/send", draftID), nil)
	require.Equal(t, http.StatusOK, status)

	var contact models.ContactMethod
	require.NoError(t, env.db.Where("lead_id = ?", lead.ID).First(&contact).Error)
	assert.Equal(t, "contact@ghost.example", contact.Value)
	assert.True(t, contact.IsRoleBased)
	assert.False(t, contact.IsVerified)
}

func TestListDraftsFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	lead, campaign := seedLeadAndCampaign(t, env)
	first := createDraft(t, env, lead.ID, campaign.ID)
	createDraft(t, env, lead.ID, campaign.ID)

	status, _ := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/drafts/%d/approve", first), nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.request(t, http.MethodGet, "/api/v1/drafts?status=APPROVED", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/drafts?campaign_id=%d", campaign.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 2)
}
