package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadreach/models"
)

func TestVerifyContactMethodMalformedAddress(t *testing.T) {
	env := newTestEnv(t, nil)
	lead := env.createLead(t, models.Lead{
		CompanyName: "Acme Corp",
		ContactMethods: []models.ContactMethod{
			{Type: models.ContactTypeEmail, Value: "not-an-address"},
		},
	})

	var contact models.ContactMethod
	require.NoError(t, env.db.Where("lead_id = ?", lead.ID).First(&contact).Error)

	status, body := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/contact-methods/%d/verify", contact.ID), nil)
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	verification := data["verification"].(map[string]interface{})
	assert.Equal(t, "invalid", verification["status"])
	assert.Equal(t, false, verification["deliverable"])

	require.NoError(t, env.db.First(&contact, contact.ID).Error)
	assert.False(t, contact.IsVerified)
}

func TestVerifyContactMethodRejectsNonEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	lead := env.createLead(t, models.Lead{
		CompanyName: "Acme Corp",
		ContactMethods: []models.ContactMethod{
			{Type: models.ContactTypePhone, Value: "+44 20 7946 0000"},
		},
	})

	var contact models.ContactMethod
	require.NoError(t, env.db.Where("lead_id = ?", lead.ID).First(&contact).Error)

	status, _ := env.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/contact-methods/%d/verify", contact.ID), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestVerifyContactMethodNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.request(t, http.MethodPost, "/api/v1/contact-methods/99/verify", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
