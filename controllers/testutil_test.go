package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"leadreach/config"
	"leadreach/models"
	"leadreach/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// newTestEnv builds a fiber app over an in-memory database with every route
// wired. The mailer is injectable so send-path tests can force failures;
// nil selects an instant mock transport.
func newTestEnv(t *testing.T, mailer utils.Mailer) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.MigrateDB(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	if mailer == nil {
		mailer = &utils.MockMailer{Latency: 1}
	}

	leadController := NewLeadController(db, log)
	campaignController := NewCampaignController(db, log)
	draftController := NewDraftController(db, log, mailer, SenderIdentity{
		Name:          "Jamie Rivera",
		Company:       "LeadReach",
		PostalAddress: "548 Market St, San Francisco, CA",
		AppURL:        "http://localhost:3000",
	})
	discoveryController := NewDiscoveryController(db, log, utils.NewDiscoverer(utils.DiscoveryKeys{}, log))
	contactController := NewContactController(db, log, utils.NewVerifier("", log))
	statsController := NewStatsController(db, log)
	workspaceController := NewWorkspaceController(db, log)

	app := fiber.New()
	api := app.Group("/api/v1")

	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/:id", leadController.GetLead)
	lead.Put("/:id", leadController.UpdateLead)
	lead.Delete("/:id", leadController.DeleteLead)

	api.Post("/contact-methods/:id/verify", contactController.VerifyContactMethod)

	campaign := api.Group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Get("/:id", campaignController.GetCampaign)
	campaign.Put("/:id", campaignController.UpdateCampaign)
	campaign.Put("/:id/steps", campaignController.ReplaceSteps)
	campaign.Delete("/:id", campaignController.DeleteCampaign)

	draft := api.Group("/drafts")
	draft.Post("/", draftController.CreateDraft)
	draft.Get("/", draftController.GetDrafts)
	draft.Get("/:id", draftController.GetDraft)
	draft.Put("/:id", draftController.UpdateDraft)
	draft.Post("/:id/approve", draftController.ApproveDraft)
	draft.Post("/:id/reject", draftController.RejectDraft)
	draft.Post("/:id/send", draftController.SendDraft)

	api.Post("/discover", discoveryController.DiscoverLeads)
	api.Get("/stats", statsController.GetStats)

	workspace := api.Group("/workspace")
	workspace.Get("/", workspaceController.GetWorkspace)
	workspace.Post("/seed", workspaceController.SeedWorkspace)
	workspace.Post("/reset", workspaceController.ResetWorkspace)

	return &testEnv{app: app, db: db}
}

// request sends a JSON request and decodes the JSON response body
func (e *testEnv) request(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func (e *testEnv) createLead(t *testing.T, lead models.Lead) *models.Lead {
	t.Helper()

	if lead.WorkspaceID == 0 {
		ws, err := models.EnsureDefaultWorkspace(e.db)
		require.NoError(t, err)
		lead.WorkspaceID = ws.ID
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	require.NoError(t, e.db.Create(&lead).Error)
	return &lead
}

func (e *testEnv) createCampaign(t *testing.T, campaign models.Campaign) *models.Campaign {
	t.Helper()

	if campaign.WorkspaceID == 0 {
		ws, err := models.EnsureDefaultWorkspace(e.db)
		require.NoError(t, err)
		campaign.WorkspaceID = ws.ID
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusActive
	}
	require.NoError(t, e.db.Create(&campaign).Error)
	return &campaign
}

// failingMailer simulates a transport outage
type failingMailer struct{}

func (f *failingMailer) Provider() string { return "SMTP" }

func (f *failingMailer) Send(payload utils.EmailPayload) utils.EmailResult {
	return utils.EmailResult{Error: "smtp send error: connection refused"}
}
