package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/config"
	controller "leadreach/controllers"
	"leadreach/middleware"
	"leadreach/utils"
)

// SetupAPIRoutes wires every versioned endpoint. Controllers receive their
// dependencies here; nothing below this layer reads configuration.
func SetupAPIRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	mailer := utils.NewMailer(utils.MailerConfig{
		Provider:         cfg.MailProvider,
		FromEmail:        cfg.FromEmail,
		GmailAccessToken: cfg.GmailAccessToken,
		SMTPHost:         cfg.SMTPHost,
		SMTPPort:         cfg.SMTPPort,
		SMTPUsername:     cfg.SMTPUsername,
		SMTPPassword:     cfg.SMTPPassword,
	})

	discoverer := utils.NewDiscoverer(utils.DiscoveryKeys{
		GoogleMaps: cfg.GoogleMapsAPIKey,
		Hunter:     cfg.HunterAPIKey,
		Firecrawl:  cfg.FirecrawlAPIKey,
	}, log)

	verifier := utils.NewVerifier(cfg.HunterAPIKey, log)

	leadController := controller.NewLeadController(db, log)
	campaignController := controller.NewCampaignController(db, log)
	draftController := controller.NewDraftController(db, log, mailer, controller.SenderIdentity{
		Name:          cfg.SenderName,
		Company:       cfg.SenderCompany,
		PostalAddress: cfg.SenderPostalAddress,
		AppURL:        cfg.AppURL,
	})
	discoveryController := controller.NewDiscoveryController(db, log, discoverer)
	contactController := controller.NewContactController(db, log, verifier)
	statsController := controller.NewStatsController(db, log)
	workspaceController := controller.NewWorkspaceController(db, log)

	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Lead routes
	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/:id", leadController.GetLead)
	lead.Put("/:id", leadController.UpdateLead)
	lead.Delete("/:id", leadController.DeleteLead)

	// Contact method routes
	api.Post("/contact-methods/:id/verify", contactController.VerifyContactMethod)

	// Campaign routes
	campaign := api.Group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Get("/:id", campaignController.GetCampaign)
	campaign.Put("/:id", campaignController.UpdateCampaign)
	campaign.Put("/:id/steps", campaignController.ReplaceSteps)
	campaign.Delete("/:id", campaignController.DeleteCampaign)

	// Draft routes
	draft := api.Group("/drafts")
	draft.Post("/", draftController.CreateDraft)
	draft.Get("/", draftController.GetDrafts)
	draft.Get("/:id", draftController.GetDraft)
	draft.Put("/:id", draftController.UpdateDraft)
	draft.Post("/:id/approve", draftController.ApproveDraft)
	draft.Post("/:id/reject", draftController.RejectDraft)
	draft.Post("/:id/send", draftController.SendDraft)

	// Discovery with per-IP rate limiting
	api.Post("/discover", middleware.DiscoveryRateLimiter(), discoveryController.DiscoverLeads)

	// Dashboard
	api.Get("/stats", statsController.GetStats)

	// Workspace management
	workspace := api.Group("/workspace")
	workspace.Get("/", workspaceController.GetWorkspace)
	workspace.Post("/seed", workspaceController.SeedWorkspace)
	workspace.Post("/reset", workspaceController.ResetWorkspace)

	log.Info("API routes initialized successfully")
}
