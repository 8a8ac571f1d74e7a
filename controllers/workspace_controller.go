package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

type WorkspaceController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewWorkspaceController(db *gorm.DB, logger *logrus.Logger) *WorkspaceController {
	return &WorkspaceController{DB: db, Logger: logger}
}

// GetWorkspace returns the default workspace, provisioning it on first use
func (wc *WorkspaceController) GetWorkspace(c *fiber.Ctx) error {
	workspace, err := models.EnsureDefaultWorkspace(wc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve workspace", err)
	}
	return c.JSON(utils.SuccessResponse(workspace))
}

// SeedWorkspace loads the demo dataset. A workspace that already holds
// leads is left untouched, so repeated calls are harmless.
func (wc *WorkspaceController) SeedWorkspace(c *fiber.Ctx) error {
	workspace, err := models.EnsureDefaultWorkspace(wc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve workspace", err)
	}

	seeded, err := models.SeedDemoData(wc.DB, workspace)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to seed workspace", err)
	}

	if seeded {
		wc.Logger.WithField("workspace_id", workspace.ID).Info("demo data seeded")
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"seeded":    seeded,
		"workspace": workspace,
	}))
}

// ResetWorkspace wipes every lead, campaign, draft and audit row
func (wc *WorkspaceController) ResetWorkspace(c *fiber.Ctx) error {
	if err := models.ResetWorkspace(wc.DB); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset workspace", err)
	}

	wc.Logger.Warn("workspace reset")

	return c.JSON(utils.SuccessResponse(fiber.Map{"reset": true}))
}
