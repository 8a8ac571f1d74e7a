package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewLeadController(db *gorm.DB, logger *logrus.Logger) *LeadController {
	return &LeadController{DB: db, Logger: logger}
}

// CreateLead registers a lead in the default workspace. An optional email
// becomes the lead's first contact method.
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var input struct {
		CompanyName string `json:"company_name" validate:"required,max=255"`
		Website     string `json:"website" validate:"omitempty,max=255"`
		Industry    string `json:"industry" validate:"omitempty,max=100"`
		Location    string `json:"location" validate:"omitempty,max=255"`
		PlaceID     string `json:"place_id"`
		Email       string `json:"email" validate:"omitempty,email"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	workspace, err := models.EnsureDefaultWorkspace(lc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve workspace", err)
	}

	lead := models.Lead{
		WorkspaceID: workspace.ID,
		CompanyName: input.CompanyName,
		Website:     input.Website,
		Industry:    input.Industry,
		Location:    input.Location,
		PlaceID:     input.PlaceID,
		Status:      models.LeadStatusNew,
	}
	if input.Email != "" {
		lead.ContactMethods = []models.ContactMethod{{
			Type:        models.ContactTypeEmail,
			Value:       input.Email,
			IsRoleBased: utils.IsRoleBasedEmail(input.Email),
		}}
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	lc.Logger.WithFields(logrus.Fields{
		"lead_id": lead.ID,
		"company": lead.CompanyName,
	}).Info("lead created")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetLeads lists leads, newest first, with optional status filter and
// free-text search across company, website, industry and location
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := lc.DB.Model(&models.Lead{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = models.SearchLeads(query, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count leads", err)
	}

	var leads []models.Lead
	err := query.Preload("ContactMethods").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&leads).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single lead with contacts and its recent activity
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	var lead models.Lead
	err := lc.DB.
		Preload("ContactMethods").
		Preload("Drafts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(5)
		}).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(5)
		}).
		First(&lead, c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// UpdateLead applies a partial update. Status moves freely between the
// known lead statuses here; drafts drive the usual progression.
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	var input struct {
		CompanyName string `json:"company_name" validate:"omitempty,max=255"`
		Website     string `json:"website" validate:"omitempty,max=255"`
		Industry    string `json:"industry" validate:"omitempty,max=100"`
		Location    string `json:"location" validate:"omitempty,max=255"`
		Status      string `json:"status"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Status != "" && !models.ValidLeadStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown lead status", nil)
	}

	var lead models.Lead
	if err := lc.DB.First(&lead, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	if input.CompanyName != "" {
		lead.CompanyName = input.CompanyName
	}
	if input.Website != "" {
		lead.Website = input.Website
	}
	if input.Industry != "" {
		lead.Industry = input.Industry
	}
	if input.Location != "" {
		lead.Location = input.Location
	}
	if input.Status != "" {
		lead.Status = input.Status
	}

	if err := lc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead removes a lead and everything hanging off it
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid lead id", nil)
	}

	tx := lc.DB.Begin()

	var draftIDs []uint
	if err := tx.Model(&models.DraftEmail{}).Where("lead_id = ?", id).Pluck("id", &draftIDs).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}
	if len(draftIDs) > 0 {
		if err := tx.Unscoped().Where("draft_email_id IN ?", draftIDs).Delete(&models.SendEvent{}).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
		}
	}
	if err := tx.Unscoped().Where("lead_id = ?", id).Delete(&models.ApprovalItem{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}
	if err := tx.Unscoped().Where("lead_id = ?", id).Delete(&models.DraftEmail{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}
	if err := tx.Unscoped().Where("lead_id = ?", id).Delete(&models.ContactMethod{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}

	result := tx.Unscoped().Delete(&models.Lead{}, id)
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", err)
	}

	lc.Logger.WithField("lead_id", id).Info("lead deleted")

	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}
