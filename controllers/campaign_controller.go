package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

type CampaignController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewCampaignController(db *gorm.DB, logger *logrus.Logger) *CampaignController {
	return &CampaignController{DB: db, Logger: logger}
}

type sequenceStepInput struct {
	DelayDays  int    `json:"delay_days" validate:"min=0,max=365"`
	SubjectTpl string `json:"subject_tpl" validate:"required,max=500"`
	BodyTpl    string `json:"body_tpl" validate:"required"`
}

// CreateCampaign creates a campaign in the default workspace, optionally
// with its initial sequence steps. Steps are renumbered 1..N in the order
// given, whatever numbering the client sent.
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	var input struct {
		Name   string              `json:"name" validate:"required,max=255"`
		Type   string              `json:"type" validate:"required,max=100"`
		Status string              `json:"status"`
		Steps  []sequenceStepInput `json:"steps" validate:"omitempty,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Status != "" && !models.ValidCampaignStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown campaign status", nil)
	}

	workspace, err := models.EnsureDefaultWorkspace(cc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve workspace", err)
	}

	campaign := models.Campaign{
		WorkspaceID: workspace.ID,
		Name:        input.Name,
		Type:        input.Type,
		Status:      models.CampaignStatusDraft,
	}
	if input.Status != "" {
		campaign.Status = input.Status
	}
	for i, step := range input.Steps {
		campaign.Steps = append(campaign.Steps, models.SequenceStep{
			StepNumber: i + 1,
			DelayDays:  step.DelayDays,
			SubjectTpl: step.SubjectTpl,
			BodyTpl:    step.BodyTpl,
		})
	}

	if err := cc.DB.Create(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", err)
	}

	cc.Logger.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"name":        campaign.Name,
		"steps":       len(campaign.Steps),
	}).Info("campaign created")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaign))
}

// GetCampaigns lists campaigns newest first, each with derived draft
// counters and a progress percentage
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	query := cc.DB.Model(&models.Campaign{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var campaigns []models.Campaign
	if err := query.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	out := make([]fiber.Map, 0, len(campaigns))
	for _, campaign := range campaigns {
		total, sent, err := cc.draftCounts(campaign.ID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign stats", err)
		}
		out = append(out, fiber.Map{
			"campaign":     campaign,
			"total_drafts": total,
			"sent_drafts":  sent,
			"progress":     models.CampaignProgress(total, sent),
		})
	}

	return c.JSON(utils.SuccessResponse(out))
}

// GetCampaign returns a campaign with its ordered steps, recent drafts and
// derived stats
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	err := cc.DB.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Drafts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Limit(20).Preload("Lead")
		}).
		First(&campaign, c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	var total, sent, approved, pending int64
	if err := cc.DB.Model(&models.DraftEmail{}).Where("campaign_id = ?", campaign.ID).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign stats", err)
	}
	cc.DB.Model(&models.DraftEmail{}).
		Where("campaign_id = ? AND status = ?", campaign.ID, models.DraftStatusSent).Count(&sent)
	cc.DB.Model(&models.DraftEmail{}).
		Where("campaign_id = ? AND status = ?", campaign.ID, models.DraftStatusApproved).Count(&approved)
	cc.DB.Model(&models.DraftEmail{}).
		Where("campaign_id = ? AND status IN ?", campaign.ID,
			[]string{models.DraftStatusDraft, models.DraftStatusPendingApproval}).Count(&pending)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"campaign": campaign,
		"stats": fiber.Map{
			"total_drafts":    total,
			"sent_drafts":     sent,
			"approved_drafts": approved,
			"pending_drafts":  pending,
			"progress":        models.CampaignProgress(total, sent),
		},
	}))
}

// UpdateCampaign applies a partial update to name, type and status
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	var input struct {
		Name   string `json:"name" validate:"omitempty,max=255"`
		Type   string `json:"type" validate:"omitempty,max=100"`
		Status string `json:"status"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Status != "" && !models.ValidCampaignStatus(input.Status) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown campaign status", nil)
	}

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	if input.Name != "" {
		campaign.Name = input.Name
	}
	if input.Type != "" {
		campaign.Type = input.Type
	}
	if input.Status != "" {
		campaign.Status = input.Status
	}

	if err := cc.DB.Save(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// ReplaceSteps swaps a campaign's entire cadence for the supplied one.
// Steps are renumbered densely 1..N in the order received; the old steps
// are gone once the transaction commits.
func (cc *CampaignController) ReplaceSteps(c *fiber.Ctx) error {
	var input struct {
		Steps []sequenceStepInput `json:"steps" validate:"required,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	tx := cc.DB.Begin()
	if err := tx.Unscoped().Where("campaign_id = ?", campaign.ID).Delete(&models.SequenceStep{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to replace steps", err)
	}

	steps := make([]models.SequenceStep, 0, len(input.Steps))
	for i, step := range input.Steps {
		steps = append(steps, models.SequenceStep{
			CampaignID: campaign.ID,
			StepNumber: i + 1,
			DelayDays:  step.DelayDays,
			SubjectTpl: step.SubjectTpl,
			BodyTpl:    step.BodyTpl,
		})
	}
	if len(steps) > 0 {
		if err := tx.Create(&steps).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to replace steps", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to replace steps", err)
	}

	cc.Logger.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"steps":       len(steps),
	}).Info("campaign steps replaced")

	return c.JSON(utils.SuccessResponse(steps))
}

// DeleteCampaign removes a campaign together with its steps and drafts
func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign id", nil)
	}

	tx := cc.DB.Begin()

	var draftIDs []uint
	if err := tx.Model(&models.DraftEmail{}).Where("campaign_id = ?", id).Pluck("id", &draftIDs).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
	}
	if len(draftIDs) > 0 {
		if err := tx.Unscoped().Where("draft_email_id IN ?", draftIDs).Delete(&models.SendEvent{}).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
		}
		if err := tx.Unscoped().Where("draft_email_id IN ?", draftIDs).Delete(&models.ApprovalItem{}).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
		}
	}
	if err := tx.Unscoped().Where("campaign_id = ?", id).Delete(&models.DraftEmail{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
	}
	if err := tx.Unscoped().Where("campaign_id = ?", id).Delete(&models.SequenceStep{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
	}

	result := tx.Unscoped().Delete(&models.Campaign{}, id)
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", err)
	}

	cc.Logger.WithField("campaign_id", id).Info("campaign deleted")

	return c.JSON(utils.SuccessResponse(fiber.Map{"deleted": true}))
}

func (cc *CampaignController) draftCounts(campaignID uint) (total, sent int64, err error) {
	err = cc.DB.Model(&models.DraftEmail{}).Where("campaign_id = ?", campaignID).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = cc.DB.Model(&models.DraftEmail{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.DraftStatusSent).Count(&sent).Error
	if err != nil {
		return 0, 0, err
	}
	return total, sent, nil
}
