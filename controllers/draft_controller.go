package controller

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

// SenderIdentity is stamped into generated drafts and compliance footers
type SenderIdentity struct {
	Name          string
	Company       string
	PostalAddress string
	AppURL        string
}

type DraftController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
	Mailer utils.Mailer
	Sender SenderIdentity
}

func NewDraftController(db *gorm.DB, logger *logrus.Logger, mailer utils.Mailer, sender SenderIdentity) *DraftController {
	return &DraftController{
		DB:     db,
		Logger: logger,
		Mailer: mailer,
		Sender: sender,
	}
}

// CreateDraft generates a new draft email for a lead/campaign pair. The
// draft lands in DRAFT and the lead is marked DRAFTED regardless of its
// prior status.
func (dc *DraftController) CreateDraft(c *fiber.Ctx) error {
	var input struct {
		LeadID     uint `json:"lead_id" validate:"required"`
		CampaignID uint `json:"campaign_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	if err := dc.DB.Preload("ContactMethods").First(&lead, input.LeadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	var campaign models.Campaign
	if err := dc.DB.First(&campaign, input.CampaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign", err)
	}

	toAddress := dc.resolveToAddress(&lead)

	generated := utils.GenerateEmail(utils.EmailContext{
		CompanyName:    lead.CompanyName,
		Industry:       lead.Industry,
		Website:        lead.Website,
		RecipientEmail: toAddress,
		SenderName:     dc.Sender.Name,
		SenderCompany:  dc.Sender.Company,
		CampaignType:   campaign.Type,
	})
	generated = utils.AddPersonalization(generated, lead.Location)

	unsubscribeURL := fmt.Sprintf("%s/unsubscribe?email=%s", dc.Sender.AppURL, url.QueryEscape(toAddress))
	generated.HTMLBody += utils.ComplianceFooter(unsubscribeURL, dc.Sender.PostalAddress)

	draft := models.DraftEmail{
		LeadID:     lead.ID,
		CampaignID: campaign.ID,
		Subject:    generated.Subject,
		BodyHTML:   generated.HTMLBody,
		ToAddress:  toAddress,
		Status:     models.DraftStatusDraft,
	}

	tx := dc.DB.Begin()
	if err := tx.Create(&draft).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create draft", err)
	}
	if err := tx.Model(&lead).Update("status", models.LeadStatusDrafted).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead status", err)
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create draft", err)
	}

	dc.Logger.WithFields(logrus.Fields{
		"draft_id":    draft.ID,
		"lead_id":     lead.ID,
		"campaign_id": campaign.ID,
	}).Info("draft created")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(draft))
}

// resolveToAddress picks the lead's primary EMAIL contact, or synthesizes a
// contact@ fallback from the website
func (dc *DraftController) resolveToAddress(lead *models.Lead) string {
	if primary := lead.PrimaryEmail(); primary != nil {
		return primary.Value
	}
	domain := lead.Website
	if domain == "" {
		domain = "unknown.com"
	}
	return "contact@" + domain
}

// GetDrafts returns drafts newest first with optional filters
func (dc *DraftController) GetDrafts(c *fiber.Ctx) error {
	query := dc.DB.Preload("Lead").Preload("Campaign")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if campaignID := c.Query("campaign_id"); campaignID != "" {
		query = query.Where("campaign_id = ?", utils.ParseUint(campaignID))
	}
	if leadID := c.Query("lead_id"); leadID != "" {
		query = query.Where("lead_id = ?", utils.ParseUint(leadID))
	}

	var drafts []models.DraftEmail
	if err := query.Order("created_at DESC").Limit(50).Find(&drafts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch drafts", err)
	}

	return c.JSON(utils.SuccessResponse(drafts))
}

// GetDraft returns a single draft with its audit trail
func (dc *DraftController) GetDraft(c *fiber.Ctx) error {
	var draft models.DraftEmail
	err := dc.DB.
		Preload("Lead").
		Preload("Campaign").
		Preload("Approvals").
		Preload("SendEvent").
		First(&draft, c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch draft", err)
	}

	return c.JSON(utils.SuccessResponse(draft))
}

// UpdateDraft edits the subject and body of a draft. Status is deliberately
// not editable here; it only moves through the approve/reject/send actions.
func (dc *DraftController) UpdateDraft(c *fiber.Ctx) error {
	var input struct {
		Subject  string `json:"subject" validate:"omitempty,max=500"`
		BodyHTML string `json:"body_html"`
		Status   string `json:"status"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Status != "" {
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity,
			"Draft status can only be changed through the approve, reject and send actions", nil)
	}

	var draft models.DraftEmail
	if err := dc.DB.First(&draft, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch draft", err)
	}

	if input.Subject != "" {
		draft.Subject = input.Subject
	}
	if input.BodyHTML != "" {
		draft.BodyHTML = input.BodyHTML
	}

	if err := dc.DB.Save(&draft).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update draft", err)
	}

	return c.JSON(utils.SuccessResponse(draft))
}

// ApproveDraft marks a draft APPROVED, appends an approval audit row and
// advances the lead to APPROVED. Each call appends a fresh audit row; the
// trail records every decision, so re-approving a draft yields two rows.
func (dc *DraftController) ApproveDraft(c *fiber.Ctx) error {
	return dc.review(c, models.DraftStatusApproved)
}

// RejectDraft marks a draft REJECTED and appends an approval audit row. The
// lead's status is intentionally left untouched, unlike approve.
func (dc *DraftController) RejectDraft(c *fiber.Ctx) error {
	return dc.review(c, models.DraftStatusRejected)
}

func (dc *DraftController) review(c *fiber.Ctx, decision string) error {
	var draft models.DraftEmail
	if err := dc.DB.First(&draft, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch draft", err)
	}

	tx := dc.DB.Begin()
	if err := tx.Model(&draft).Update("status", decision).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update draft", err)
	}

	approval := models.ApprovalItem{
		DraftEmailID: draft.ID,
		LeadID:       draft.LeadID,
		Status:       decision,
		ReviewedAt:   time.Now(),
	}
	if err := tx.Create(&approval).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record approval", err)
	}

	if decision == models.DraftStatusApproved {
		err := tx.Model(&models.Lead{}).Where("id = ?", draft.LeadID).
			Update("status", models.LeadStatusApproved).Error
		if err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead status", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record decision", err)
	}

	dc.Logger.WithFields(logrus.Fields{
		"draft_id": draft.ID,
		"decision": decision,
	}).Info("draft reviewed")

	return c.JSON(utils.SuccessResponse(draft))
}

// SendDraft hands the draft to the mail transport. One attempt, no retry: a
// transport failure leaves the draft untouched and is reported to the
// caller. On success the draft, its contact method, a send event and the
// lead all move in a single transaction.
func (dc *DraftController) SendDraft(c *fiber.Ctx) error {
	var draft models.DraftEmail
	if err := dc.DB.First(&draft, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch draft", err)
	}

	if draft.Status == models.DraftStatusSent {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Draft has already been sent", nil)
	}
	if !utils.ValidEmailAddress(draft.ToAddress) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			"Draft recipient is not a valid email address", nil)
	}

	result := dc.Mailer.Send(utils.EmailPayload{
		To:       draft.ToAddress,
		Subject:  draft.Subject,
		HTMLBody: draft.BodyHTML,
	})

	if !result.Success {
		sendErr := errors.New(result.Error)
		dc.Logger.WithFields(logrus.Fields{
			"draft_id": draft.ID,
			"to":       draft.ToAddress,
			"provider": dc.Mailer.Provider(),
		}).WithError(sendErr).Error("send failed")

		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("provider", dc.Mailer.Provider())
			scope.SetExtra("draft_id", draft.ID)
			sentry.CaptureException(sendErr)
		})

		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to send email", sendErr)
	}

	tx := dc.DB.Begin()

	if err := tx.Model(&draft).Update("status", models.DraftStatusSent).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update draft", err)
	}

	contact, err := dc.resolveContactMethod(tx, &draft)
	if err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve contact method", err)
	}

	event := models.SendEvent{
		DraftEmailID:    draft.ID,
		ContactMethodID: contact.ID,
		Provider:        dc.Mailer.Provider(),
		MessageID:       result.MessageID,
	}
	if err := tx.Create(&event).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record send event", err)
	}

	err = tx.Model(&models.Lead{}).Where("id = ?", draft.LeadID).
		Update("status", models.LeadStatusSent).Error
	if err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead status", err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record send", err)
	}

	dc.Logger.WithFields(logrus.Fields{
		"draft_id":   draft.ID,
		"to":         draft.ToAddress,
		"message_id": result.MessageID,
		"provider":   dc.Mailer.Provider(),
	}).Info("draft sent")

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message_id": result.MessageID,
		"draft":      draft,
	}))
}

// resolveContactMethod finds the contact method matching the draft's
// recipient, creating one when the draft was addressed to a synthesized or
// edited address not yet on file
func (dc *DraftController) resolveContactMethod(tx *gorm.DB, draft *models.DraftEmail) (*models.ContactMethod, error) {
	var contact models.ContactMethod
	err := tx.Where("lead_id = ? AND value = ?", draft.LeadID, draft.ToAddress).First(&contact).Error
	if err == nil {
		return &contact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	contact = models.ContactMethod{
		LeadID:      draft.LeadID,
		Type:        models.ContactTypeEmail,
		Value:       draft.ToAddress,
		IsRoleBased: utils.IsRoleBasedEmail(draft.ToAddress),
		IsVerified:  false,
	}
	if err := tx.Create(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}
