package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

type ContactController struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Verifier *utils.Verifier
}

func NewContactController(db *gorm.DB, logger *logrus.Logger, verifier *utils.Verifier) *ContactController {
	return &ContactController{DB: db, Logger: logger, Verifier: verifier}
}

// VerifyContactMethod runs the verification pipeline against a stored
// contact method and persists the deliverability flag
func (cc *ContactController) VerifyContactMethod(c *fiber.Ctx) error {
	var contact models.ContactMethod
	if err := cc.DB.First(&contact, c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Contact method not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch contact method", err)
	}

	if contact.Type != models.ContactTypeEmail {
		return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity,
			"Only email contact methods can be verified", nil)
	}

	result := cc.Verifier.Verify(contact.Value)

	if contact.IsVerified != result.Deliverable {
		if err := cc.DB.Model(&contact).Update("is_verified", result.Deliverable).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update contact method", err)
		}
		contact.IsVerified = result.Deliverable
	}

	cc.Logger.WithFields(logrus.Fields{
		"contact_method_id": contact.ID,
		"status":            result.Status,
		"deliverable":       result.Deliverable,
	}).Info("contact method verified")

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"contact_method": contact,
		"verification":   result,
	}))
}
