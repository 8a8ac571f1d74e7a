package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

type DiscoveryController struct {
	DB         *gorm.DB
	Logger     *logrus.Logger
	Discoverer *utils.Discoverer
}

func NewDiscoveryController(db *gorm.DB, logger *logrus.Logger, discoverer *utils.Discoverer) *DiscoveryController {
	return &DiscoveryController{DB: db, Logger: logger, Discoverer: discoverer}
}

// DiscoverLeads searches external sources for prospects matching the query.
// With save_to_db set, results not already known (same company name or
// website) are persisted as NEW leads with any discovered emails attached.
func (dc *DiscoveryController) DiscoverLeads(c *fiber.Ctx) error {
	var input struct {
		Query    string `json:"query" validate:"required,max=255"`
		Location string `json:"location" validate:"omitempty,max=255"`
		Industry string `json:"industry" validate:"omitempty,max=100"`
		Limit    int    `json:"limit" validate:"omitempty,min=1,max=50"`
		SaveToDb bool   `json:"save_to_db"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if input.Limit == 0 {
		input.Limit = 10
	}

	discovered := dc.Discoverer.Discover(utils.SearchFilters{
		Query:    input.Query,
		Location: input.Location,
		Industry: input.Industry,
		Limit:    input.Limit,
	})

	if !input.SaveToDb {
		return c.JSON(utils.SuccessResponse(fiber.Map{
			"results": discovered,
			"saved":   0,
		}))
	}

	workspace, err := models.EnsureDefaultWorkspace(dc.DB)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve workspace", err)
	}

	saved := 0
	for _, found := range discovered {
		exists, err := dc.leadExists(found)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save leads", err)
		}
		if exists {
			continue
		}

		lead := models.Lead{
			WorkspaceID: workspace.ID,
			CompanyName: found.CompanyName,
			Website:     found.Website,
			Industry:    found.Industry,
			Location:    found.Location,
			PlaceID:     found.PlaceID,
			Status:      models.LeadStatusNew,
		}
		for _, email := range found.Emails {
			lead.ContactMethods = append(lead.ContactMethods, models.ContactMethod{
				Type:        models.ContactTypeEmail,
				Value:       email,
				IsRoleBased: utils.IsRoleBasedEmail(email),
			})
		}

		if err := dc.DB.Create(&lead).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save leads", err)
		}
		saved++
	}

	dc.Logger.WithFields(logrus.Fields{
		"query": input.Query,
		"found": len(discovered),
		"saved": saved,
	}).Info("discovery run")

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"results": discovered,
		"saved":   saved,
	}))
}

// leadExists dedups against what's already on file by company name or
// website, case-insensitively
func (dc *DiscoveryController) leadExists(found utils.DiscoveredLead) (bool, error) {
	query := dc.DB.Model(&models.Lead{}).
		Where("LOWER(company_name) = ?", strings.ToLower(found.CompanyName))
	if found.Website != "" {
		query = dc.DB.Model(&models.Lead{}).
			Where("LOWER(company_name) = ? OR LOWER(website) = ?",
				strings.ToLower(found.CompanyName), strings.ToLower(found.Website))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
