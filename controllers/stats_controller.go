package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"leadreach/models"
	"leadreach/utils"
)

// Estimated pipeline value of one booked meeting, used for the revenue
// influence card
const revenuePerBooking = 30000

type StatsController struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

func NewStatsController(db *gorm.DB, logger *logrus.Logger) *StatsController {
	return &StatsController{DB: db, Logger: logger}
}

type OverviewStats struct {
	TotalLeads     int64            `json:"total_leads"`
	LeadsByStatus  map[string]int64 `json:"leads_by_status"`
	TotalCampaigns int64            `json:"total_campaigns"`
	TotalDrafts    int64            `json:"total_drafts"`
	DraftsByStatus map[string]int64 `json:"drafts_by_status"`
}

type OutreachMetrics struct {
	RevenueInfluence   int64   `json:"revenue_influence"`
	MeetingConvRate    float64 `json:"meeting_conv_rate"`
	PositiveReplyRatio float64 `json:"positive_reply_ratio"`
	SentimentIndex     float64 `json:"sentiment_index"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

type CampaignConversion struct {
	CampaignID uint   `json:"campaign_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Total      int64  `json:"total_drafts"`
	Sent       int64  `json:"sent_drafts"`
	Progress   int    `json:"progress"`
}

// GetStats aggregates the dashboard numbers: entity counts grouped by
// status, derived outreach metrics, the conversion state of the most
// recent campaigns and the reply funnel.
func (sc *StatsController) GetStats(c *fiber.Ctx) error {
	overview, err := sc.overview()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}

	metrics := sc.metrics(overview)

	conversions, err := sc.recentCampaignConversions(5)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"overview":  overview,
		"metrics":   metrics,
		"campaigns": conversions,
		"funnel":    sc.funnel(overview),
	}))
}

func (sc *StatsController) overview() (*OverviewStats, error) {
	stats := &OverviewStats{
		LeadsByStatus:  make(map[string]int64),
		DraftsByStatus: make(map[string]int64),
	}

	if err := sc.DB.Model(&models.Lead{}).Count(&stats.TotalLeads).Error; err != nil {
		return nil, err
	}
	if err := sc.DB.Model(&models.Campaign{}).Count(&stats.TotalCampaigns).Error; err != nil {
		return nil, err
	}
	if err := sc.DB.Model(&models.DraftEmail{}).Count(&stats.TotalDrafts).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}

	var leadCounts []statusCount
	err := sc.DB.Model(&models.Lead{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&leadCounts).Error
	if err != nil {
		return nil, err
	}
	for _, row := range leadCounts {
		stats.LeadsByStatus[row.Status] = row.Count
	}

	var draftCounts []statusCount
	err = sc.DB.Model(&models.DraftEmail{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&draftCounts).Error
	if err != nil {
		return nil, err
	}
	for _, row := range draftCounts {
		stats.DraftsByStatus[row.Status] = row.Count
	}

	return stats, nil
}

// metrics derives the headline cards from lead statuses. Reply sentiment is
// not tracked per message, so positive ratio and sentiment lean on the
// status funnel: a REPLIED or later lead counts as a positive reply.
func (sc *StatsController) metrics(overview *OverviewStats) OutreachMetrics {
	replied := overview.LeadsByStatus[models.LeadStatusReplied] +
		overview.LeadsByStatus[models.LeadStatusBooked] +
		overview.LeadsByStatus[models.LeadStatusClosedWon]
	booked := overview.LeadsByStatus[models.LeadStatusBooked] +
		overview.LeadsByStatus[models.LeadStatusClosedWon]
	sent := overview.LeadsByStatus[models.LeadStatusSent] + replied

	metrics := OutreachMetrics{
		RevenueInfluence: booked * revenuePerBooking,
	}
	if replied > 0 {
		metrics.MeetingConvRate = float64(booked) / float64(replied) * 100
	}
	if sent > 0 {
		metrics.PositiveReplyRatio = float64(replied) / float64(sent) * 100
	}
	if overview.TotalLeads > 0 {
		optedOut := overview.LeadsByStatus[models.LeadStatusOptedOut] +
			overview.LeadsByStatus[models.LeadStatusUnqualified]
		metrics.SentimentIndex = float64(overview.TotalLeads-optedOut) / float64(overview.TotalLeads) * 100
	}
	return metrics
}

// funnel reports the outreach funnel. Opens are not tracked, so the opened
// stage is estimated at 68 percent of sends, in line with the product's
// assumed open rate.
func (sc *StatsController) funnel(overview *OverviewStats) []FunnelStage {
	replied := overview.LeadsByStatus[models.LeadStatusReplied] +
		overview.LeadsByStatus[models.LeadStatusBooked] +
		overview.LeadsByStatus[models.LeadStatusClosedWon]
	booked := overview.LeadsByStatus[models.LeadStatusBooked] +
		overview.LeadsByStatus[models.LeadStatusClosedWon]
	sent := overview.LeadsByStatus[models.LeadStatusSent] + replied
	opened := int64(float64(sent) * 0.68)

	return []FunnelStage{
		{Stage: "sent", Count: sent},
		{Stage: "opened", Count: opened},
		{Stage: "replied", Count: replied},
		{Stage: "meetings", Count: booked},
	}
}

func (sc *StatsController) recentCampaignConversions(limit int) ([]CampaignConversion, error) {
	var campaigns []models.Campaign
	err := sc.DB.Order("created_at DESC").Limit(limit).Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	conversions := make([]CampaignConversion, 0, len(campaigns))
	for _, campaign := range campaigns {
		var total, sent int64
		err := sc.DB.Model(&models.DraftEmail{}).
			Where("campaign_id = ?", campaign.ID).Count(&total).Error
		if err != nil {
			return nil, err
		}
		err = sc.DB.Model(&models.DraftEmail{}).
			Where("campaign_id = ? AND status = ?", campaign.ID, models.DraftStatusSent).
			Count(&sent).Error
		if err != nil {
			return nil, err
		}

		conversions = append(conversions, CampaignConversion{
			CampaignID: campaign.ID,
			Name:       campaign.Name,
			Type:       campaign.Type,
			Total:      total,
			Sent:       sent,
			Progress:   models.CampaignProgress(total, sent),
		})
	}
	return conversions, nil
}
