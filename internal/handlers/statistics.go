package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gescourrier/mail-registry-api/internal/database"
	apierrors "github.com/gescourrier/mail-registry-api/internal/errors"
	"github.com/gescourrier/mail-registry-api/internal/models"
)

// StatisticsHandler exposes registry-wide counters for dashboards.
type StatisticsHandler struct{}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler() *StatisticsHandler {
	return &StatisticsHandler{}
}

// GetStatistics returns per-register and per-status counts, optionally
// scoped to a single registry year with ?year=.
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	db := database.GetDB()

	var year *int
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid year")
			return
		}
		year = &parsed
	}

	incomingQuery := db.Model(&models.IncomingMail{})
	outgoingQuery := db.Model(&models.OutgoingMail{})
	typeQuery := db.Model(&models.IncomingMail{})
	if year != nil {
		incomingQuery = incomingQuery.Where("arrival_year = ?", *year)
		outgoingQuery = outgoingQuery.Where("signature_year = ?", *year)
		typeQuery = typeQuery.Where("arrival_year = ?", *year)
	}

	var incomingCount, outgoingCount int64
	if err := incomingQuery.Count(&incomingCount).Error; err != nil {
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}
	if err := outgoingQuery.Count(&outgoingCount).Error; err != nil {
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}

	statusCounts := map[models.AssignmentStatus]int64{
		models.StatusPending:   0,
		models.StatusProcessed: 0,
		models.StatusArchived:  0,
	}
	type statusRow struct {
		Status models.AssignmentStatus
		Count  int64
	}
	var rows []statusRow
	if err := db.Model(&models.Assignment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}
	for _, row := range rows {
		statusCounts[row.Status] = row.Count
	}

	var unassignedCount int64
	if err := db.Model(&models.IncomingMail{}).
		Joins("LEFT JOIN assignments ON assignments.mail_id = incoming_mails.id").
		Where("assignments.id IS NULL").
		Count(&unassignedCount).Error; err != nil {
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}

	type typeRow struct {
		Type  string
		Count int64
	}
	var typeRows []typeRow
	if err := typeQuery.
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&typeRows).Error; err != nil {
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}
	byType := make(map[string]int64, len(typeRows))
	for _, row := range typeRows {
		byType[row.Type] = row.Count
	}

	c.JSON(http.StatusOK, gin.H{
		"incomingCount":  incomingCount,
		"outgoingCount":  outgoingCount,
		"unassigned":     unassignedCount,
		"byStatus":       statusCounts,
		"incomingByType": byType,
	})
}
