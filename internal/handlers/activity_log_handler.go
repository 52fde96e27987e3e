package handlers

import (
	"net/http"

	"uniconnect/config"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
)

// ListActivityLogHandler returns the append-only audit trail, newest first.
// Admin console only; entries are never edited or deleted through the API.
func ListActivityLogHandler(c *gin.Context) {
	severity := c.Query("severity")

	countQuery := config.DB.Model(&models.ActivityLogEntry{})
	if severity != "" {
		countQuery = countQuery.Where("severity = ?", severity)
	}
	var totalRows int64
	countQuery.Count(&totalRows)

	query := config.DB.Order("created_at desc")
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}

	var entries []models.ActivityLogEntry
	if err := query.Scopes(Paginate(c)).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch activity log"})
		return
	}
	if entries == nil {
		entries = make([]models.ActivityLogEntry, 0)
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, entries, totalRows))
}
