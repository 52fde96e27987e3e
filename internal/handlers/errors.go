package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// isUniqueViolation detects duplicate-key failures across the Postgres driver
// (SQLSTATE 23505) and the sqlite driver used in tests, without leaking the
// raw message to clients.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(strings.ToUpper(msg), "UNIQUE")
}

// respondDBError normalizes a storage failure to the small taxonomy the UI
// understands: not-found, uniqueness conflict, or a generic message. Raw
// backend payloads never reach the client.
func respondDBError(c *gin.Context, err error, conflictMsg, genericMsg string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case isUniqueViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": conflictMsg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericMsg})
	}
}
