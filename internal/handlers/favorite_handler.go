package handlers

import (
	"net/http"
	"strconv"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ToggleFavoriteHandler flips the saved state of one announcement for the
// viewer and returns the new state. The unique (user, announcement) index
// absorbs a double-click race: the duplicate insert turns into a no-op
// toggle-off on the next call.
func ToggleFavoriteHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	announcementID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid announcement id"})
		return
	}

	var announcement models.Announcement
	if err := config.DB.First(&announcement, announcementID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	var favorite models.Favorite
	err = config.DB.
		Where("user_id = ? AND announcement_id = ?", ident.UserID, announcementID).
		First(&favorite).Error
	switch {
	case err == nil:
		if err := config.DB.Unscoped().Delete(&favorite).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update favorite"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorited": false})
	case err == gorm.ErrRecordNotFound:
		favorite = models.Favorite{UserID: ident.UserID, AnnouncementID: uint(announcementID)}
		if err := config.DB.Create(&favorite).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusOK, gin.H{"favorited": true})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update favorite"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorited": true})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

// ListFavoritesHandler returns the viewer's saved announcements, still
// filtered by what they may currently see.
func ListFavoritesHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var announcements []models.Announcement
	err := config.DB.
		Scopes(ident.VisibleClasses).
		Joins("JOIN favorites ON favorites.announcement_id = announcements.id AND favorites.deleted_at IS NULL").
		Where("favorites.user_id = ?", ident.UserID).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("announcements.created_at desc").
		Find(&announcements).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch favorites"})
		return
	}
	if announcements == nil {
		announcements = make([]models.Announcement, 0)
	}
	c.JSON(http.StatusOK, announcements)
}
