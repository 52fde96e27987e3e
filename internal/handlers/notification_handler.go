package handlers

import (
	"net/http"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
)

// ListNotificationsHandler returns the viewer's personal alerts, newest
// first, with the derived unread count.
func ListNotificationsHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var notifications []models.Notification
	err := config.DB.
		Where("user_id = ?", ident.UserID).
		Order("created_at desc").
		Limit(100).
		Find(&notifications).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch notifications"})
		return
	}
	if notifications == nil {
		notifications = make([]models.Notification, 0)
	}

	var unread int64
	config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", ident.UserID, false).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unreadCount": unread})
}

// MarkNotificationReadHandler flips one alert to read. Owner only.
func MarkNotificationReadHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var notification models.Notification
	if err := config.DB.Where("id = ? AND user_id = ?", c.Param("id"), ident.UserID).
		First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if err := config.DB.Model(&notification).Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

// MarkAllNotificationsReadHandler clears the viewer's unread count.
func MarkAllNotificationsReadHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", ident.UserID, false).
		Update("read", true).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All marked as read"})
}

// DeleteNotificationHandler removes one of the viewer's alerts.
func DeleteNotificationHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	result := config.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), ident.UserID).
		Delete(&models.Notification{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
