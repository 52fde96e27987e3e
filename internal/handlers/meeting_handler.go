package handlers

import (
	"net/http"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
)

type meetingInput struct {
	Title     string `json:"title" binding:"required"`
	Platform  string `json:"platform"`
	URL       string `json:"url" binding:"required,url"`
	TimeLabel string `json:"timeLabel"`
	ClassName string `json:"className"`
}

// ListMeetingsHandler returns the live-session links visible to the viewer.
func ListMeetingsHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var meetings []models.MeetingLink
	err := config.DB.Scopes(ident.VisibleClasses).Order("created_at desc").Find(&meetings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch meetings"})
		return
	}
	if meetings == nil {
		meetings = make([]models.MeetingLink, 0)
	}
	c.JSON(http.StatusOK, meetings)
}

// CreateMeetingHandler publishes a meeting link for the poster's class.
func CreateMeetingHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanPost() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to publish meeting links"})
		return
	}

	var input meetingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and a valid URL are required"})
		return
	}

	className := input.ClassName
	if className == "" {
		className = ident.ClassName
	}
	if className == models.ClassAll && !ident.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators publish school-wide meetings"})
		return
	}
	if className != models.ClassAll && !ident.CanEditClass(className) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only publish meetings for your own class"})
		return
	}

	meeting := models.MeetingLink{
		Title:     input.Title,
		Platform:  input.Platform,
		URL:       input.URL,
		TimeLabel: input.TimeLabel,
		ClassName: className,
		OwnerID:   ident.UserID,
	}
	if err := config.DB.Create(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meeting link"})
		return
	}

	GlobalHub.Publish(ChangeEvent{Channel: ChannelMeetings, Action: "insert", ID: meeting.ID, ClassName: className})
	c.JSON(http.StatusCreated, meeting)
}

// UpdateMeetingHandler lets the owning delegate or an admin edit a link.
func UpdateMeetingHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var meeting models.MeetingLink
	if err := config.DB.First(&meeting, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting link not found"})
		return
	}
	if !ident.IsAdmin() && meeting.OwnerID != ident.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to edit this meeting link"})
		return
	}

	var input meetingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and a valid URL are required"})
		return
	}

	meeting.Title = input.Title
	meeting.Platform = input.Platform
	meeting.URL = input.URL
	meeting.TimeLabel = input.TimeLabel
	if err := config.DB.Save(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meeting link"})
		return
	}

	GlobalHub.Publish(ChangeEvent{Channel: ChannelMeetings, Action: "update", ID: meeting.ID, ClassName: meeting.ClassName})
	c.JSON(http.StatusOK, meeting)
}

// DeleteMeetingHandler removes a link. Administrators only.
func DeleteMeetingHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators delete meeting links"})
		return
	}

	var meeting models.MeetingLink
	if err := config.DB.First(&meeting, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting link not found"})
		return
	}
	if err := config.DB.Delete(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meeting link"})
		return
	}

	GlobalHub.Publish(ChangeEvent{Channel: ChannelMeetings, Action: "delete", ID: meeting.ID, ClassName: meeting.ClassName})
	c.JSON(http.StatusOK, gin.H{"message": "Meeting link deleted"})
}
