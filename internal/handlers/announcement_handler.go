package handlers

import (
	"net/http"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type announcementLinkInput struct {
	Label string `json:"label" binding:"required"`
	URL   string `json:"url" binding:"required"`
}

type announcementInput struct {
	Title     string                  `json:"title" binding:"required"`
	Content   string                  `json:"content" binding:"required"`
	ClassName string                  `json:"className"`
	Priority  string                  `json:"priority"`
	Links     []announcementLinkInput `json:"links"`
}

// ListAnnouncementsHandler returns the feed the viewer may see, newest first.
// Priority tiers are a display concern; the client pins urgent posts.
func ListAnnouncementsHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var announcements []models.Announcement
	err := config.DB.
		Scopes(ident.VisibleClasses).
		Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("created_at desc").
		Find(&announcements).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch announcements"})
		return
	}

	if announcements == nil {
		announcements = make([]models.Announcement, 0)
	}
	c.JSON(http.StatusOK, announcements)
}

// CreateAnnouncementHandler posts to the feed. Admins may target any class,
// delegates only their own (or nothing school-wide).
func CreateAnnouncementHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanPost() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to post announcements"})
		return
	}

	var input announcementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	className := input.ClassName
	if className == "" {
		className = ident.ClassName
	}
	if !ident.CanEditClass(className) && className != models.ClassAll {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only post to your own class"})
		return
	}
	if className == models.ClassAll && !ident.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators post school-wide"})
		return
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	announcement := models.Announcement{
		Title:      input.Title,
		Content:    input.Content,
		AuthorID:   ident.UserID,
		AuthorName: ident.FullName,
		ClassName:  className,
		Priority:   priority,
	}
	for i, link := range input.Links {
		announcement.Links = append(announcement.Links, models.AnnouncementLink{
			Label:    link.Label,
			URL:      link.URL,
			Position: i,
		})
	}

	if err := config.DB.Create(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create announcement"})
		return
	}

	config.DB.Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&announcement, announcement.ID)

	models.LogActivity(ident.FullName, "announcement_create", announcement.Title, models.SeverityInfo)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelAnnouncements, Action: "insert", ID: announcement.ID, ClassName: className})
	go NotifyAudience(config.DB, className, "Nouvelle annonce: "+announcement.Title, announcement.Content, severityFor(priority))

	c.JSON(http.StatusCreated, announcement)
}

func severityFor(priority string) string {
	switch priority {
	case models.PriorityUrgent:
		return models.SeverityUrgent
	case models.PriorityImportant:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}

// UpdateAnnouncementHandler edits an existing post. Links are replaced as a
// whole so their order always matches the submitted list.
func UpdateAnnouncementHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	announcementID := c.Param("id")

	var announcement models.Announcement
	if err := config.DB.First(&announcement, announcementID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}
	if !ident.CanEditClass(announcement.ClassName) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to edit this announcement"})
		return
	}

	var input announcementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		announcement.Title = input.Title
		announcement.Content = input.Content
		if input.Priority != "" {
			announcement.Priority = input.Priority
		}
		if err := tx.Save(&announcement).Error; err != nil {
			return err
		}
		// Hard delete: the replaced rows are gone for good, not residue
		// hidden behind deleted_at.
		if err := tx.Unscoped().Where("announcement_id = ?", announcement.ID).
			Delete(&models.AnnouncementLink{}).Error; err != nil {
			return err
		}
		for i, link := range input.Links {
			l := models.AnnouncementLink{
				AnnouncementID: announcement.ID,
				Label:          link.Label,
				URL:            link.URL,
				Position:       i,
			}
			if err := tx.Create(&l).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update announcement"})
		return
	}

	config.DB.Preload("Links", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&announcement, announcement.ID)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelAnnouncements, Action: "update", ID: announcement.ID, ClassName: announcement.ClassName})
	c.JSON(http.StatusOK, announcement)
}

// DeleteAnnouncementHandler removes a post. Administrators only.
func DeleteAnnouncementHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators delete announcements"})
		return
	}

	var announcement models.Announcement
	if err := config.DB.First(&announcement, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	if err := config.DB.Select("Links").Delete(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete announcement"})
		return
	}

	models.LogActivity(ident.FullName, "announcement_delete", announcement.Title, models.SeverityWarning)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelAnnouncements, Action: "delete", ID: announcement.ID, ClassName: announcement.ClassName})
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted"})
}

// ShareAnnouncementHandler bumps the share counter atomically in SQL so
// concurrent shares never lose an increment.
func ShareAnnouncementHandler(c *gin.Context) {
	var announcement models.Announcement
	if err := config.DB.First(&announcement, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	err := config.DB.Model(&announcement).
		UpdateColumn("share_count", gorm.Expr("share_count + ?", 1)).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record share"})
		return
	}

	config.DB.First(&announcement, announcement.ID)
	c.JSON(http.StatusOK, gin.H{"shareCount": announcement.ShareCount})
}
