package handlers

import (
	"net/http"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type scheduleSlotInput struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=5"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Teacher   string `json:"teacher"`
	Room      string `json:"room"`
	Color     string `json:"color"`
}

type scheduleInput struct {
	Slots []scheduleSlotInput `json:"slots"`
}

// GetScheduleHandler returns the whole week grid for one class, ordered for
// direct rendering.
func GetScheduleHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	className := c.Param("className")

	if !ident.IsAdmin() && ident.ClassName != className {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own class schedule"})
		return
	}

	var slots []models.ScheduleSlot
	err := config.DB.
		Where("class_name = ?", className).
		Order("weekday asc, start_time asc").
		Find(&slots).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch schedule"})
		return
	}
	if slots == nil {
		slots = make([]models.ScheduleSlot, 0)
	}
	c.JSON(http.StatusOK, slots)
}

// SaveScheduleHandler replaces a class's entire slot set in one transaction:
// delete-all plus insert-all commit together, so a failure leaves the
// previous grid intact instead of an empty week. Between two concurrent
// editors the last writer wins; there is no merge.
func SaveScheduleHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	className := c.Param("className")

	if !ident.CanEditClass(className) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to edit this schedule"})
		return
	}

	var input scheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Each slot needs a subject and start/end times"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("class_name = ?", className).
			Unscoped().Delete(&models.ScheduleSlot{}).Error; err != nil {
			return err
		}
		for _, in := range input.Slots {
			slot := models.ScheduleSlot{
				ClassName: className,
				Weekday:   in.Weekday,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
				Subject:   in.Subject,
				Teacher:   in.Teacher,
				Room:      in.Room,
				Color:     in.Color,
			}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save schedule"})
		return
	}

	var slots []models.ScheduleSlot
	config.DB.Where("class_name = ?", className).
		Order("weekday asc, start_time asc").
		Find(&slots)

	models.LogActivity(ident.FullName, "schedule_save", className, models.SeverityInfo)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelSchedule, Action: "update", ID: 0, ClassName: className})
	c.JSON(http.StatusOK, slots)
}
