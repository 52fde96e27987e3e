package handlers

import (
	"net/http"
	"time"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
)

type examInput struct {
	Subject   string    `json:"subject" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Duration  string    `json:"duration"`
	Room      string    `json:"room"`
	Notes     string    `json:"notes"`
	ClassName string    `json:"className"`
}

// ListExamsHandler returns the viewer's exams sorted by date. The optional
// status query partitions against the wall clock: upcoming or past.
func ListExamsHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	query := config.DB.Scopes(ident.VisibleClasses)
	now := time.Now()
	switch c.Query("status") {
	case "upcoming":
		query = query.Where("date > ?", now).Order("date asc")
	case "past":
		query = query.Where("date <= ?", now).Order("date desc")
	default:
		query = query.Order("date asc")
	}

	var exams []models.Exam
	if err := query.Find(&exams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch exams"})
		return
	}
	if exams == nil {
		exams = make([]models.Exam, 0)
	}
	c.JSON(http.StatusOK, exams)
}

// CreateExamHandler adds an exam and immediately re-runs the upcoming-exam
// scan so a short-notice exam alerts without waiting for the hourly tick.
func CreateExamHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanPost() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to schedule exams"})
		return
	}

	var input examInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject and date are required"})
		return
	}

	className := input.ClassName
	if className == "" {
		className = ident.ClassName
	}
	if className == models.ClassAll && !ident.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators schedule school-wide exams"})
		return
	}
	if className != models.ClassAll && !ident.CanEditClass(className) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only schedule exams for your own class"})
		return
	}

	exam := models.Exam{
		Subject:   input.Subject,
		Date:      input.Date,
		Duration:  input.Duration,
		Room:      input.Room,
		Notes:     input.Notes,
		ClassName: className,
		AuthorID:  ident.UserID,
	}
	if err := config.DB.Create(&exam).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create exam"})
		return
	}

	models.LogActivity(ident.FullName, "exam_create", exam.Subject, models.SeverityInfo)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelExams, Action: "insert", ID: exam.ID, ClassName: className})
	go ScanUpcomingExams(config.DB, time.Now())

	c.JSON(http.StatusCreated, exam)
}

// UpdateExamHandler edits an exam under the class-ownership rule.
func UpdateExamHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var exam models.Exam
	if err := config.DB.First(&exam, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
		return
	}
	if !ident.CanEditClass(exam.ClassName) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to edit this exam"})
		return
	}

	var input examInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject and date are required"})
		return
	}

	exam.Subject = input.Subject
	exam.Date = input.Date
	exam.Duration = input.Duration
	exam.Room = input.Room
	exam.Notes = input.Notes
	if err := config.DB.Save(&exam).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update exam"})
		return
	}

	GlobalHub.Publish(ChangeEvent{Channel: ChannelExams, Action: "update", ID: exam.ID, ClassName: exam.ClassName})
	c.JSON(http.StatusOK, exam)
}

// DeleteExamHandler removes an exam. Administrators only.
func DeleteExamHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators delete exams"})
		return
	}

	var exam models.Exam
	if err := config.DB.First(&exam, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
		return
	}
	if err := config.DB.Delete(&exam).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete exam"})
		return
	}

	models.LogActivity(ident.FullName, "exam_delete", exam.Subject, models.SeverityWarning)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelExams, Action: "delete", ID: exam.ID, ClassName: exam.ClassName})
	c.JSON(http.StatusOK, gin.H{"message": "Exam deleted"})
}
