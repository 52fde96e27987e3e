package handlers

import (
	"errors"
	"net/http"
	"time"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type pollInput struct {
	Question  string   `json:"question" binding:"required"`
	ClassName string   `json:"className"`
	Options   []string `json:"options" binding:"required,min=2"`
}

// pollOptionResponse carries the derived vote count instead of the raw votes.
type pollOptionResponse struct {
	ID        uint   `json:"id"`
	Label     string `json:"label"`
	VoteCount int    `json:"voteCount"`
}

type pollResponse struct {
	ID            uint                 `json:"id"`
	Question      string               `json:"question"`
	ClassName     string               `json:"className"`
	Active        bool                 `json:"active"`
	CreatedAt     time.Time            `json:"createdAt"`
	Options       []pollOptionResponse `json:"options"`
	VotedOptionID uint                 `json:"votedOptionId,omitempty"`
}

func buildPollResponse(poll models.Poll, viewerID uint) pollResponse {
	resp := pollResponse{
		ID:        poll.ID,
		Question:  poll.Question,
		ClassName: poll.ClassName,
		Active:    poll.Active,
		CreatedAt: poll.CreatedAt,
		Options:   make([]pollOptionResponse, 0, len(poll.Options)),
	}
	for _, opt := range poll.Options {
		resp.Options = append(resp.Options, pollOptionResponse{
			ID:        opt.ID,
			Label:     opt.Label,
			VoteCount: len(opt.Votes),
		})
		for _, vote := range opt.Votes {
			if vote.UserID == viewerID {
				resp.VotedOptionID = opt.ID
			}
		}
	}
	return resp
}

func loadPoll(db *gorm.DB, id interface{}) (models.Poll, error) {
	var poll models.Poll
	err := db.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Options.Votes").
		First(&poll, id).Error
	return poll, err
}

// ListPollsHandler returns visible polls, newest first, with the viewer's
// current choice marked.
func ListPollsHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var polls []models.Poll
	err := config.DB.
		Scopes(ident.VisibleClasses).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Options.Votes").
		Order("created_at desc").
		Find(&polls).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch polls"})
		return
	}

	responses := make([]pollResponse, 0, len(polls))
	for _, poll := range polls {
		responses = append(responses, buildPollResponse(poll, ident.UserID))
	}
	c.JSON(http.StatusOK, responses)
}

// CreatePollHandler opens a poll with at least two options.
func CreatePollHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanPost() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to create polls"})
		return
	}

	var input pollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A poll needs a question and at least two options"})
		return
	}

	className := input.ClassName
	if className == "" {
		className = ident.ClassName
	}
	if className == models.ClassAll && !ident.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators create school-wide polls"})
		return
	}
	if className != models.ClassAll && !ident.CanEditClass(className) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only create polls for your own class"})
		return
	}

	poll := models.Poll{
		Question:  input.Question,
		ClassName: className,
		Active:    true,
		AuthorID:  ident.UserID,
	}
	for i, label := range input.Options {
		poll.Options = append(poll.Options, models.PollOption{Label: label, Position: i})
	}

	if err := config.DB.Create(&poll).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create poll"})
		return
	}

	models.LogActivity(ident.FullName, "poll_create", poll.Question, models.SeverityInfo)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelPolls, Action: "insert", ID: poll.ID, ClassName: className})
	go NotifyAudience(config.DB, className, "Nouveau sondage", poll.Question, models.SeverityInfo)

	poll, _ = loadPoll(config.DB, poll.ID)
	c.JSON(http.StatusCreated, buildPollResponse(poll, ident.UserID))
}

// VoteInPollHandler records the viewer's choice. The whole operation is one
// transaction: any previous vote on this poll is removed before the new row
// goes in, so a viewer holds at most one vote no matter how the calls
// interleave. Switching options replaces, never adds.
func VoteInPollHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	pollID := c.Param("id")
	optionID := c.Param("optionId")

	poll, err := loadPoll(config.DB, pollID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		return
	}
	if !poll.Active {
		c.JSON(http.StatusConflict, gin.H{"error": "This poll is closed"})
		return
	}
	if !ident.IsAdmin() && poll.ClassName != models.ClassAll && poll.ClassName != ident.ClassName {
		c.JSON(http.StatusForbidden, gin.H{"error": "This poll is not open to your class"})
		return
	}

	var option models.PollOption
	if err := config.DB.Where("id = ? AND poll_id = ?", optionID, poll.ID).First(&option).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll option not found"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Hard delete: a soft-deleted row would still occupy the
		// (poll_id, user_id) unique index and block the replacement.
		if err := tx.Unscoped().Where("poll_id = ? AND user_id = ?", poll.ID, ident.UserID).
			Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		vote := models.PollVote{
			PollID:       poll.ID,
			PollOptionID: option.ID,
			UserID:       ident.UserID,
		}
		return tx.Create(&vote).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Your vote was already recorded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
		return
	}

	GlobalHub.Publish(ChangeEvent{Channel: ChannelPolls, Action: "update", ID: poll.ID, ClassName: poll.ClassName})

	poll, _ = loadPoll(config.DB, poll.ID)
	c.JSON(http.StatusOK, buildPollResponse(poll, ident.UserID))
}

type pollStateInput struct {
	Active *bool `json:"active" binding:"required"`
}

// SetPollStateHandler closes or reopens a poll. Owner delegate or admin.
func SetPollStateHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var poll models.Poll
	if err := config.DB.First(&poll, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
		return
	}
	if !ident.CanEditClass(poll.ClassName) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to manage this poll"})
		return
	}

	var input pollStateInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := config.DB.Model(&poll).Update("active", *input.Active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update poll"})
		return
	}

	GlobalHub.Publish(ChangeEvent{Channel: ChannelPolls, Action: "update", ID: poll.ID, ClassName: poll.ClassName})
	c.JSON(http.StatusOK, gin.H{"active": *input.Active})
}

// DeletePollHandler removes a poll and, via cascades, its options and votes.
func DeletePollHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if !ident.CanDelete() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only administrators delete polls"})
		return
	}

	var poll models.Poll
	if err := config.DB.First(&poll, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("poll_id = ?", poll.ID).Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("poll_id = ?", poll.ID).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&poll).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete poll"})
		return
	}

	models.LogActivity(ident.FullName, "poll_delete", poll.Question, models.SeverityWarning)
	GlobalHub.Publish(ChangeEvent{Channel: ChannelPolls, Action: "delete", ID: poll.ID, ClassName: poll.ClassName})
	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted"})
}
