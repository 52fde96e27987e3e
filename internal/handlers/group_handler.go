package handlers

import (
	"net/http"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
)

type groupInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Color string `json:"color"`
}

// ListGroupsHandler returns every class group with its member count. Open to
// all authenticated users: the list backs the class selectors everywhere.
func ListGroupsHandler(c *gin.Context) {
	var groups []models.ClassGroup
	if err := config.DB.Order("name asc").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch class groups"})
		return
	}

	responses := make([]models.ClassGroupResponse, 0, len(groups))
	for _, group := range groups {
		var count int64
		config.DB.Model(&models.User{}).
			Where("class_name = ? AND active = ?", group.Name, true).
			Count(&count)
		responses = append(responses, models.ClassGroupResponse{
			ID:          group.ID,
			Name:        group.Name,
			Email:       group.Email,
			Color:       group.Color,
			MemberCount: count,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// CreateGroupHandler adds a class group. Admin console only.
func CreateGroupHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var input groupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}

	group := models.ClassGroup{Name: input.Name, Email: input.Email, Color: input.Color}
	if err := config.DB.Create(&group).Error; err != nil {
		respondDBError(c, err, "A group with this name already exists", "Could not create group")
		return
	}

	models.LogActivity(ident.FullName, "group_create", group.Name, models.SeverityInfo)
	c.JSON(http.StatusCreated, group)
}

// UpdateGroupHandler renames or recolors a group.
func UpdateGroupHandler(c *gin.Context) {
	var group models.ClassGroup
	if err := config.DB.First(&group, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var input groupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}

	group.Name = input.Name
	group.Email = input.Email
	group.Color = input.Color
	if err := config.DB.Save(&group).Error; err != nil {
		respondDBError(c, err, "A group with this name already exists", "Could not update group")
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteGroupHandler removes a group, refusing while accounts still belong
// to it.
func DeleteGroupHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var group models.ClassGroup
	if err := config.DB.First(&group, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var members int64
	config.DB.Model(&models.User{}).Where("class_name = ?", group.Name).Count(&members)
	if members > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Group still has members; reassign them first"})
		return
	}

	if err := config.DB.Delete(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete group"})
		return
	}

	models.LogActivity(ident.FullName, "group_delete", group.Name, models.SeverityWarning)
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}
