package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type updateProfileInput struct {
	FullName   string `json:"fullName"`
	ThemeColor string `json:"themeColor"`
	PhotoURL   string `json:"photoUrl"`
}

// UpdateProfileHandler applies self-service edits for the acting identity.
func UpdateProfileHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var input updateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, ident.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.ThemeColor != "" {
		user.ThemeColor = input.ThemeColor
	}
	if input.PhotoURL != "" {
		user.PhotoURL = input.PhotoURL
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}
	middleware.InvalidateIdentity(user.ID)

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"fullName":   user.FullName,
		"email":      user.Email,
		"role":       user.Role,
		"className":  user.ClassName,
		"themeColor": user.ThemeColor,
		"photoUrl":   user.PhotoURL,
	})
}

var uploadDir = "./static/uploads"

var allowedPhotoExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadPhotoHandler stores a profile picture under a random name and points
// the account's photoUrl at it. The original filename never reaches disk.
func UploadPhotoHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}
	if file.Size > 5<<20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo must be under 5 MB"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPhotoExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG, PNG and WebP images are accepted"})
		return
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store photo"})
		return
	}
	fileName := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(uploadDir, fileName)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not store photo"})
		return
	}

	photoURL := "/static/uploads/" + fileName
	if err := config.DB.Model(&models.User{}).Where("id = ?", ident.UserID).
		Update("photo_url", photoURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}
	middleware.InvalidateIdentity(ident.UserID)

	c.JSON(http.StatusOK, gin.H{"photoUrl": photoURL})
}

type changePasswordInput struct {
	Current string `json:"current" binding:"required"`
	New     string `json:"new" binding:"required,min=6"`
	Confirm string `json:"confirm" binding:"required"`
}

// ChangePasswordHandler validates length and confirmation locally before
// touching the stored hash.
func ChangePasswordHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var input changePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New password must be at least 6 characters"})
		return
	}
	if input.New != input.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password confirmation does not match"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, ident.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Current)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.New), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}
	user.PasswordHash = string(hash)
	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update password"})
		return
	}

	models.LogActivity(ident.FullName, "password_change", user.Email, models.SeverityInfo)
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
