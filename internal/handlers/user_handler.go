package handlers

import (
	"net/http"
	"time"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UserResponse keeps password hashes out of API responses.
type UserResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ClassName string    `json:"className"`
	School    string    `json:"school"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	PhotoURL  string    `json:"photoUrl"`
}

func toUserResponse(user models.User) UserResponse {
	photoURL := user.PhotoURL
	if photoURL == "" {
		photoURL = "/static/placeholder.png"
	}
	return UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		ClassName: user.ClassName,
		School:    user.School,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		PhotoURL:  photoURL,
	}
}

type createUserInput struct {
	FullName  string `json:"fullName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role" binding:"required,oneof=student delegate admin"`
	ClassName string `json:"className" binding:"required"`
	School    string `json:"school"`
}

type updateUserInput struct {
	FullName  string `json:"fullName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Role      string `json:"role" binding:"required,oneof=student delegate admin"`
	ClassName string `json:"className" binding:"required"`
	School    string `json:"school"`
	Active    *bool  `json:"active"`
	Password  string `json:"password"` // optional reset
}

// ListUsersHandler returns the roster, paginated unless all=true.
func ListUsersHandler(c *gin.Context) {
	var users []models.User
	query := config.DB.Order("id asc")

	if c.Query("className") != "" {
		query = query.Where("class_name = ?", c.Query("className"))
	}

	if c.Query("all") == "true" {
		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
			return
		}
		responses := make([]UserResponse, 0, len(users))
		for _, user := range users {
			responses = append(responses, toUserResponse(user))
		}
		c.JSON(http.StatusOK, gin.H{"data": responses})
		return
	}

	countQuery := config.DB.Model(&models.User{})
	if c.Query("className") != "" {
		countQuery = countQuery.Where("class_name = ?", c.Query("className"))
	}
	var totalRows int64
	countQuery.Count(&totalRows)

	if err := query.Scopes(Paginate(c)).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, toUserResponse(user))
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, responses, totalRows))
}

// GetUserHandler retrieves a single account by ID.
func GetUserHandler(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// CreateUserHandler enrolls a new account from the admin console.
func CreateUserHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var input createUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email, role, class and a password of at least 6 characters are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create user"})
		return
	}

	user := models.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		ClassName:    input.ClassName,
		School:       input.School,
		Active:       true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		respondDBError(c, err, "An account with this email already exists", "Could not create user")
		return
	}

	models.LogActivity(ident.FullName, "user_create", user.Email, models.SeverityInfo)
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// UpdateUserHandler edits an account; the cached identity is invalidated so
// a role or class change takes effect on the user's next request.
func UpdateUserHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input updateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email, role and class are required"})
		return
	}

	user.FullName = input.FullName
	user.Email = input.Email
	user.Role = input.Role
	user.ClassName = input.ClassName
	user.School = input.School
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Password != "" {
		if len(input.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update user"})
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := config.DB.Save(&user).Error; err != nil {
		respondDBError(c, err, "An account with this email already exists", "Could not update user")
		return
	}

	middleware.InvalidateIdentity(user.ID)
	models.LogActivity(ident.FullName, "user_update", user.Email, models.SeverityInfo)
	c.JSON(http.StatusOK, toUserResponse(user))
}

// RevokeUserHandler deactivates an account instead of hard-deleting it; the
// row stays for the audit trail and re-activation.
func RevokeUserHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.ID == ident.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot revoke your own account"})
		return
	}

	if err := config.DB.Model(&user).Update("active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not revoke user"})
		return
	}

	middleware.InvalidateIdentity(user.ID)
	models.LogActivity(ident.FullName, "user_revoke", user.Email, models.SeverityWarning)
	c.JSON(http.StatusOK, gin.H{"message": "Account revoked"})
}
