package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler checks credentials and issues the session cookie. Failure
// causes are kept human-readable but never reveal whether the email exists.
func LoginHandler(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account has been deactivated"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenLifetime).Unix(),
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JwtKey)
	if err != nil {
		slog.Error("Failed to sign session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start session"})
		return
	}

	c.SetCookie("auth_token", tokenStr, int(tokenLifetime.Seconds()), "/", "", false, true)
	models.LogActivity(user.FullName, "login", user.Email, models.SeverityInfo)

	c.JSON(http.StatusOK, gin.H{
		"token": tokenStr,
		"user": gin.H{
			"id":         user.ID,
			"fullName":   user.FullName,
			"email":      user.Email,
			"role":       user.Role,
			"className":  user.ClassName,
			"school":     user.School,
			"themeColor": user.ThemeColor,
			"photoUrl":   user.PhotoURL,
		},
	})
}

// LogoutHandler tears the session down no matter what. The cookie is cleared
// and 200 returned even when Redis is away or the token is already expired:
// signing out must never leave the caller stuck looking authenticated.
func LogoutHandler(c *gin.Context) {
	if userID, ok := userIDFromCookie(c); ok {
		purgeAuthKeys(userID)
		middleware.InvalidateIdentity(userID)
	}
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// userIDFromCookie extracts the user id from the session cookie without
// requiring a still-valid signature lifetime; an expired token must still be
// enough to purge its own server-side keys.
func userIDFromCookie(c *gin.Context) (uint, bool) {
	tokenStr, err := c.Cookie("auth_token")
	if err != nil || tokenStr == "" {
		return 0, false
	}
	token, _, err := jwt.NewParser().ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return uint(userIDFloat), true
}

// purgeAuthKeys removes every Redis key tied to the user's session by pattern
// and stamps a revocation marker so outstanding tokens die. Best-effort: any
// failure is logged and ignored.
func purgeAuthKeys(userID uint) {
	if config.RDB == nil {
		return
	}
	pattern := "auth:*:" + strconv.FormatUint(uint64(userID), 10)
	iter := config.RDB.Scan(config.Ctx, 0, pattern, 100).Iterator()
	for iter.Next(config.Ctx) {
		if err := config.RDB.Del(config.Ctx, iter.Val()).Err(); err != nil {
			slog.Warn("Failed to delete auth key on logout", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Warn("Auth key scan failed on logout", "error", err, "user_id", userID)
	}
	marker := strconv.FormatInt(time.Now().Unix(), 10)
	if err := config.RDB.Set(config.Ctx, middleware.RevocationKey(userID), marker, tokenLifetime).Err(); err != nil {
		slog.Warn("Failed to set revocation marker on logout", "error", err, "user_id", userID)
	}
}

// GetSessionHandler returns the identity behind the current token; the SPA
// calls it once on boot to restore a session.
func GetSessionHandler(c *gin.Context) {
	ident := middleware.Identity(c)
	if ident == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, ident.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"fullName":   user.FullName,
		"email":      user.Email,
		"role":       user.Role,
		"className":  user.ClassName,
		"school":     user.School,
		"themeColor": user.ThemeColor,
		"photoUrl":   user.PhotoURL,
	})
}
