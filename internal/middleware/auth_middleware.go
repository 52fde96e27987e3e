package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"uniconnect/config"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const identityCacheTTL = 10 * time.Minute

// IdentityCacheKey is the Redis key holding the cached identity snapshot.
// Every auth-related key starts with "auth:" so logout can purge them by
// pattern.
func IdentityCacheKey(userID uint) string {
	return fmt.Sprintf("auth:identity:%d", userID)
}

// RevocationKey marks the moment a user signed out; tokens issued before it
// are dead even though their signature is still valid.
func RevocationKey(userID uint) string {
	return fmt.Sprintf("auth:revoked:%d", userID)
}

// AuthMiddleware authenticates every API request. The identity is re-derived
// from the verified token on each call (cache first, database on miss), so a
// role or class change takes effect within the cache TTL and a revoked
// session dies immediately.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				handleAuthError(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handleAuthError(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Invalid token claims")
			return
		}
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			handleAuthError(c, "Invalid user ID format in token")
			return
		}
		userID := uint(userIDFloat)

		if revokedSince(userID, claims) {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Session has been signed out")
			return
		}

		if ident, ok := cachedIdentity(userID); ok {
			setIdentityAndProceed(c, ident)
			return
		}

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "User from token not found")
			return
		}
		if !user.Active {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Account has been deactivated")
			return
		}

		ident := &models.Identity{
			UserID:    user.ID,
			FullName:  user.FullName,
			Email:     user.Email,
			Role:      user.Role,
			ClassName: user.ClassName,
		}
		cacheIdentity(ident)
		setIdentityAndProceed(c, ident)
	}
}

// RequireAdmin guards the admin console routes.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := Identity(c)
		if ident == nil || !ident.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Administrator access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated snapshot set by AuthMiddleware, or nil.
func Identity(c *gin.Context) *models.Identity {
	v, exists := c.Get("identity")
	if !exists {
		return nil
	}
	ident, ok := v.(*models.Identity)
	if !ok {
		return nil
	}
	return ident
}

func setIdentityAndProceed(c *gin.Context, ident *models.Identity) {
	c.Set("identity", ident)
	c.Set("user_id", ident.UserID)
	c.Next()
}

func revokedSince(userID uint, claims jwt.MapClaims) bool {
	if config.RDB == nil {
		return false
	}
	val, err := config.RDB.Get(config.Ctx, RevocationKey(userID)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Error("Redis GET failed for revocation key", "error", err, "user_id", userID)
		return false
	}
	revokedAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false
	}
	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return true
	}
	return tokenRevoked(int64(issuedAt), revokedAt)
}

// tokenRevoked compares a token's issue time against the logout marker.
// Strictly before: a token issued in the same second as a logout is the newer
// session and stays valid, so logout-then-login within one second works.
func tokenRevoked(issuedAt, revokedAt int64) bool {
	return issuedAt < revokedAt
}

func cachedIdentity(userID uint) (*models.Identity, bool) {
	if config.RDB == nil {
		return nil, false
	}
	data, err := config.RDB.Get(config.Ctx, IdentityCacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Error("Redis GET failed for identity cache", "error", err, "user_id", userID)
		return nil, false
	}
	var ident models.Identity
	if err := json.Unmarshal([]byte(data), &ident); err != nil {
		slog.Warn("Failed to unmarshal cached identity", "user_id", userID)
		return nil, false
	}
	return &ident, true
}

func cacheIdentity(ident *models.Identity) {
	if config.RDB == nil {
		return
	}
	data, err := json.Marshal(ident)
	if err != nil {
		slog.Error("Failed to marshal identity for caching", "error", err, "user_id", ident.UserID)
		return
	}
	if err := config.RDB.Set(config.Ctx, IdentityCacheKey(ident.UserID), data, identityCacheTTL).Err(); err != nil {
		slog.Error("Failed to cache identity", "error", err, "user_id", ident.UserID)
	}
}

// InvalidateIdentity drops the cached snapshot after a profile, role or class
// change so the next request re-reads the database.
func InvalidateIdentity(userID uint) {
	if config.RDB == nil {
		return
	}
	if err := config.RDB.Del(config.Ctx, IdentityCacheKey(userID)).Err(); err != nil {
		slog.Warn("Failed to invalidate cached identity", "error", err, "user_id", userID)
	}
}

func handleAuthError(c *gin.Context, message string) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, "/")
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	}
	c.Abort()
}
