package routes

import (
	"uniconnect/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the whole route tree: public auth endpoints first, then
// everything else behind the token middleware.
func SetupRoutes(r *gin.Engine) {
	RegisterAuthRoutes(r)

	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
