package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware wires the token validator used by Authentication.
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(cfg, db)
}

// Authentication validates the Bearer token and stores the caller's
// principal in the request context. Authorization stays with the permission
// table in the controllers; this layer only answers "who is calling".
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := jwtService.ExtractClaims(parts[1])
		if err != nil {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("principal", services.Principal{
			ID:   claims.UserID,
			Role: models.UserRole(claims.Role),
		})
		c.Next()
	}
}

// GetPrincipal reads the authenticated caller back out of the context. The
// second return is false on unauthenticated routes.
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	v, exists := c.Get("principal")
	if !exists {
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	return p, ok
}
