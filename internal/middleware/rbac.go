package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
	"github.com/noah-isme/ta-hiring-api/pkg/response"
)

// RequireRoles lets the request through only when the token's role is one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		claims, ok := value.(*models.JWTClaims)
		if !exists || !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" may not perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}
