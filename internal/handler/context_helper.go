package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ta-hiring-api/internal/middleware"
	"github.com/noah-isme/ta-hiring-api/internal/models"
	appErrors "github.com/noah-isme/ta-hiring-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUsername returns the authenticated applicant's username.
func currentUsername(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Username == "" {
		return "", appErrors.ErrUnauthorized
	}
	return claims.Username, nil
}
