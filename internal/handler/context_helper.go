package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/activity-points-api/internal/middleware"
	"github.com/campushub/activity-points-api/internal/models"
)

// claimsFromContext returns the JWT claims the auth middleware stored, or
// nil on routes reachable without a token.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
