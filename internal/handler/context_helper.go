package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ruchikageeminda97/tms-api/internal/middleware"
	"github.com/ruchikageeminda97/tms-api/internal/models"
)

// currentUser extracts the authenticated claims set by the JWT middleware.
func currentUser(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
