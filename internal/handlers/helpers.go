package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/vidora/backend/internal/models"
)

// getUserIDFromContext extracts the authenticated user ID set by the JWT
// middleware. Returns zero when the request is unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}
