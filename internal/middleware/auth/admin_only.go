package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/tokens"
)

// RequireAdmin lets through only requests whose token carries isAdmin=true.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(tokens.RoleAdmin, next)
}
