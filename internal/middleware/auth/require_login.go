package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/authz"
	"github.com/AditRobertho/eshop-backend/internal/logging"
	"github.com/AditRobertho/eshop-backend/internal/tokens"
)

type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*tokens.Claims, error)
}

type Gate struct {
	Validator TokenValidator
}

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(tokens.RoleUser, next)
}

func (g *Gate) require(need tokens.Role, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth", "need", string(need))

		var claims *tokens.Claims
		raw, fromCookie, present := bearerToken(c)
		if present {
			cl, err := g.Validator.Validate(ctx, raw)
			if err != nil {
				l.Warn("auth_failed", "status", 401, "reason", "invalid_token", "cookie", fromCookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			claims = cl
		}

		if err := authz.Authorize(claims, need); err != nil {
			if errors.Is(err, authz.ErrUnauthorized) {
				l.Warn("auth_failed", "status", 401, "reason", "missing_token")
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			l.Warn("auth_failed", "status", 403, "reason", "not_admin", "user_id", claims.UserID)
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}

		setUserContext(c, claims)
		return next(c)
	}
}
