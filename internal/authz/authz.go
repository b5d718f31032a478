package authz

import (
	"errors"

	"github.com/AditRobertho/eshop-backend/internal/tokens"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("admin access required")
)

// Authorize decides whether validated claims may reach an operation that
// needs the given role. Nil claims never pass.
func Authorize(claims *tokens.Claims, need tokens.Role) error {
	if claims == nil {
		return ErrUnauthorized
	}
	switch need {
	case tokens.RoleUser:
		return nil
	case tokens.RoleAdmin:
		if claims.IsAdmin {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
