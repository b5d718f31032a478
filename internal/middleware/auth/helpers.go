package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AditRobertho/eshop-backend/internal/tokens"
)

const (
	AccessCookie = "accessToken"

	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxClaims = "claims"
)

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// bearerToken prefers the Authorization header and falls back to the
// access cookie. ok reports whether any credential was presented at all.
func bearerToken(c echo.Context) (raw string, fromCookie bool, ok bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		scheme, tok, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false, true
		}
		return strings.TrimSpace(tok), false, true
	}
	if ck, err := c.Cookie(AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, true, true
	}
	return "", false, false
}

func setUserContext(c echo.Context, claims *tokens.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, string(claims.Role()))
	c.Set(ctxClaims, claims)
}

// ClaimsFrom returns the claims stored by RequireAuth, or nil.
func ClaimsFrom(c echo.Context) *tokens.Claims {
	cl, _ := c.Get(ctxClaims).(*tokens.Claims)
	return cl
}

func UserID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}
