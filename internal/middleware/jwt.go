// Package middleware contains the reusable HTTP middleware of the auth
// service: the access-token guard, the instructor guard and the Redis
// rate limiter.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/minhle/coursehub-auth/internal/auth"
)

// AccessTokenKey is the echo context key holding the authenticated
// account id.
const AccessTokenKey = "account_id"

// RequireAccessToken validates a Bearer access token with the issuer and
// injects the account id into the request context. Access tokens carry
// only the id; anything else about the account is loaded from the store
// by whoever needs it.
func RequireAccessToken(issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")
			accountID, err := issuer.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(AccessTokenKey, accountID)
			return next(c)
		}
	}
}
