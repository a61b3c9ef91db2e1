package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhle/coursehub-auth/internal/auth"
)

// RequireInstructor loads the authenticated account and rejects learners.
// Tokens carry only the account id, so the instructor flag is read from
// the store on every request rather than trusted from a claim; flipping
// the flag takes effect immediately instead of at token expiry.
func RequireInstructor(store auth.AccountStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountID, ok := c.Get(AccessTokenKey).(uint64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			acct, err := store.FindByID(ctx, accountID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if !acct.RoleFlag {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "instructor access required"})
			}
			return next(c)
		}
	}
}
