// Package router wires HTTP routes to handlers and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/minhle/coursehub-auth/internal/auth"
	"github.com/minhle/coursehub-auth/internal/config"
	"github.com/minhle/coursehub-auth/internal/handler"
	"github.com/minhle/coursehub-auth/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication. Only the
// health check lives here.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints and the protected profile
// routes. The unauthenticated group under /v1/auth carries the Redis rate
// limiter; protected endpoints under /v1 require a valid access token, and
// the instructor group additionally requires role_flag on the stored
// account.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, issuer *auth.TokenIssuer, store auth.AccountStore, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewRateLimiter(rlCfg, rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/google", a.FederatedLogin)
	g.POST("/refresh", a.Refresh)

	protected := e.Group("/v1")
	protected.Use(middleware.RequireAccessToken(issuer))
	protected.GET("/me", a.Me)

	instructor := protected.Group("/instructor")
	instructor.Use(middleware.RequireInstructor(store))
	instructor.GET("/me", a.Me)
}
