package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dropit-api/internal/handler"
	"github.com/iliyamo/dropit-api/internal/metrics"
	"github.com/iliyamo/dropit-api/internal/middleware"
	"github.com/iliyamo/dropit-api/internal/model"
)

// RegisterRoutes registers the routes that never require authentication:
// liveness probes and, when m is set, the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	e.GET("/health", handler.HealthJSON)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers the /auth routes. Every route passes limit (pass nil
// to disable rate limiting); connect-wallet and profile also require a valid
// session token carrying one of the known roles. On those routes limit runs
// after the token is parsed, so user-keyed strategies see the caller's id.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/auth")

	var public []echo.MiddlewareFunc
	if limit != nil {
		public = append(public, limit)
	}
	g.POST("/register", a.Register, public...)
	g.POST("/verify-email", a.VerifyEmail, public...)
	g.POST("/login", a.Login, public...)
	g.POST("/resend-verification", a.ResendVerification, public...)

	roles := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		roles = append(roles, string(r))
	}
	protected := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(roles...),
	}
	if limit != nil {
		protected = append(protected, limit)
	}
	g.POST("/connect-wallet", a.ConnectWallet, protected...)
	g.GET("/profile", a.Profile, protected...)
}
