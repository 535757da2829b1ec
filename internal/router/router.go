package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidhyadham/server/internal/handler"
	"github.com/vidhyadham/server/internal/middleware"
)

// API bundles everything route registration needs. Middleware slots may be
// nil when the corresponding feature is disabled.
type API struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Seats    *handler.SeatHandler
	Stats    *handler.StatsHandler
	Settings *handler.SettingsHandler
	Notify   *handler.NotifyHandler
	Uploads  *handler.UploadHandler

	JWTSecret      string
	RateLimit      echo.MiddlewareFunc
	ResponseCache  echo.MiddlewareFunc
	MetricsEnabled bool
	UploadDir      string
}

// RegisterRoutes registers routes that do not require authentication:
// the health check, the Prometheus scrape endpoint and the static upload
// directory.
func RegisterRoutes(e *echo.Echo, api *API) {
	e.GET("/healthz", handler.Health)
	if api.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	if api.UploadDir != "" {
		e.Static("/uploads", api.UploadDir)
	}
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout live under /v1/auth without a session; /v1/me needs a
// valid access token.
func RegisterAuth(e *echo.Echo, api *API) {
	g := e.Group("/v1/auth")
	g.POST("/register", api.Auth.Register)
	g.POST("/login", api.Auth.Login)
	g.POST("/refresh", api.Auth.Refresh)
	g.POST("/logout", api.Auth.Logout)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(api.JWTSecret))
	me.GET("/me", api.Auth.Me)
	me.POST("/auth/logout-all", api.Auth.LogoutAll)
}

// RegisterAPI registers every protected admin endpoint under /v1. All of
// them require a valid access token with the ADMIN or SUPERADMIN role; GET
// projections additionally sit behind the Redis response cache when it is
// enabled.
func RegisterAPI(e *echo.Echo, api *API) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(api.JWTSecret))
	v1.Use(middleware.RequireRole("ADMIN", "SUPERADMIN"))
	if api.RateLimit != nil {
		v1.Use(api.RateLimit)
	}

	// Read projections, cacheable.
	reads := v1.Group("")
	if api.ResponseCache != nil {
		reads.Use(api.ResponseCache)
	}
	reads.GET("/users", api.Users.List)
	reads.GET("/users/:id", api.Users.Get)
	reads.GET("/users/:id/logs", api.Users.Logs)
	reads.GET("/seats", api.Seats.Grid)
	reads.GET("/seats/availability", api.Seats.Availability)
	reads.GET("/stats", api.Stats.Get)
	reads.GET("/settings", api.Settings.Get)

	// Mutations.
	v1.POST("/users", api.Users.Register)
	v1.PATCH("/users/:id", api.Users.Update)
	v1.PATCH("/users/:id/fee", api.Users.SetFee)
	v1.PATCH("/users/:id/slot", api.Users.ChangeSlot)
	v1.DELETE("/users/:id", api.Users.Delete)
	v1.PUT("/settings", api.Settings.Update)
	v1.POST("/uploads", api.Uploads.Upload)

	// Configuration test hooks.
	v1.POST("/notify/email/test", api.Notify.TestEmail)
	v1.POST("/notify/telegram/test", api.Notify.TestTelegram)
}
