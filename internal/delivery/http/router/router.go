// Package router contains routing setup for the HTTP delivery.
package router

import (
	"vigil/internal/delivery/http/middleware"
	"vigil/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	MonitorHandler  *handler.MonitorHandler
	MapHandler      *handler.MapHandler
	StatsHandler    *handler.StatsHandler
	ProfileHandler  *handler.ProfileHandler
	ReminderHandler *handler.ReminderHandler
	DeviceHandler   *handler.DeviceHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	monitorHandler  *handler.MonitorHandler
	mapHandler      *handler.MapHandler
	statsHandler    *handler.StatsHandler
	profileHandler  *handler.ProfileHandler
	reminderHandler *handler.ReminderHandler
	deviceHandler   *handler.DeviceHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		monitorHandler:  params.MonitorHandler,
		mapHandler:      params.MapHandler,
		statsHandler:    params.StatsHandler,
		profileHandler:  params.ProfileHandler,
		reminderHandler: params.ReminderHandler,
		deviceHandler:   params.DeviceHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the console routes.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// The map page is served outside /api so it can be opened directly in
	// a browser tab next to the console.
	e.GET("/map", r.mapHandler.MapPage, r.authMiddleware.RequireSession)

	// Auth routes
	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// The console polls this to decide whether to show the login form, so it
	// is reachable without a session.
	e.GET("/api/session", r.authHandler.Session)

	// Monitoring routes that require an authenticated session
	monitorGroup := e.Group("/api/monitor")
	monitorGroup.Use(r.authMiddleware.RequireSession)
	{
		monitorGroup.POST("/connect", r.monitorHandler.Connect)
		monitorGroup.POST("/disconnect", r.monitorHandler.Disconnect)
		monitorGroup.GET("/status", r.monitorHandler.Status)
		monitorGroup.GET("/alerts", r.monitorHandler.Alerts)
		monitorGroup.POST("/alerts/:id/ack", r.monitorHandler.AcknowledgeAlert)
		monitorGroup.GET("/location.geojson", r.monitorHandler.LatestLocation)
	}

	// Statistics route
	e.GET("/api/statistics", r.statsHandler.Statistics, r.authMiddleware.RequireSession)

	// Profile routes
	profileGroup := e.Group("/api/profile")
	profileGroup.Use(r.authMiddleware.RequireSession)
	{
		profileGroup.GET("", r.profileHandler.GetProfile)
		profileGroup.PUT("", r.profileHandler.UpdateProfile)
	}

	// Medication reminder routes
	reminderGroup := e.Group("/api/reminders")
	reminderGroup.Use(r.authMiddleware.RequireSession)
	{
		reminderGroup.GET("", r.reminderHandler.ListReminders)
		reminderGroup.POST("", r.reminderHandler.CreateReminder)
		reminderGroup.DELETE("/:id", r.reminderHandler.DeleteReminder)
	}

	// Device pairing routes
	deviceGroup := e.Group("/api/device")
	deviceGroup.Use(r.authMiddleware.RequireSession)
	{
		deviceGroup.GET("", r.deviceHandler.DeviceInfo)
		deviceGroup.GET("/qr", r.deviceHandler.PairingQR)
	}
}
