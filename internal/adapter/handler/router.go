package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labops-team/standup-assistant/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	standups    *Standup
	transcripts *Transcript
	maintenance *Maintenance
	auth        echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers. auth guards every /v1
// route; pass nil to leave the API open (tests, local development).
func NewRouter(cfg *config.Config, standups *Standup, transcripts *Transcript, maintenance *Maintenance, auth echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:         cfg,
		standups:    standups,
		transcripts: transcripts,
		maintenance: maintenance,
		auth:        auth,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Stored audio is served directly from the content directory
	e.Static(rt.cfg.Audio.PublicPath, rt.cfg.Audio.ContentDir)

	// API v1 group
	v1 := e.Group("/v1")
	if rt.auth != nil {
		v1.Use(rt.auth)
	}

	rt.setupStandupRoutes(v1)
	rt.setupTranscriptRoutes(v1)
	rt.setupAdminRoutes(v1)
}

// setupStandupRoutes configures standup lifecycle and pipeline routes
func (rt *Router) setupStandupRoutes(g *echo.Group) {
	standups := g.Group("/standups")
	standups.POST("", rt.standups.Create)
	standups.GET("/:id", rt.standups.Get)
	standups.PATCH("/:id", rt.standups.Update)
	standups.DELETE("/:id", rt.standups.Delete)

	standups.POST("/:id/audio", rt.standups.UploadAudio)
	standups.GET("/:id/audio", rt.standups.GetAudio)
	standups.POST("/:id/extract", rt.standups.Reprocess)

	standups.GET("/:id/transcript", rt.transcripts.Get)
	standups.PATCH("/:id/transcript", rt.transcripts.Update)
	standups.DELETE("/:id/transcript", rt.transcripts.Delete)
	standups.POST("/:id/transcript/extend", rt.transcripts.ExtendRetention)
	standups.GET("/:id/transcript/export", rt.transcripts.Export)
	standups.POST("/:id/transcript/export/object", rt.transcripts.ExportToObjectStore)

	standups.GET("/search", rt.standups.Search)

	labs := g.Group("/labs")
	labs.GET("/:labId/standups", rt.standups.ListByLab)
	labs.GET("/:labId/standups/stats", rt.standups.Stats)
	labs.GET("/:labId/transcripts/stats", rt.transcripts.Stats)

	g.PATCH("/action-items/:id/status", rt.standups.UpdateActionItemStatus)
	g.PATCH("/blockers/:id/status", rt.standups.UpdateBlockerStatus)
}

// setupTranscriptRoutes configures cross-standup transcript routes
func (rt *Router) setupTranscriptRoutes(g *echo.Group) {
	transcripts := g.Group("/transcripts")
	transcripts.GET("/search", rt.transcripts.Search)
	transcripts.GET("/expiring", rt.transcripts.Expiring)
}

// setupAdminRoutes configures ad-hoc maintenance routes
func (rt *Router) setupAdminRoutes(g *echo.Group) {
	admin := g.Group("/admin")
	admin.POST("/cleanup/audio", rt.maintenance.CleanupAudio)
	admin.POST("/cleanup/transcripts", rt.maintenance.CleanupTranscripts)
	admin.GET("/audio/stats", rt.maintenance.AudioStats)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
