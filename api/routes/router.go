// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"karaoke/internal/analytics"
	"karaoke/internal/auth"
	"karaoke/internal/shared/config"
	"karaoke/internal/shared/database"
	"karaoke/internal/songs"
	"karaoke/internal/venues"
	"karaoke/pkg/cache"
	"karaoke/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config  *config.Config
	db      *database.DB
	manager *venues.Manager
	log     *logger.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, manager *venues.Manager, log *logger.Logger) *Router {
	return &Router{
		config:  cfg,
		db:      db,
		manager: manager,
		log:     log,
	}
}

// SetupRoutes configures all application routes. Accounts and the song
// catalogue live in PostgreSQL, so local mode serves neither.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		if r.db.PostgreSQL != nil {
			r.setupAuthRoutes(api)
			r.setupSongRoutes(api)
		}
		r.setupVenueRoutes(api)
		r.setupAnalyticsRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "karaoke-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "karaoke-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"storage_mode":  r.config.Storage.Mode,
			"open_sessions": r.manager.OpenSessions(),
			"timestamp":     time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes. Registering an owner
// provisions the venue document through the session manager.
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.PostgreSQL)
	authService := auth.NewService(authRepo, r.manager, r.config, r.log)
	authController := auth.NewController(authService)
	auth.NewRouter(authController, r.config).SetupRoutes(rg)
}

func (r *Router) setupSongRoutes(rg *gin.RouterGroup) {
	var cacheService cache.Service
	if r.db.Redis != nil {
		cacheService = cache.NewService(r.db.Redis, r.log)
	}

	songRepo := songs.NewRepository(r.db.PostgreSQL)
	songService := songs.NewService(songRepo, cacheService, r.log)
	songs.SetupSongRoutes(rg, songs.NewController(songService), r.config)
}

func (r *Router) setupVenueRoutes(rg *gin.RouterGroup) {
	venues.SetupVenueRoutes(rg, venues.NewController(r.manager), r.config)
}

func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	reportService := analytics.NewService(r.manager)
	analytics.SetupAnalyticsRoutes(rg, analytics.NewController(reportService), r.config)
}
