package venues

import (
	"karaoke/internal/shared/config"
	"karaoke/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	venue := rg.Group("")
	venue.Use(middleware.VenueScope(cfg))
	{
		venue.GET("/session", controller.GetSession)
		venue.POST("/shift", middleware.RequireOwner(), controller.StartNewShift)

		seats := venue.Group("/seats")
		seats.GET("", controller.GetSeats)
		seats.PUT("/:id/occupant", controller.UpdateOccupant)
		seats.PUT("/:id/count", controller.UpdateCount)
		seats.POST("/:id/paid", controller.MarkPaid)
		seats.POST("/clear", controller.ClearSeats)

		queue := venue.Group("/queue")
		queue.GET("", controller.GetQueue)
		queue.POST("", controller.Enqueue)
		queue.POST("/boost", controller.Boost)
		queue.POST("/:index/up", controller.MoveUp)
		queue.POST("/:index/down", controller.MoveDown)
		queue.PUT("/:index", controller.Rename)

		playback := venue.Group("/playback")
		playback.GET("", controller.GetPlayback)
		playback.POST("/start", controller.Start)
		playback.POST("/next", controller.StartNext)
		playback.POST("/complete", controller.Complete)

		history := venue.Group("/history")
		history.GET("", controller.GetHistory)
		history.PUT("/prices", controller.SetAllPrices)
		history.PUT("/:index/price", controller.UpdatePrice)
		history.DELETE("", middleware.RequireOwner(), controller.ClearHistory)
	}
}
