package songs

import (
	"karaoke/internal/shared/config"
	"karaoke/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSongRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	songs := router.Group("/songs")
	songs.Use(middleware.VenueScope(cfg))
	{
		songs.GET("", controller.SearchSongs)                                  // GET /api/v1/songs?q= - Search the venue catalogue
		songs.POST("", controller.CreateSong)                                  // POST /api/v1/songs - Add a song
		songs.DELETE("/:id", middleware.RequireOwner(), controller.DeleteSong) // DELETE /api/v1/songs/:id - Owner only
	}
}
