package analytics

import (
	"karaoke/internal/shared/config"
	"karaoke/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	reports := rg.Group("/reports")
	reports.Use(middleware.VenueScope(cfg), middleware.RequireOwner())
	{
		reports.GET("/summary", controller.GetShiftSummary)      // End-of-night totals
		reports.GET("/history.csv", controller.ExportHistoryCSV) // Spreadsheet export
	}
}
