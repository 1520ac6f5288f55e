package analytics

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"karaoke/internal/session"
	"karaoke/internal/shared/middleware"
	"karaoke/internal/shared/utils/response"
)

// Controller defines the reporting controller interface
type Controller interface {
	GetShiftSummary(c *gin.Context)
	ExportHistoryCSV(c *gin.Context)
}

type controller struct {
	service Service
}

// NewController creates a new reporting controller instance
func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetShiftSummary(c *gin.Context) {
	report, err := ctrl.service.ShiftReport(c.Request.Context(), c.GetString(middleware.ContextVenueKey))
	if err != nil {
		response.RespondJSON(c, "error", statusFor(err), "Failed to build shift report", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Shift report retrieved successfully", report, nil)
}

// ExportHistoryCSV renders into a buffer first so a failure can still be
// reported as JSON.
func (ctrl *controller) ExportHistoryCSV(c *gin.Context) {
	venueKey := c.GetString(middleware.ContextVenueKey)

	var buf bytes.Buffer
	if err := ctrl.service.WriteHistoryCSV(c.Request.Context(), venueKey, &buf); err != nil {
		_ = c.Error(err)
		response.RespondJSON(c, "error", statusFor(err), "Failed to export history", nil, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="history-%s.csv"`, venueKey))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
