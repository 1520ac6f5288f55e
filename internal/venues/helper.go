package venues

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"karaoke/internal/session"
	"karaoke/internal/shared/utils/response"
)

// respondError maps session errors onto HTTP statuses
func respondError(ctx *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrPersistenceUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		_ = ctx.Error(err)
	}
	response.RespondJSON(ctx, "error", status, message, nil, err.Error())
}

func indexParam(ctx *gin.Context) (int, error) {
	raw := ctx.Param("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", raw, session.ErrInvalidArgument)
	}
	return index, nil
}

func categoryPrefix(category string) string {
	switch category {
	case "table":
		return session.TablePrefix
	case "bar":
		return session.BarPrefix
	default:
		return ""
	}
}
