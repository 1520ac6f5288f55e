package songs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"karaoke/internal/shared/middleware"
	"karaoke/internal/shared/utils/response"
)

type Controller interface {
	CreateSong(c *gin.Context)
	SearchSongs(c *gin.Context)
	DeleteSong(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateSong(c *gin.Context) {
	var req CreateSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	venueKey := c.GetString(middleware.ContextVenueKey)
	song, err := ctrl.service.CreateSong(c.Request.Context(), venueKey, c.GetString(middleware.ContextUserID), req)
	if err != nil {
		if errors.Is(err, ErrSongExists) {
			response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to add song", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Song added to catalogue", song, nil)
}

func (ctrl *controller) SearchSongs(c *gin.Context) {
	var query SongSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	songs, err := ctrl.service.SearchSongs(c.Request.Context(), c.GetString(middleware.ContextVenueKey), query)
	if err != nil {
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to search songs", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Songs retrieved successfully", songs, nil)
}

func (ctrl *controller) DeleteSong(c *gin.Context) {
	songID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid song ID", nil, err.Error())
		return
	}

	if err := ctrl.service.DeleteSong(c.Request.Context(), c.GetString(middleware.ContextVenueKey), songID); err != nil {
		if errors.Is(err, ErrSongNotFound) {
			response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to delete song", nil, err.Error())
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Song removed from catalogue", nil, nil)
}
