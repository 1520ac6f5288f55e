package venues

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"karaoke/internal/session"
	"karaoke/internal/shared/middleware"
	"karaoke/internal/shared/utils/response"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// session resolves the caller's venue session, writing the error response
// itself when it cannot.
func (c *Controller) session(ctx *gin.Context) (*session.VenueSession, bool) {
	venueKey := ctx.GetString(middleware.ContextVenueKey)
	if venueKey == "" {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "No venue in request scope", nil, nil)
		return nil, false
	}
	s, err := c.service.Session(ctx.Request.Context(), venueKey)
	if err != nil {
		respondError(ctx, "Venue is unavailable", err)
		return nil, false
	}
	return s, true
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return false
	}
	return true
}

//  SESSION

func (c *Controller) GetSession(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Session retrieved successfully", s.Snapshot(), nil)
}

func (c *Controller) StartNewShift(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	s.StartNewShift()
	response.RespondJSON(ctx, "success", http.StatusOK, "New shift started", s.Snapshot(), nil)
}

//  SEATS

func (c *Controller) GetSeats(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully", toSeatsResponse(s), nil)
}

func (c *Controller) UpdateOccupant(ctx *gin.Context) {
	var req UpdateOccupantRequest
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if err := s.SetOccupant(ctx.Param("id"), req.Occupant); err != nil {
		respondError(ctx, "Failed to update occupant", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Occupant updated", toSeatsResponse(s), nil)
}

func (c *Controller) UpdateCount(ctx *gin.Context) {
	var req UpdateCountRequest
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if err := s.SetPerformedCountString(ctx.Param("id"), req.Count.String()); err != nil {
		respondError(ctx, "Failed to update song count", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Song count updated", toSeatsResponse(s), nil)
}

func (c *Controller) MarkPaid(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if err := s.MarkPaid(ctx.Param("id")); err != nil {
		respondError(ctx, "Failed to mark seat paid", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat marked as paid", toSeatsResponse(s), nil)
}

func (c *Controller) ClearSeats(ctx *gin.Context) {
	var req ClearSeatsRequest
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	cleared, err := s.ClearCategory(categoryPrefix(req.Category))
	if err != nil {
		respondError(ctx, "Failed to clear seats", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seats cleared", ClearSeatsResponse{Cleared: cleared}, nil)
}

//  QUEUE

func (c *Controller) GetQueue(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Queue retrieved successfully", s.Queue(), nil)
}

func (c *Controller) Enqueue(ctx *gin.Context) {
	var req EnqueueRequest
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	added, err := s.EnqueueMany(req.SpotID, req.Songs...)
	if err != nil {
		respondError(ctx, "Failed to queue songs", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Songs queued", added, nil)
}

func (c *Controller) MoveUp(ctx *gin.Context) {
	c.move(ctx, (*session.VenueSession).MoveUp)
}

func (c *Controller) MoveDown(ctx *gin.Context) {
	c.move(ctx, (*session.VenueSession).MoveDown)
}

func (c *Controller) move(ctx *gin.Context, move func(*session.VenueSession, int) bool) {
	index, err := indexParam(ctx)
	if err != nil {
		respondError(ctx, "Invalid queue index", err)
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	moved := move(s, index)
	response.RespondJSON(ctx, "success", http.StatusOK, "Queue updated", MoveResponse{Moved: moved, Queue: s.Queue()}, nil)
}

func (c *Controller) Rename(ctx *gin.Context) {
	index, err := indexParam(ctx)
	if err != nil {
		respondError(ctx, "Invalid queue index", err)
		return
	}
	var req RenameRequest
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	changed, err := s.Rename(index, req.SongName)
	if err != nil {
		respondError(ctx, "Failed to rename song", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Queue updated", RenameResponse{Changed: changed, Queue: s.Queue()}, nil)
}

func (c *Controller) Boost(ctx *gin.Context) {
	var req EntryRef
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}

	var (
		record session.HistoryEntry
		err    error
	)
	if req.EntryID != "" {
		record, err = s.BoostEntry(req.EntryID)
	} else {
		record, err = s.BoostToTop(req.SpotID, req.SongName)
	}
	if err != nil {
		respondError(ctx, "Failed to boost song", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Song boosted to top", record, nil)
}

//  PLAYBACK

func (c *Controller) GetPlayback(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Playback retrieved successfully", toPlaybackResponse(s.Snapshot()), nil)
}

func (c *Controller) Start(ctx *gin.Context) {
	var req EntryRef
	if !c.bind(ctx, &req) {
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}

	var err error
	if req.EntryID != "" {
		_, err = s.StartEntry(req.EntryID)
	} else {
		_, err = s.Start(req.SpotID, req.SongName)
	}
	if err != nil {
		respondError(ctx, "Failed to start song", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Song started", toPlaybackResponse(s.Snapshot()), nil)
}

func (c *Controller) StartNext(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if _, err := s.StartNext(); err != nil {
		respondError(ctx, "Failed to start next song", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Song started", toPlaybackResponse(s.Snapshot()), nil)
}

func (c *Controller) Complete(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Playback updated", CompleteResponse{Completed: s.Complete()}, nil)
}

//  HISTORY

func (c *Controller) GetHistory(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "History retrieved successfully", s.History(), nil)
}

func (c *Controller) UpdatePrice(ctx *gin.Context) {
	index, err := indexParam(ctx)
	if err != nil {
		respondError(ctx, "Invalid history index", err)
		return
	}
	var req PriceRequest
	if !c.bind(ctx, &req) {
		return
	}
	price, err := session.ParsePrice(req.Price)
	if err != nil {
		respondError(ctx, "Invalid price", err)
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if err := s.UpdatePrice(index, price); err != nil {
		respondError(ctx, "Failed to update price", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Price updated", s.History(), nil)
}

func (c *Controller) SetAllPrices(ctx *gin.Context) {
	var req PriceRequest
	if !c.bind(ctx, &req) {
		return
	}
	price, err := session.ParsePrice(req.Price)
	if err != nil {
		respondError(ctx, "Invalid price", err)
		return
	}
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	if err := s.SetAllPrices(price); err != nil {
		respondError(ctx, "Failed to update prices", err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Prices updated", s.History(), nil)
}

func (c *Controller) ClearHistory(ctx *gin.Context) {
	s, ok := c.session(ctx)
	if !ok {
		return
	}
	s.ClearHistory()
	response.RespondJSON(ctx, "success", http.StatusOK, "History cleared", nil, nil)
}
