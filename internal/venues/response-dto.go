package venues

import (
	"github.com/shopspring/decimal"

	"karaoke/internal/session"
)

type SeatResponse struct {
	session.Seat
	Display string          `json:"display"`
	Total   decimal.Decimal `json:"total"`
}

type SeatsResponse struct {
	Seats        []SeatResponse  `json:"seats"`
	TotalSongs   int             `json:"total_songs"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type PlaybackResponse struct {
	CurrentSinging *session.NowPlaying `json:"current_singing"`
	TimeElapsed    int                 `json:"time_elapsed"`
	TimeIsUp       bool                `json:"time_is_up"`
	ElapsedLabel   string              `json:"elapsed_label"`
	OnDeck         *session.QueueEntry `json:"on_deck,omitempty"`
}

type MoveResponse struct {
	Moved bool                 `json:"moved"`
	Queue []session.QueueEntry `json:"queue"`
}

type RenameResponse struct {
	Changed bool                 `json:"changed"`
	Queue   []session.QueueEntry `json:"queue"`
}

type ClearSeatsResponse struct {
	Cleared int `json:"cleared"`
}

type CompleteResponse struct {
	Completed bool `json:"completed"`
}

func toSeatsResponse(s *session.VenueSession) SeatsResponse {
	seats := s.Seats()
	out := SeatsResponse{
		Seats:        make([]SeatResponse, 0, len(seats)),
		TotalSongs:   s.TotalSongs(),
		TotalRevenue: s.TotalRevenue(),
	}
	price := s.UnitPrice()
	for _, seat := range seats {
		out.Seats = append(out.Seats, SeatResponse{
			Seat:    seat,
			Display: s.SpotDisplay(seat.ID),
			Total:   price.Mul(decimal.NewFromInt(int64(seat.PerformedCount))),
		})
	}
	return out
}

func toPlaybackResponse(snap session.Snapshot) PlaybackResponse {
	return PlaybackResponse{
		CurrentSinging: snap.State.CurrentSinging,
		TimeElapsed:    snap.State.TimeElapsed,
		TimeIsUp:       snap.State.TimeIsUp,
		ElapsedLabel:   snap.ElapsedLabel,
		OnDeck:         snap.OnDeck,
	}
}
