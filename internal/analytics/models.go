package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftReport is the end-of-night summary for one venue
type ShiftReport struct {
	VenueKey     string          `json:"venue_key"`
	GeneratedAt  time.Time       `json:"generated_at"`
	RegularSongs int             `json:"regular_songs"`
	BoostedSongs int             `json:"boosted_songs"`
	TotalSongs   int             `json:"total_songs"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	UnpaidTotal  decimal.Decimal `json:"unpaid_total"`
	QueueLength  int             `json:"queue_length"`
	TopSongs     []SongCount     `json:"top_songs"`
	Seats        []SeatLine      `json:"seats"`
}

// SongCount is how often one song was performed
type SongCount struct {
	SongName string `json:"song_name"`
	Count    int    `json:"count"`
}

// SeatLine is the outstanding bill of a seat that still owes for songs
type SeatLine struct {
	SpotID  string          `json:"spot_id"`
	Display string          `json:"display"`
	Songs   int             `json:"songs"`
	Total   decimal.Decimal `json:"total"`
}
