package session

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Seat is a billable table or bar stool.
type Seat struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Occupant       string `json:"occupant"`
	PerformedCount int    `json:"performedCount"`
}

// QueueEntry is a pending song request. Time is the request time, not the
// performance time.
type QueueEntry struct {
	ID       string `json:"id"`
	SpotID   string `json:"spotId"`
	SongName string `json:"songName"`
	Time     string `json:"time"`
}

// NowPlaying is the single active performance.
type NowPlaying struct {
	ID          snowflake.ID `json:"id"`
	SpotID      string       `json:"spotId"`
	SongName    string       `json:"songName"`
	OrderedTime string       `json:"orderedTime"`
	StartTime   string       `json:"startTime"`
}

type HistoryStatus string

const (
	StatusPlaying   HistoryStatus = "playing"
	StatusCompleted HistoryStatus = "completed"
	StatusBoosted   HistoryStatus = "boosted"
)

// HistoryEntry records a performance or a boost. Price is fixed when the entry
// is created and only changes through explicit price edits.
type HistoryEntry struct {
	ID          snowflake.ID    `json:"id"`
	SpotID      string          `json:"spotId"`
	SpotName    string          `json:"spotName"`
	Occupant    string          `json:"occupant"`
	SongName    string          `json:"songName"`
	OrderedTime string          `json:"orderedTime"`
	StartTime   string          `json:"startTime"`
	Status      HistoryStatus   `json:"status"`
	Price       decimal.Decimal `json:"price"`
	Action      string          `json:"action,omitempty"`
}

// VenueState is the persisted shape of a venue session.
type VenueState struct {
	VenueName      string          `json:"venueName,omitempty"`
	Spots          map[string]Seat `json:"spots"`
	SongQueue      []QueueEntry    `json:"songQueue"`
	History        []HistoryEntry  `json:"history"`
	CurrentSinging *NowPlaying     `json:"currentSinging"`
	TimeElapsed    int             `json:"timeElapsed"`
	TimeIsUp       bool            `json:"timeIsUp"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

// Clone returns a deep copy safe to hand to other goroutines.
func (v VenueState) Clone() VenueState {
	out := v
	out.Spots = make(map[string]Seat, len(v.Spots))
	for id, seat := range v.Spots {
		out.Spots[id] = seat
	}
	out.SongQueue = append([]QueueEntry(nil), v.SongQueue...)
	out.History = append([]HistoryEntry(nil), v.History...)
	if v.CurrentSinging != nil {
		current := *v.CurrentSinging
		out.CurrentSinging = &current
	}
	return out
}

// Snapshot is the read-only view handed to observers and API callers.
type Snapshot struct {
	VenueKey     string      `json:"venueKey"`
	State        VenueState  `json:"state"`
	OnDeck       *QueueEntry `json:"onDeck,omitempty"`
	ElapsedLabel string      `json:"elapsedLabel"`
	TotalSongs   int         `json:"totalSongs"`
}
