package venues

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"karaoke/internal/session"
)

// JSONValue stores any JSON-encodable value in a jsonb column
type JSONValue[T any] struct {
	Data T
}

func NewJSONValue[T any](data T) JSONValue[T] {
	return JSONValue[T]{Data: data}
}

func (JSONValue[T]) GormDataType() string {
	return "jsonb"
}

func (j JSONValue[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.Data)
	if err != nil {
		return nil, fmt.Errorf("encode jsonb: %w", err)
	}
	return string(data), nil
}

func (j *JSONValue[T]) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		var zero T
		j.Data = zero
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("decode jsonb: unsupported type %T", value)
	}
	return json.Unmarshal(raw, &j.Data)
}

// VenueDocument is one venue's session state, one column per patch kind so
// a partial update rewrites only what changed.
type VenueDocument struct {
	VenueKey       string                             `json:"venue_key" gorm:"primaryKey;type:varchar(64)"`
	VenueName      string                             `json:"venue_name" gorm:"not null;default:''"`
	Spots          JSONValue[map[string]session.Seat] `json:"spots"`
	SongQueue      JSONValue[[]session.QueueEntry]    `json:"song_queue"`
	History        JSONValue[[]session.HistoryEntry]  `json:"history"`
	CurrentSinging JSONValue[*session.NowPlaying]     `json:"current_singing"`
	TimeElapsed    int                                `json:"time_elapsed" gorm:"not null;default:0"`
	TimeIsUp       bool                               `json:"time_is_up" gorm:"not null;default:false"`
	LastUpdated    time.Time                          `json:"last_updated"`
	CreatedAt      time.Time                          `json:"created_at"`
	UpdatedAt      time.Time                          `json:"updated_at"`
}

func (VenueDocument) TableName() string {
	return "venue_documents"
}

func (d *VenueDocument) toState() *session.VenueState {
	return &session.VenueState{
		VenueName:      d.VenueName,
		Spots:          d.Spots.Data,
		SongQueue:      d.SongQueue.Data,
		History:        d.History.Data,
		CurrentSinging: d.CurrentSinging.Data,
		TimeElapsed:    d.TimeElapsed,
		TimeIsUp:       d.TimeIsUp,
		LastUpdated:    d.LastUpdated,
	}
}

func documentFromState(venueKey string, state session.VenueState) *VenueDocument {
	return &VenueDocument{
		VenueKey:       venueKey,
		VenueName:      state.VenueName,
		Spots:          NewJSONValue(state.Spots),
		SongQueue:      NewJSONValue(state.SongQueue),
		History:        NewJSONValue(state.History),
		CurrentSinging: NewJSONValue(state.CurrentSinging),
		TimeElapsed:    state.TimeElapsed,
		TimeIsUp:       state.TimeIsUp,
		LastUpdated:    state.LastUpdated,
	}
}

// updateColumns maps an update onto document columns. Later patches win, as
// they do in Update.ApplyTo.
func updateColumns(update session.Update) map[string]interface{} {
	cols := map[string]interface{}{
		"last_updated": update.At,
	}
	for _, p := range update.Patches {
		switch p := p.(type) {
		case session.SeatsPatch:
			cols["spots"] = NewJSONValue(p.Spots)
		case session.QueuePatch:
			cols["song_queue"] = NewJSONValue(p.SongQueue)
		case session.HistoryPatch:
			cols["history"] = NewJSONValue(p.History)
		case session.PlaybackPatch:
			cols["current_singing"] = NewJSONValue(p.CurrentSinging)
			cols["time_elapsed"] = p.TimeElapsed
			cols["time_is_up"] = p.TimeIsUp
		case session.ElapsedPatch:
			cols["time_elapsed"] = p.TimeElapsed
			cols["time_is_up"] = p.TimeIsUp
		}
	}
	return cols
}
