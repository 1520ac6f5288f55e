package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"karaoke/internal/session"
)

// SessionEvent is the wire form of a session change. One is published for
// every forwarded observer event.
type SessionEvent struct {
	ID         string            `json:"id"`
	Kind       session.EventKind `json:"kind"`
	VenueKey   string            `json:"venue_key"`
	SpotID     string            `json:"spot_id,omitempty"`
	SongName   string            `json:"song_name,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Snapshot   session.Snapshot  `json:"snapshot"`
}

// NewSessionEvent wraps an observer event with a fresh id
func NewSessionEvent(event session.Event) *SessionEvent {
	return &SessionEvent{
		ID:         uuid.New().String(),
		Kind:       event.Kind,
		VenueKey:   event.VenueKey,
		SpotID:     event.SpotID,
		SongName:   event.SongName,
		OccurredAt: event.At,
		Snapshot:   event.Snapshot,
	}
}

// ToJSON converts the event to JSON
func (e *SessionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event published by ToJSON
func FromJSON(data []byte) (*SessionEvent, error) {
	var event SessionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session event: %w", err)
	}
	if event.VenueKey == "" || event.Kind == "" {
		return nil, fmt.Errorf("session event %q is missing venue or kind", event.ID)
	}
	return &event, nil
}

// GetPartitionKey keeps every event of one venue on one partition, so
// consumers see them in mutation order
func (e *SessionEvent) GetPartitionKey() string {
	return e.VenueKey
}

// RoutingKey is the topic-exchange key, e.g. "session.song_started"
func (e *SessionEvent) RoutingKey() string {
	return "session." + string(e.Kind)
}
