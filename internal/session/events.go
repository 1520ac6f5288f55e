package session

import (
	"context"
	"time"
)

type EventKind string

const (
	EventSongQueued     EventKind = "song_queued"
	EventQueueReordered EventKind = "queue_reordered"
	EventSongRenamed    EventKind = "song_renamed"
	EventSongBoosted    EventKind = "song_boosted"
	EventSongStarted    EventKind = "song_started"
	EventSongCompleted  EventKind = "song_completed"
	EventTimeUp         EventKind = "time_up"
	EventTick           EventKind = "tick"
	EventSeatUpdated    EventKind = "seat_updated"
	EventSeatPaid       EventKind = "seat_paid"
	EventSeatsCleared   EventKind = "seats_cleared"
	EventHistoryUpdated EventKind = "history_updated"
	EventShiftStarted   EventKind = "shift_started"
)

// Event is delivered to observers after every mutation, in mutation order.
type Event struct {
	Kind     EventKind `json:"kind"`
	VenueKey string    `json:"venueKey"`
	SpotID   string    `json:"spotId,omitempty"`
	SongName string    `json:"songName,omitempty"`
	At       time.Time `json:"at"`
	Snapshot Snapshot  `json:"snapshot"`
}

// Observer renders or forwards session changes. It must not call back into
// the session that produced the event.
type Observer interface {
	SessionChanged(event Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) SessionChanged(event Event) { f(event) }

// Observers fans one event out to several observers in order.
type Observers []Observer

func (o Observers) SessionChanged(event Event) {
	for _, observer := range o {
		if observer != nil {
			observer.SessionChanged(event)
		}
	}
}

// Persister stores venue state. Load returns an error wrapping ErrNotFound
// when the venue has never been saved.
type Persister interface {
	Load(ctx context.Context, venueKey string) (*VenueState, error)
	Save(ctx context.Context, venueKey string, update Update) error
}
