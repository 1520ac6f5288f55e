package notifications

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"karaoke/internal/session"
)

// Board keeps the latest event per venue and redraws the now-playing board
// whenever a newer one arrives.
type Board struct {
	mu     sync.Mutex
	w      io.Writer
	latest map[string]time.Time
}

func NewBoard(w io.Writer) *Board {
	return &Board{w: w, latest: make(map[string]time.Time)}
}

// Handle is an EventHandler. Events older than the last one drawn for the
// same venue are ignored.
func (b *Board) Handle(_ context.Context, event *SessionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if last, ok := b.latest[event.VenueKey]; ok && event.OccurredAt.Before(last) {
		return nil
	}
	b.latest[event.VenueKey] = event.OccurredAt
	return RenderBoard(b.w, event)
}

// RenderBoard writes the display board for the snapshot carried by event
func RenderBoard(w io.Writer, event *SessionEvent) error {
	snap := event.Snapshot
	state := snap.State
	seats := session.NewSeatRegistry(state.Spots, decimal.Zero)

	title := state.VenueName
	if title == "" {
		title = event.VenueKey
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "==== %s ====\n", title)

	if current := state.CurrentSinging; current != nil {
		fmt.Fprintf(&sb, "NOW SINGING: %s - %s   %s\n", seats.SpotDisplay(current.SpotID), current.SongName, snap.ElapsedLabel)
		if state.TimeIsUp {
			sb.WriteString("             TIME IS UP\n")
		}
	} else {
		sb.WriteString("NOW SINGING: -\n")
	}

	if next := snap.OnDeck; next != nil {
		fmt.Fprintf(&sb, "ON DECK:     %s - %s\n", seats.SpotDisplay(next.SpotID), next.SongName)
	} else {
		sb.WriteString("ON DECK:     -\n")
	}

	fmt.Fprintf(&sb, "Queue: %d waiting | Songs tonight: %d\n\n", len(state.SongQueue), snap.TotalSongs)

	_, err := io.WriteString(w, sb.String())
	return err
}
