package session

import "time"

// Patch is one named partial update of a VenueState. The set of variants is
// closed: SeatsPatch, QueuePatch, HistoryPatch, PlaybackPatch and ElapsedPatch.
type Patch interface {
	Kind() string
	Apply(state *VenueState)
}

type SeatsPatch struct {
	Spots map[string]Seat
}

func (SeatsPatch) Kind() string { return "spots" }

func (p SeatsPatch) Apply(state *VenueState) {
	state.Spots = make(map[string]Seat, len(p.Spots))
	for id, seat := range p.Spots {
		state.Spots[id] = seat
	}
}

type QueuePatch struct {
	SongQueue []QueueEntry
}

func (QueuePatch) Kind() string { return "songQueue" }

func (p QueuePatch) Apply(state *VenueState) {
	state.SongQueue = append([]QueueEntry{}, p.SongQueue...)
}

type HistoryPatch struct {
	History []HistoryEntry
}

func (HistoryPatch) Kind() string { return "history" }

func (p HistoryPatch) Apply(state *VenueState) {
	state.History = append([]HistoryEntry{}, p.History...)
}

// PlaybackPatch replaces the active performance together with its timer.
type PlaybackPatch struct {
	CurrentSinging *NowPlaying
	TimeElapsed    int
	TimeIsUp       bool
}

func (PlaybackPatch) Kind() string { return "currentSinging" }

func (p PlaybackPatch) Apply(state *VenueState) {
	if p.CurrentSinging != nil {
		current := *p.CurrentSinging
		state.CurrentSinging = &current
	} else {
		state.CurrentSinging = nil
	}
	state.TimeElapsed = p.TimeElapsed
	state.TimeIsUp = p.TimeIsUp
}

// ElapsedPatch is the periodic timer flush.
type ElapsedPatch struct {
	TimeElapsed int
	TimeIsUp    bool
}

func (ElapsedPatch) Kind() string { return "timeElapsed" }

func (p ElapsedPatch) Apply(state *VenueState) {
	state.TimeElapsed = p.TimeElapsed
	state.TimeIsUp = p.TimeIsUp
}

// Update is what a session hands its Persister after a mutation. Full is set
// when Patches describe the entire state, either on first save or after a
// failed save that left the store behind.
type Update struct {
	Patches []Patch
	At      time.Time
	Full    bool
}

// FullUpdate describes every part of state.
func FullUpdate(state VenueState, at time.Time) Update {
	return Update{
		Patches: []Patch{
			SeatsPatch{Spots: state.Spots},
			QueuePatch{SongQueue: state.SongQueue},
			HistoryPatch{History: state.History},
			PlaybackPatch{
				CurrentSinging: state.CurrentSinging,
				TimeElapsed:    state.TimeElapsed,
				TimeIsUp:       state.TimeIsUp,
			},
		},
		At:   at,
		Full: true,
	}
}

// ApplyTo merges the update onto state and stamps LastUpdated.
func (u Update) ApplyTo(state *VenueState) {
	if state.Spots == nil {
		state.Spots = make(map[string]Seat)
	}
	for _, p := range u.Patches {
		p.Apply(state)
	}
	state.LastUpdated = u.At
}

// Kinds lists the patch kinds in order, mostly for logging.
func (u Update) Kinds() []string {
	kinds := make([]string, 0, len(u.Patches))
	for _, p := range u.Patches {
		kinds = append(kinds, p.Kind())
	}
	return kinds
}
