package session

import (
	"context"
	"fmt"
)

// Current returns the active performance, if any.
func (s *VenueSession) Current() (NowPlaying, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return NowPlaying{}, false
	}
	return *s.current, true
}

func (s *VenueSession) Elapsed() (seconds int, timeIsUp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed, s.timeIsUp
}

// Start promotes the first request matching spotID and songName. A song
// already playing is completed first. When no request matches nothing
// changes, including the song already playing.
func (s *VenueSession) Start(spotID, songName string) (NowPlaying, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.queue.findMatching(spotID, songName)
	if !ok {
		return NowPlaying{}, fmt.Errorf("queued song %s/%s: %w", spotID, songName, ErrNotFound)
	}
	return s.startLocked(entry), nil
}

// StartEntry promotes the request with the given ID.
func (s *VenueSession) StartEntry(entryID string) (NowPlaying, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.queue.find(entryID)
	if !ok {
		return NowPlaying{}, fmt.Errorf("queued song %s: %w", entryID, ErrNotFound)
	}
	return s.startLocked(entry), nil
}

// StartNext finishes the current song and promotes the head of the queue.
func (s *VenueSession) StartNext() (NowPlaying, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.queue.Peek()
	if !ok {
		return NowPlaying{}, fmt.Errorf("queue is empty: %w", ErrNotFound)
	}
	return s.startLocked(entry), nil
}

func (s *VenueSession) startLocked(entry QueueEntry) NowPlaying {
	s.completeLocked()

	// entry was looked up under the same lock, so it is still queued
	_, _ = s.queue.DequeueByID(entry.ID)
	s.seats.increment(entry.SpotID)
	seat, _ := s.seats.Get(entry.SpotID)

	startTime := s.cfg.Clock.Now().Format(TimeLayout)
	ordered := entry.Time
	if ordered == "" {
		ordered = startTime
	}
	playing := NowPlaying{
		ID:          s.cfg.IDs.Generate(),
		SpotID:      entry.SpotID,
		SongName:    entry.SongName,
		OrderedTime: ordered,
		StartTime:   startTime,
	}
	s.history.Prepend(HistoryEntry{
		ID:          playing.ID,
		SpotID:      entry.SpotID,
		SpotName:    orUnknown(seat.Name),
		Occupant:    orUnknown(seat.Occupant),
		SongName:    entry.SongName,
		OrderedTime: ordered,
		StartTime:   startTime,
		Status:      StatusPlaying,
		Price:       s.cfg.UnitPrice,
	})

	s.current = &playing
	s.elapsed = 0
	s.timeIsUp = false
	s.startCountdownLocked()

	s.cfg.Logger.LogSongStarted(context.Background(), s.cfg.VenueKey, entry.SpotID, entry.SongName)
	s.commit(EventSongStarted, entry.SpotID, entry.SongName,
		s.queuePatch(), s.historyPatch(), s.seatsPatch(), s.playbackPatch())
	return playing
}

// Complete ends the active performance. It reports false when idle.
func (s *VenueSession) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

func (s *VenueSession) completeLocked() bool {
	if s.current == nil {
		return false
	}
	s.stopCountdownLocked()
	finished := *s.current
	elapsed := s.elapsed
	s.history.MarkCompleted(finished.ID)
	s.current = nil
	s.elapsed = 0
	s.timeIsUp = false

	s.cfg.Logger.LogSongCompleted(context.Background(), s.cfg.VenueKey, finished.SpotID, finished.SongName, elapsed)
	s.commit(EventSongCompleted, finished.SpotID, finished.SongName, s.historyPatch(), s.playbackPatch())
	return true
}

// Resume restarts the countdown for a performance loaded from storage,
// continuing from the stored elapsed time.
func (s *VenueSession) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.closed {
		return false
	}
	s.startCountdownLocked()
	return true
}

func (s *VenueSession) startCountdownLocked() {
	s.stopCountdownLocked()
	gen := s.generation
	s.countdown = s.cfg.Scheduler.Every(s.cfg.TickInterval, func() { s.tick(gen) })
}

// stopCountdownLocked cancels the live timer and invalidates any tick it has
// already fired but not yet delivered.
func (s *VenueSession) stopCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
	s.generation++
}

func (s *VenueSession) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation || s.current == nil {
		return
	}
	s.elapsed++

	if s.elapsed >= SongDurationSeconds && !s.timeIsUp {
		s.timeIsUp = true
		s.cfg.Logger.LogTimeUp(context.Background(), s.cfg.VenueKey, s.current.SpotID, s.current.SongName)
		s.commit(EventTimeUp, s.current.SpotID, s.current.SongName, s.elapsedPatch())
		return
	}
	if s.elapsed%s.cfg.SaveEvery == 0 {
		s.persist(s.elapsedPatch())
	}
	s.notify(EventTick, s.current.SpotID, s.current.SongName)
}
