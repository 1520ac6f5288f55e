package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"karaoke/pkg/logger"
)

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

// manualScheduler fires timers only when the test says so.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualScheduler) Every(_ time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualScheduler) Tick(n int) {
	for i := 0; i < n; i++ {
		for _, t := range m.active() {
			t.fn()
		}
	}
}

func (m *manualScheduler) active() []*manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*manualTimer
	for _, t := range m.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type sequentialIDs struct {
	mu   sync.Mutex
	next int64
}

func (g *sequentialIDs) Generate() snowflake.ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return snowflake.ID(g.next)
}

type memoryPersister struct {
	mu       sync.Mutex
	states   map[string]VenueState
	updates  []Update
	loadErr  error
	failNext int
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{states: make(map[string]VenueState)}
}

func (m *memoryPersister) Load(_ context.Context, venueKey string) (*VenueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	state, ok := m.states[venueKey]
	if !ok {
		return nil, fmt.Errorf("venue %s: %w", venueKey, ErrNotFound)
	}
	clone := state.Clone()
	return &clone, nil
}

func (m *memoryPersister) Save(_ context.Context, venueKey string, update Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	if m.failNext > 0 {
		m.failNext--
		return errors.New("store offline")
	}
	state := m.states[venueKey]
	update.ApplyTo(&state)
	m.states[venueKey] = state
	return nil
}

func (m *memoryPersister) Updates() []Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Update(nil), m.updates...)
}

func (m *memoryPersister) Stored(venueKey string) VenueState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[venueKey].Clone()
}

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingObserver) SessionChanged(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) Kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type harness struct {
	session   *VenueSession
	persister *memoryPersister
	observer  *recordingObserver
	scheduler *manualScheduler
	clock     *fixedClock
}

const testVenue = "venue-1"

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, newMemoryPersister())
}

func newHarnessWith(t *testing.T, persister *memoryPersister) *harness {
	t.Helper()
	h := &harness{
		persister: persister,
		observer:  &recordingObserver{},
		scheduler: &manualScheduler{},
		clock:     &fixedClock{now: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)},
	}
	s, err := Open(context.Background(), Config{
		VenueKey:  testVenue,
		Persister: h.persister,
		Observer:  h.observer,
		Scheduler: h.scheduler,
		Clock:     h.clock,
		IDs:       &sequentialIDs{},
		Logger:    logger.Discard(),
		UnitPrice: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)
	h.session = s
	return h
}

func songNames(entries []QueueEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.SongName)
	}
	return names
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
