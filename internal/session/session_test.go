package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"karaoke/pkg/logger"
)

func TestOpenFreshVenueWritesFullState(t *testing.T) {
	h := newHarness(t)
	h.session.Flush()

	updates := h.persister.Updates()
	if len(updates) != 1 || !updates[0].Full {
		t.Fatalf("expected one full save, got %d updates", len(updates))
	}
	stored := h.persister.Stored(testVenue)
	if len(stored.Spots) != 20 {
		t.Errorf("expected 20 stored seats, got %d", len(stored.Spots))
	}
}

func TestOpenLoadFailure(t *testing.T) {
	p := newMemoryPersister()
	p.loadErr = errors.New("connection refused")

	_, err := Open(context.Background(), Config{VenueKey: testVenue, Persister: p, Logger: logger.Discard()})
	if !errors.Is(err, ErrPersistenceUnavailable) {
		t.Fatalf("expected ErrPersistenceUnavailable, got %v", err)
	}
}

func TestOpenRequiresVenueKey(t *testing.T) {
	_, err := Open(context.Background(), Config{Persister: newMemoryPersister()})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOpenKeepsZeroUnitPrice(t *testing.T) {
	s, err := Open(context.Background(), Config{
		VenueKey:  testVenue,
		Persister: newMemoryPersister(),
		Scheduler: &manualScheduler{},
		Logger:    logger.Discard(),
		UnitPrice: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, _ = s.Enqueue("table_1", "A", time.Now())
	if _, err := s.Start("table_1", "A"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.UnitPrice().IsZero() {
		t.Errorf("expected unit price 0, got %s", s.UnitPrice())
	}
	if price := s.History()[0].Price; !price.IsZero() {
		t.Errorf("expected free song, got %s", price)
	}
	if !s.TotalRevenue().IsZero() {
		t.Errorf("expected revenue 0, got %s", s.TotalRevenue())
	}
}

func TestOpenRejectsNegativeUnitPrice(t *testing.T) {
	_, err := Open(context.Background(), Config{
		VenueKey:  testVenue,
		Persister: newMemoryPersister(),
		UnitPrice: decimal.NewFromInt(-1),
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEnqueueAndStartScenario(t *testing.T) {
	h := newHarness(t)
	s := h.session

	requested := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	if _, err := s.Enqueue("table_3", "Song A", requested); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	queue := s.Queue()
	if len(queue) != 1 || queue[0].SpotID != "table_3" || queue[0].SongName != "Song A" || queue[0].Time != "8:00 PM" {
		t.Fatalf("unexpected queue: %+v", queue)
	}

	playing, err := s.Start("table_3", "Song A")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if playing.SongName != "Song A" || playing.OrderedTime != "8:00 PM" {
		t.Errorf("unexpected now playing: %+v", playing)
	}

	state := s.State()
	if len(state.SongQueue) != 0 {
		t.Errorf("expected empty queue, got %d", len(state.SongQueue))
	}
	if state.CurrentSinging == nil || state.CurrentSinging.SongName != "Song A" {
		t.Errorf("expected Song A playing, got %+v", state.CurrentSinging)
	}
	if got := state.Spots["table_3"].PerformedCount; got != 1 {
		t.Errorf("expected performedCount 1, got %d", got)
	}
	if state.TimeElapsed != 0 || state.TimeIsUp {
		t.Errorf("expected fresh timer, got %d/%v", state.TimeElapsed, state.TimeIsUp)
	}
	if len(state.History) != 1 || state.History[0].ID != playing.ID || state.History[0].Status != StatusPlaying {
		t.Errorf("expected one playing history entry sharing the id, got %+v", state.History)
	}
	if !state.History[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected price 2, got %s", state.History[0].Price)
	}
	if state.History[0].Occupant != "Unknown" {
		t.Errorf("expected Unknown occupant, got %q", state.History[0].Occupant)
	}
}

func TestEnqueueValidation(t *testing.T) {
	h := newHarness(t)
	if _, err := h.session.Enqueue("table_99", "A", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := h.session.Enqueue("table_1", "  ", time.Now()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if len(h.session.Queue()) != 0 {
		t.Error("failed enqueues must not change the queue")
	}
}

func TestEnqueueMany(t *testing.T) {
	h := newHarness(t)
	added, err := h.session.EnqueueMany("bar_2", "First", "", "Second")
	if err != nil {
		t.Fatalf("EnqueueMany: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(added))
	}
	if _, err := h.session.EnqueueMany("bar_2", "a", "b", "c"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for three songs, got %v", err)
	}
	if _, err := h.session.EnqueueMany("bar_2", " "); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for no songs, got %v", err)
	}
	if got := songNames(h.session.Queue()); !equalStrings(got, []string{"First", "Second"}) {
		t.Errorf("unexpected queue %v", got)
	}
}

func TestStartUnknownRequestChangesNothing(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	if _, err := s.Start("table_1", "A"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := s.State()

	if _, err := s.Start("table_1", "Missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	after := s.State()
	if after.CurrentSinging == nil || after.CurrentSinging.ID != before.CurrentSinging.ID {
		t.Error("current song must keep playing after a failed start")
	}
	if after.History[0].Status != StatusPlaying {
		t.Errorf("history must not be completed, got %s", after.History[0].Status)
	}
}

func TestStartWhilePlayingCompletesFirst(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Enqueue("bar_1", "B", time.Now())

	first, _ := s.Start("table_1", "A")
	second, err := s.Start("bar_1", "B")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].ID != second.ID || history[0].Status != StatusPlaying {
		t.Errorf("expected newest entry playing B, got %+v", history[0])
	}
	if history[1].ID != first.ID || history[1].Status != StatusCompleted {
		t.Errorf("expected previous entry completed, got %+v", history[1])
	}

	s.Flush()
	kinds := h.observer.Kinds()
	completed, started := -1, -1
	for i, k := range kinds {
		if k == EventSongCompleted {
			completed = i
		}
		if k == EventSongStarted {
			started = i
		}
	}
	if completed < 0 || started < completed {
		t.Errorf("expected completed event before the last started event, got %v", kinds)
	}

	if n := len(h.scheduler.active()); n != 1 {
		t.Errorf("expected exactly one live countdown, got %d", n)
	}
}

func TestStartNext(t *testing.T) {
	h := newHarness(t)
	s := h.session
	if _, err := s.StartNext(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty queue, got %v", err)
	}
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Enqueue("table_2", "B", time.Now())

	if p, _ := s.StartNext(); p.SongName != "A" {
		t.Errorf("expected A, got %q", p.SongName)
	}
	if p, _ := s.StartNext(); p.SongName != "B" {
		t.Errorf("expected B, got %q", p.SongName)
	}
	if s.History()[1].Status != StatusCompleted {
		t.Error("expected A completed")
	}
}

func TestStartEntryByID(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	dup, _ := s.Enqueue("table_1", "A", time.Now())

	if _, err := s.StartEntry(dup.ID); err != nil {
		t.Fatalf("StartEntry: %v", err)
	}
	queue := s.Queue()
	if len(queue) != 1 || queue[0].ID == dup.ID {
		t.Errorf("expected the other duplicate to remain, got %+v", queue)
	}
}

func TestCompleteIdleIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.session.Flush()
	saves := len(h.persister.Updates())
	if h.session.Complete() {
		t.Error("Complete on idle session reported true")
	}
	h.session.Flush()
	if len(h.persister.Updates()) != saves {
		t.Error("idle Complete must not save")
	}
}

func TestCountdownLatchesTimeIsUp(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_3", "A", time.Now())
	_, _ = s.Start("table_3", "A")

	h.scheduler.Tick(179)
	if elapsed, up := s.Elapsed(); elapsed != 179 || up {
		t.Fatalf("after 179 ticks expected 179/false, got %d/%v", elapsed, up)
	}
	h.scheduler.Tick(1)
	if elapsed, up := s.Elapsed(); elapsed != 180 || !up {
		t.Fatalf("after 180 ticks expected 180/true, got %d/%v", elapsed, up)
	}
	h.scheduler.Tick(1)
	if elapsed, up := s.Elapsed(); elapsed != 181 || !up {
		t.Fatalf("after 181 ticks expected 181/true, got %d/%v", elapsed, up)
	}

	s.Flush()
	timeUps := 0
	for _, k := range h.observer.Kinds() {
		if k == EventTimeUp {
			timeUps++
		}
	}
	if timeUps != 1 {
		t.Errorf("expected one time_up event, got %d", timeUps)
	}

	s.Complete()
	if elapsed, up := s.Elapsed(); elapsed != 0 || up {
		t.Errorf("Complete should reset timer, got %d/%v", elapsed, up)
	}
}

func TestCountdownSavesElapsedPeriodically(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_3", "A", time.Now())
	_, _ = s.Start("table_3", "A")
	s.Flush()
	before := len(h.persister.Updates())

	h.scheduler.Tick(45)
	s.Flush()

	updates := h.persister.Updates()[before:]
	if len(updates) != 3 {
		t.Fatalf("expected 3 elapsed saves in 45 ticks, got %d", len(updates))
	}
	last, ok := updates[2].Patches[0].(ElapsedPatch)
	if !ok || last.TimeElapsed != 45 {
		t.Errorf("expected elapsed patch at 45, got %+v", updates[2].Patches)
	}
	if got := h.persister.Stored(testVenue).TimeElapsed; got != 45 {
		t.Errorf("expected stored elapsed 45, got %d", got)
	}
}

func TestStoppedCountdownIgnoresLateTicks(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_3", "A", time.Now())
	_, _ = s.Start("table_3", "A")
	stale := h.scheduler.active()[0]

	s.Complete()
	stale.fn()

	if elapsed, _ := s.Elapsed(); elapsed != 0 {
		t.Errorf("late tick changed elapsed to %d", elapsed)
	}
}

func TestMarkPaidKeepsHistory(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_ = s.SetOccupant("table_3", "Ann")
	_, _ = s.Enqueue("table_3", "A", time.Now())
	_, _ = s.Start("table_3", "A")

	if err := s.MarkPaid("table_3"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	state := s.State()
	if seat := state.Spots["table_3"]; seat.Occupant != "" || seat.PerformedCount != 0 {
		t.Errorf("expected seat reset, got %+v", seat)
	}
	if len(state.History) != 1 || state.History[0].Occupant != "Ann" {
		t.Errorf("history should keep the snapshot occupant, got %+v", state.History)
	}
}

func TestBoostScenario(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Enqueue("table_2", "B", time.Now())
	_, _ = s.Enqueue("bar_1", "C", time.Now())

	record, err := s.BoostToTop("bar_1", "C")
	if err != nil {
		t.Fatalf("BoostToTop: %v", err)
	}
	if got := songNames(s.Queue()); !equalStrings(got, []string{"C", "A", "B"}) {
		t.Errorf("expected [C A B], got %v", got)
	}
	history := s.History()
	if len(history) != 1 || history[0].ID != record.ID || history[0].Status != StatusBoosted || history[0].Action != BoostAction {
		t.Errorf("expected one boosted history entry, got %+v", history)
	}

	if _, err := s.BoostToTop("bar_1", "C"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound boosting the head, got %v", err)
	}
	if len(s.History()) != 1 {
		t.Error("boosting the head must not add history")
	}
	if got := s.Seats(); got[0].PerformedCount != 0 {
		t.Error("boost must not bill a song")
	}
}

func TestMovesAndRenameOnlySaveOnChange(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Enqueue("table_1", "B", time.Now())
	s.Flush()
	before := len(h.persister.Updates())

	s.MoveUp(0)
	s.MoveDown(1)
	if _, err := s.Rename(0, "A"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	s.Flush()
	if got := len(h.persister.Updates()); got != before {
		t.Errorf("no-op edits saved %d times", got-before)
	}

	if !s.MoveUp(1) {
		t.Fatal("MoveUp(1) should move")
	}
	if changed, _ := s.Rename(0, "Bee"); !changed {
		t.Fatal("Rename should change")
	}
	s.Flush()
	if got := len(h.persister.Updates()); got != before+2 {
		t.Errorf("expected 2 saves, got %d", got-before)
	}
	if got := songNames(h.persister.Stored(testVenue).SongQueue); !equalStrings(got, []string{"Bee", "A"}) {
		t.Errorf("unexpected stored queue %v", got)
	}
}

func TestFailedSaveTriggersFullSnapshot(t *testing.T) {
	h := newHarness(t)
	s := h.session
	s.Flush()

	h.persister.mu.Lock()
	h.persister.failNext = 1
	h.persister.mu.Unlock()

	if err := s.SetOccupant("table_1", "Ann"); err != nil {
		t.Fatalf("SetOccupant: %v", err)
	}
	s.Flush()
	if got := s.State().Spots["table_1"].Occupant; got != "Ann" {
		t.Errorf("failed save must not roll back memory, got %q", got)
	}

	_, _ = s.Enqueue("bar_1", "A", time.Now())
	s.Flush()

	updates := h.persister.Updates()
	last := updates[len(updates)-1]
	if !last.Full {
		t.Fatalf("expected full update after failure, got %v", last.Kinds())
	}
	stored := h.persister.Stored(testVenue)
	if stored.Spots["table_1"].Occupant != "Ann" || len(stored.SongQueue) != 1 {
		t.Errorf("store did not catch up: %+v", stored.Spots["table_1"])
	}
}

func TestOpenResumesActivePerformance(t *testing.T) {
	p := newMemoryPersister()
	p.states[testVenue] = VenueState{
		Spots:          InitializeSeats(),
		CurrentSinging: &NowPlaying{ID: 5, SpotID: "table_1", SongName: "A"},
		TimeElapsed:    170,
	}
	h := newHarnessWith(t, p)

	h.scheduler.Tick(10)
	if elapsed, up := h.session.Elapsed(); elapsed != 180 || !up {
		t.Errorf("expected resumed countdown to reach 180/true, got %d/%v", elapsed, up)
	}
}

func TestBoostEntryTargetsDuplicate(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Enqueue("table_2", "B", time.Now())
	second, _ := s.Enqueue("table_1", "A", time.Now())

	if _, err := s.BoostEntry(second.ID); err != nil {
		t.Fatalf("BoostEntry: %v", err)
	}
	queue := s.Queue()
	if queue[0].ID != second.ID {
		t.Errorf("expected the later duplicate at the head, got %s", queue[0].ID)
	}
	if _, err := s.BoostEntry("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(s.History()) != 1 {
		t.Errorf("expected one boosted entry, got %d", len(s.History()))
	}
}

func TestClearHistoryKeepsSeats(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Start("table_1", "A")
	s.Complete()

	s.ClearHistory()
	if len(s.History()) != 0 {
		t.Errorf("expected empty history, got %d", len(s.History()))
	}
	if s.TotalSongs() != 1 {
		t.Errorf("expected seat counts untouched, got %d", s.TotalSongs())
	}
}

func TestStartNewShift(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_ = s.SetOccupant("table_1", "Ann")
	_, _ = s.Enqueue("table_1", "A", time.Now())
	_, _ = s.Enqueue("table_1", "B", time.Now())
	_, _ = s.Start("table_1", "A")

	s.StartNewShift()
	state := s.State()
	if state.CurrentSinging != nil || len(state.SongQueue) != 0 || len(state.History) != 0 {
		t.Errorf("expected empty session, got %+v", state)
	}
	if state.Spots["table_1"].Occupant != "" || s.TotalSongs() != 0 {
		t.Error("expected seats reset")
	}
	if n := len(h.scheduler.active()); n != 0 {
		t.Errorf("expected no live countdown, got %d", n)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newHarness(t)
	b := newHarness(t)
	_, _ = a.session.Enqueue("table_1", "A", time.Now())
	if len(b.session.Queue()) != 0 {
		t.Error("sessions share state")
	}
}
