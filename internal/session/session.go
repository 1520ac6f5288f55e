package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"karaoke/pkg/logger"
)

// TimeLayout formats request and start times for display.
const TimeLayout = "3:04 PM"

// MaxSongsPerRequest caps EnqueueMany.
const MaxSongsPerRequest = 2

const unknownLabel = "Unknown"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// IDGenerator issues performance IDs. *snowflake.Node satisfies it.
type IDGenerator interface {
	Generate() snowflake.ID
}

// Config wires a VenueSession to its collaborators. Zero fields get defaults
// in Open, except UnitPrice: a zero price means songs are free.
type Config struct {
	VenueKey  string
	Persister Persister
	Observer  Observer
	Scheduler Scheduler
	Clock     Clock
	IDs       IDGenerator
	Logger    *logger.Logger

	UnitPrice    decimal.Decimal
	SaveEvery    int
	TickInterval time.Duration
	SaveTimeout  time.Duration
	BufferSize   int
}

func (c *Config) setDefaults() error {
	if c.VenueKey == "" {
		return fmt.Errorf("venue key: %w", ErrInvalidArgument)
	}
	if c.Persister == nil {
		return fmt.Errorf("persister is required: %w", ErrInvalidArgument)
	}
	if c.Scheduler == nil {
		c.Scheduler = TickerScheduler{}
	}
	if c.Clock == nil {
		c.Clock = systemClock{}
	}
	if c.IDs == nil {
		node, err := snowflake.NewNode(0)
		if err != nil {
			return fmt.Errorf("snowflake node: %w", err)
		}
		c.IDs = node
	}
	if c.Logger == nil {
		c.Logger = logger.GetDefault()
	}
	if c.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price %s: %w", c.UnitPrice, ErrInvalidArgument)
	}
	if c.SaveEvery <= 0 {
		c.SaveEvery = 15
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 5 * time.Second
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 256
	}
	return nil
}

// VenueSession is the live state of one venue. All methods are safe for
// concurrent use and are serialized by one mutex; each either applies fully
// or returns an error without touching state.
type VenueSession struct {
	mu  sync.Mutex
	cfg Config

	venueName   string
	seats       *SeatRegistry
	queue       *PerformanceQueue
	history     *History
	current     *NowPlaying
	elapsed     int
	timeIsUp    bool
	lastUpdated time.Time

	countdown  Timer
	generation uint64
	closed     bool

	needFull atomic.Bool
	saves    *dispatcher
	events   *dispatcher
}

// Open loads the venue through the persister. A venue that was never saved
// starts fresh and is written in full. A venue saved mid-performance resumes
// its countdown.
func Open(ctx context.Context, cfg Config) (*VenueSession, error) {
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	state, err := cfg.Persister.Load(ctx, cfg.VenueKey)
	fresh := false
	switch {
	case errors.Is(err, ErrNotFound):
		state = &VenueState{}
		fresh = true
	case err != nil:
		cfg.Logger.LogPersistenceFailure(ctx, cfg.VenueKey, "load", err)
		return nil, fmt.Errorf("load venue %q: %w: %w", cfg.VenueKey, ErrPersistenceUnavailable, err)
	case state == nil:
		state = &VenueState{}
		fresh = true
	}

	s := newSession(cfg, *state)
	if fresh {
		s.mu.Lock()
		s.needFull.Store(true)
		s.persist()
		s.mu.Unlock()
	}
	s.Resume()
	return s, nil
}

func newSession(cfg Config, state VenueState) *VenueSession {
	s := &VenueSession{
		cfg:         cfg,
		venueName:   state.VenueName,
		seats:       NewSeatRegistry(state.Spots, cfg.UnitPrice),
		queue:       NewPerformanceQueue(state.SongQueue),
		history:     NewHistory(state.History),
		elapsed:     state.TimeElapsed,
		timeIsUp:    state.TimeIsUp,
		lastUpdated: state.LastUpdated,
		saves:       newDispatcher(cfg.BufferSize),
		events:      newDispatcher(cfg.BufferSize),
	}
	if state.CurrentSinging != nil {
		current := *state.CurrentSinging
		s.current = &current
	} else {
		s.elapsed = 0
		s.timeIsUp = false
	}
	return s
}

func (s *VenueSession) VenueKey() string {
	return s.cfg.VenueKey
}

func (s *VenueSession) UnitPrice() decimal.Decimal {
	return s.cfg.UnitPrice
}

// Snapshot returns a deep copy of the current state plus derived display fields.
func (s *VenueSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *VenueSession) State() VenueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *VenueSession) stateLocked() VenueState {
	state := VenueState{
		VenueName:   s.venueName,
		Spots:       s.seats.Map(),
		SongQueue:   s.queue.Entries(),
		History:     s.history.Entries(),
		TimeElapsed: s.elapsed,
		TimeIsUp:    s.timeIsUp,
		LastUpdated: s.lastUpdated,
	}
	if s.current != nil {
		current := *s.current
		state.CurrentSinging = &current
	}
	return state
}

func (s *VenueSession) snapshotLocked() Snapshot {
	snap := Snapshot{
		VenueKey:     s.cfg.VenueKey,
		State:        s.stateLocked(),
		ElapsedLabel: ElapsedLabel(s.elapsed),
		TotalSongs:   s.seats.TotalSongs(),
	}
	if next, ok := s.queue.Peek(); ok {
		snap.OnDeck = &next
	}
	return snap
}

// Seats

func (s *VenueSession) Seats() []Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats.List()
}

func (s *VenueSession) SpotDisplay(seatID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats.SpotDisplay(seatID)
}

func (s *VenueSession) SetOccupant(seatID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seats.SetOccupant(seatID, name); err != nil {
		return err
	}
	s.commit(EventSeatUpdated, seatID, "", s.seatsPatch())
	return nil
}

func (s *VenueSession) SetPerformedCount(seatID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seats.SetPerformedCount(seatID, n); err != nil {
		return err
	}
	s.commit(EventSeatUpdated, seatID, "", s.seatsPatch())
	return nil
}

func (s *VenueSession) SetPerformedCountString(seatID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seats.SetPerformedCountString(seatID, raw); err != nil {
		return err
	}
	s.commit(EventSeatUpdated, seatID, "", s.seatsPatch())
	return nil
}

// MarkPaid settles a seat. History is left as it was.
func (s *VenueSession) MarkPaid(seatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, err := s.seats.Get(seatID)
	if err != nil {
		return err
	}
	if err := s.seats.MarkPaid(seatID); err != nil {
		return err
	}
	s.cfg.Logger.LogSeatPaid(context.Background(), s.cfg.VenueKey, seatID, seat.PerformedCount)
	s.commit(EventSeatPaid, seatID, "", s.seatsPatch())
	return nil
}

func (s *VenueSession) ClearCategory(prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.seats.ClearCategory(prefix)
	if err != nil {
		return 0, err
	}
	s.commit(EventSeatsCleared, "", "", s.seatsPatch())
	return n, nil
}

func (s *VenueSession) TotalSongs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats.TotalSongs()
}

func (s *VenueSession) TotalRevenue() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seats.TotalRevenue()
}

// Queue

// Enqueue appends a request for a known seat.
func (s *VenueSession) Enqueue(spotID, songName string, requestedAt time.Time) (QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRequest(spotID, songName); err != nil {
		return QueueEntry{}, err
	}
	entry := s.queue.Enqueue(QueueEntry{
		SpotID:   spotID,
		SongName: strings.TrimSpace(songName),
		Time:     requestedAt.Format(TimeLayout),
	})
	s.commit(EventSongQueued, spotID, entry.SongName, s.queuePatch())
	return entry, nil
}

// EnqueueMany queues up to MaxSongsPerRequest songs for one seat at the
// current time. Blank names are skipped.
func (s *VenueSession) EnqueueMany(spotID string, songs ...string) ([]QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(songs))
	for _, song := range songs {
		if trimmed := strings.TrimSpace(song); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no song names: %w", ErrInvalidArgument)
	}
	if len(names) > MaxSongsPerRequest {
		return nil, fmt.Errorf("%d songs in one request, max %d: %w", len(names), MaxSongsPerRequest, ErrInvalidArgument)
	}
	if !s.seats.Has(spotID) {
		return nil, fmt.Errorf("seat %q: %w", spotID, ErrNotFound)
	}

	requested := s.cfg.Clock.Now().Format(TimeLayout)
	added := make([]QueueEntry, 0, len(names))
	for _, name := range names {
		added = append(added, s.queue.Enqueue(QueueEntry{SpotID: spotID, SongName: name, Time: requested}))
	}
	s.commit(EventSongQueued, spotID, strings.Join(names, ", "), s.queuePatch())
	return added, nil
}

func (s *VenueSession) checkRequest(spotID, songName string) error {
	if !s.seats.Has(spotID) {
		return fmt.Errorf("seat %q: %w", spotID, ErrNotFound)
	}
	if strings.TrimSpace(songName) == "" {
		return fmt.Errorf("empty song name: %w", ErrInvalidArgument)
	}
	return nil
}

func (s *VenueSession) Queue() []QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Entries()
}

// MoveUp reports whether anything moved. Boundary moves change nothing and
// save nothing.
func (s *VenueSession) MoveUp(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.queue.MoveUp(index) {
		return false
	}
	s.commit(EventQueueReordered, "", "", s.queuePatch())
	return true
}

func (s *VenueSession) MoveDown(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.queue.MoveDown(index) {
		return false
	}
	s.commit(EventQueueReordered, "", "", s.queuePatch())
	return true
}

// Rename reports whether the name changed.
func (s *VenueSession) Rename(index int, newName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.queue.Rename(index, newName)
	if err != nil || !changed {
		return false, err
	}
	entry, _ := s.queue.At(index)
	s.commit(EventSongRenamed, entry.SpotID, entry.SongName, s.queuePatch())
	return true, nil
}

// BoostToTop moves the first matching request to the front and records the
// boost in history.
func (s *VenueSession) BoostToTop(spotID, songName string) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.queue.BoostToTop(spotID, songName)
	if err != nil {
		return HistoryEntry{}, err
	}
	return s.recordBoost(entry), nil
}

// BoostEntry is BoostToTop addressed by request ID.
func (s *VenueSession) BoostEntry(entryID string) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, err := s.queue.BoostByID(entryID)
	if err != nil {
		return HistoryEntry{}, err
	}
	return s.recordBoost(entry), nil
}

func (s *VenueSession) recordBoost(entry QueueEntry) HistoryEntry {
	seat, _ := s.seats.Get(entry.SpotID)
	record := HistoryEntry{
		ID:          s.cfg.IDs.Generate(),
		SpotID:      entry.SpotID,
		SpotName:    orUnknown(seat.Name),
		Occupant:    orUnknown(seat.Occupant),
		SongName:    entry.SongName,
		OrderedTime: entry.Time,
		StartTime:   s.cfg.Clock.Now().Format(TimeLayout),
		Status:      StatusBoosted,
		Price:       s.cfg.UnitPrice,
		Action:      BoostAction,
	}
	s.history.Prepend(record)
	s.cfg.Logger.LogSongBoosted(context.Background(), s.cfg.VenueKey, entry.SpotID, entry.SongName)
	s.commit(EventSongBoosted, entry.SpotID, entry.SongName, s.queuePatch(), s.historyPatch())
	return record
}

// History

func (s *VenueSession) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

func (s *VenueSession) UpdatePrice(index int, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.UpdatePrice(index, price); err != nil {
		return err
	}
	s.commit(EventHistoryUpdated, "", "", s.historyPatch())
	return nil
}

func (s *VenueSession) SetAllPrices(price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.SetAllPrices(price); err != nil {
		return err
	}
	s.commit(EventHistoryUpdated, "", "", s.historyPatch())
	return nil
}

func (s *VenueSession) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
	s.commit(EventHistoryUpdated, "", "", s.historyPatch())
}

// StartNewShift stops playback and empties history, queue and seats.
func (s *VenueSession) StartNewShift() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
	s.current = nil
	s.elapsed = 0
	s.timeIsUp = false
	s.history.Clear()
	s.queue.Clear()
	s.seats.ResetAll()
	s.commit(EventShiftStarted, "", "",
		s.seatsPatch(), s.queuePatch(), s.historyPatch(), s.playbackPatch())
}

func (s *VenueSession) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Summarize(s.seats)
}

// Lifecycle

// Flush waits until every save and event issued so far has been handled.
func (s *VenueSession) Flush() {
	s.saves.flush()
	s.events.flush()
}

// Close stops the countdown and drains pending saves and events. Mutations
// after Close are applied in memory only.
func (s *VenueSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopCountdownLocked()
	s.mu.Unlock()

	s.saves.close()
	s.events.close()
}

// Persistence glue

func (s *VenueSession) seatsPatch() Patch   { return SeatsPatch{Spots: s.seats.Map()} }
func (s *VenueSession) queuePatch() Patch   { return QueuePatch{SongQueue: s.queue.Entries()} }
func (s *VenueSession) historyPatch() Patch { return HistoryPatch{History: s.history.Entries()} }

func (s *VenueSession) playbackPatch() Patch {
	p := PlaybackPatch{TimeElapsed: s.elapsed, TimeIsUp: s.timeIsUp}
	if s.current != nil {
		current := *s.current
		p.CurrentSinging = &current
	}
	return p
}

func (s *VenueSession) elapsedPatch() Patch {
	return ElapsedPatch{TimeElapsed: s.elapsed, TimeIsUp: s.timeIsUp}
}

// commit saves the patches and notifies observers. Callers hold s.mu.
func (s *VenueSession) commit(kind EventKind, spotID, songName string, patches ...Patch) {
	s.persist(patches...)
	s.notify(kind, spotID, songName)
}

// persist hands an update to the save goroutine. When an earlier save failed
// or was dropped the whole state is written instead of the patches.
func (s *VenueSession) persist(patches ...Patch) {
	now := s.cfg.Clock.Now()
	s.lastUpdated = now
	update := Update{Patches: patches, At: now}
	if s.needFull.Swap(false) {
		update = FullUpdate(s.stateLocked(), now)
	}

	key := s.cfg.VenueKey
	persister := s.cfg.Persister
	timeout := s.cfg.SaveTimeout
	log := s.cfg.Logger
	submitted := s.saves.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := persister.Save(ctx, key, update); err != nil {
			s.needFull.Store(true)
			log.LogPersistenceFailure(ctx, key, "save", fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err))
		}
	})
	if !submitted {
		s.needFull.Store(true)
	}
}

func (s *VenueSession) notify(kind EventKind, spotID, songName string) {
	if s.cfg.Observer == nil {
		return
	}
	event := Event{
		Kind:     kind,
		VenueKey: s.cfg.VenueKey,
		SpotID:   spotID,
		SongName: songName,
		At:       s.cfg.Clock.Now(),
		Snapshot: s.snapshotLocked(),
	}
	observer := s.cfg.Observer
	s.events.submit(func() { observer.SessionChanged(event) })
}

func orUnknown(s string) string {
	if s == "" {
		return unknownLabel
	}
	return s
}
