package venues

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"karaoke/internal/session"
	"karaoke/pkg/logger"
)

// Service hands out the live session of a venue, opening it on first use
type Service interface {
	Session(ctx context.Context, venueKey string) (*session.VenueSession, error)
	ProvisionVenue(ctx context.Context, venueKey, venueName string) error
	OpenSessions() int
	Close()
}

// ManagerConfig holds what every opened session shares
type ManagerConfig struct {
	Store     Store
	Observer  session.Observer
	IDs       session.IDGenerator
	Scheduler session.Scheduler
	Clock     session.Clock
	Logger    *logger.Logger
	UnitPrice decimal.Decimal
	SaveEvery int

	// bounds a session load, independent of the request that triggered it
	OpenTimeout time.Duration

	// sessions untouched for IdleTimeout are closed by the sweeper
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type managedSession struct {
	ready      chan struct{}
	session    *session.VenueSession
	err        error
	lastAccess time.Time
}

// Manager keeps one VenueSession per venue key
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*managedSession
	closed   bool
	now      func() time.Time
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 12 * time.Hour
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*managedSession),
		now:      time.Now,
	}
}

// Session returns the venue's live session. Concurrent first calls for the
// same venue share a single load, which outlives any one caller's ctx.
func (m *Manager) Session(ctx context.Context, venueKey string) (*session.VenueSession, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, session.ErrPersistenceUnavailable
	}
	entry, ok := m.sessions[venueKey]
	if ok {
		entry.lastAccess = m.now()
	} else {
		entry = &managedSession{ready: make(chan struct{}), lastAccess: m.now()}
		m.sessions[venueKey] = entry
		go m.open(context.WithoutCancel(ctx), venueKey, entry)
	}
	m.mu.Unlock()

	select {
	case <-entry.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return entry.session, entry.err
}

func (m *Manager) open(ctx context.Context, venueKey string, entry *managedSession) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.OpenTimeout)
	defer cancel()

	entry.session, entry.err = session.Open(ctx, session.Config{
		VenueKey:  venueKey,
		Persister: m.cfg.Store,
		Observer:  m.cfg.Observer,
		Scheduler: m.cfg.Scheduler,
		Clock:     m.cfg.Clock,
		IDs:       m.cfg.IDs,
		Logger:    m.cfg.Logger.WithVenue(venueKey),
		UnitPrice: m.cfg.UnitPrice,
		SaveEvery: m.cfg.SaveEvery,
	})

	if entry.err != nil {
		// a failed open is retried on the next request
		m.mu.Lock()
		if m.sessions[venueKey] == entry {
			delete(m.sessions, venueKey)
		}
		m.mu.Unlock()
	}
	close(entry.ready)
}

func (m *Manager) ProvisionVenue(ctx context.Context, venueKey, venueName string) error {
	return m.cfg.Store.CreateVenue(ctx, venueKey, venueName)
}

func (m *Manager) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartSweeper closes idle sessions until ctx is cancelled
func (m *Manager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.sweepIdle(); n > 0 {
					m.cfg.Logger.InfoWithContext(ctx, "closed idle venue sessions", map[string]interface{}{"count": n})
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) sweepIdle() int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []*session.VenueSession
	for key, entry := range m.sessions {
		select {
		case <-entry.ready:
		default:
			continue
		}
		if entry.session != nil && entry.lastAccess.Before(cutoff) {
			idle = append(idle, entry.session)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// Close drains and closes every open session
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	entries := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()

	for _, entry := range entries {
		<-entry.ready
		if entry.session != nil {
			entry.session.Close()
		}
	}
}
