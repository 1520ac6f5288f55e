package venues

import (
	"context"
	"errors"
	"sync"

	"karaoke/internal/session"
	"karaoke/pkg/logger"
)

// snapshotReplacer is implemented by stores that can take a whole document,
// venue name included. LocalStore does.
type snapshotReplacer interface {
	Replace(ctx context.Context, venueKey string, state session.VenueState) error
}

// MirroredStore writes every save to the local backup before the remote
// store, and falls back to the backup when the remote store cannot be read.
type MirroredStore struct {
	remote Store
	local  Store
	logger *logger.Logger

	// venues whose backup holds a complete document; only those take
	// partial saves
	mu     sync.Mutex
	seeded map[string]bool
}

func NewMirroredStore(remote, local Store, log *logger.Logger) *MirroredStore {
	if log == nil {
		log = logger.GetDefault()
	}
	return &MirroredStore{remote: remote, local: local, logger: log, seeded: make(map[string]bool)}
}

func (m *MirroredStore) Load(ctx context.Context, venueKey string) (*session.VenueState, error) {
	state, _, err := m.LoadWithSource(ctx, venueKey)
	return state, err
}

// LoadWithSource is Load that also reports whether the state came from the
// local backup.
func (m *MirroredStore) LoadWithSource(ctx context.Context, venueKey string) (*session.VenueState, bool, error) {
	state, err := m.remote.Load(ctx, venueKey)
	if err == nil {
		m.refreshBackup(ctx, venueKey, *state)
		return state, false, nil
	}
	if errors.Is(err, session.ErrNotFound) {
		return nil, false, err
	}

	m.logger.LogPersistenceFailure(ctx, venueKey, "load remote", err)
	backup, localErr := m.local.Load(ctx, venueKey)
	if localErr != nil {
		return nil, false, err
	}
	m.logger.InfoWithContext(ctx, "venue loaded from local backup", map[string]interface{}{"venue_key": venueKey})
	m.markSeeded(venueKey)
	return backup, true, nil
}

// refreshBackup overwrites the backup with the document just read remotely
func (m *MirroredStore) refreshBackup(ctx context.Context, venueKey string, state session.VenueState) {
	clone := state.Clone()

	var err error
	if r, ok := m.local.(snapshotReplacer); ok {
		err = r.Replace(ctx, venueKey, clone)
	} else {
		err = m.local.Save(ctx, venueKey, session.FullUpdate(clone, clone.LastUpdated))
	}
	if err != nil {
		m.logger.LogPersistenceFailure(ctx, venueKey, "refresh local backup", err)
		return
	}
	m.markSeeded(venueKey)
}

// Save reports only the remote outcome. A failed remote save makes the
// session retry with a full snapshot, which also heals the backup.
func (m *MirroredStore) Save(ctx context.Context, venueKey string, update session.Update) error {
	if update.Full || m.isSeeded(venueKey) {
		if err := m.local.Save(ctx, venueKey, update); err != nil {
			m.logger.LogPersistenceFailure(ctx, venueKey, "save local backup", err)
		} else {
			m.markSeeded(venueKey)
		}
	}
	return m.remote.Save(ctx, venueKey, update)
}

func (m *MirroredStore) CreateVenue(ctx context.Context, venueKey, venueName string) error {
	if err := m.local.CreateVenue(ctx, venueKey, venueName); err != nil {
		m.logger.LogPersistenceFailure(ctx, venueKey, "create local backup", err)
	} else {
		m.markSeeded(venueKey)
	}
	return m.remote.CreateVenue(ctx, venueKey, venueName)
}

func (m *MirroredStore) markSeeded(venueKey string) {
	m.mu.Lock()
	m.seeded[venueKey] = true
	m.mu.Unlock()
}

func (m *MirroredStore) isSeeded(venueKey string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seeded[venueKey]
}
