package venues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"karaoke/internal/session"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// LocalStore keeps each venue as a JSON file under one directory. It backs
// anonymous local mode and mirrors remote saves.
type LocalStore struct {
	mu  sync.Mutex
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(venueKey string) string {
	return filepath.Join(s.dir, unsafeKeyChars.ReplaceAllString(venueKey, "_")+".json")
}

func (s *LocalStore) Load(_ context.Context, venueKey string) (*session.VenueState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(venueKey)
}

func (s *LocalStore) read(venueKey string) (*session.VenueState, error) {
	data, err := os.ReadFile(s.path(venueKey))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("venue %s: %w", venueKey, session.ErrNotFound)
		}
		return nil, fmt.Errorf("read venue %s: %w", venueKey, err)
	}

	var state session.VenueState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode venue %s: %w", venueKey, err)
	}
	return &state, nil
}

// Save merges the update into the stored state and rewrites the file
// atomically.
func (s *LocalStore) Save(_ context.Context, venueKey string, update session.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &session.VenueState{}
	if !update.Full {
		loaded, err := s.read(venueKey)
		switch {
		case err == nil:
			state = loaded
		case !errors.Is(err, session.ErrNotFound):
			return err
		}
	} else if loaded, err := s.read(venueKey); err == nil {
		state.VenueName = loaded.VenueName
	}

	update.ApplyTo(state)
	return s.write(venueKey, state)
}

// Replace overwrites the stored document with state.
func (s *LocalStore) Replace(_ context.Context, venueKey string, state session.VenueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(venueKey, &state)
}

func (s *LocalStore) CreateVenue(_ context.Context, venueKey, venueName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(venueKey)); err == nil {
		return nil
	}
	return s.write(venueKey, &session.VenueState{
		VenueName: venueName,
		Spots:     session.InitializeSeats(),
		SongQueue: []session.QueueEntry{},
		History:   []session.HistoryEntry{},
	})
}

func (s *LocalStore) write(venueKey string, state *session.VenueState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode venue %s: %w", venueKey, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".venue-*.tmp")
	if err != nil {
		return fmt.Errorf("write venue %s: %w", venueKey, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write venue %s: %w", venueKey, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write venue %s: %w", venueKey, err)
	}
	if err := os.Rename(tmp.Name(), s.path(venueKey)); err != nil {
		return fmt.Errorf("write venue %s: %w", venueKey, err)
	}
	return nil
}
