package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"karaoke/internal/session"
	"karaoke/pkg/logger"
)

// ForwarderConfig tunes how observer events reach the broker
type ForwarderConfig struct {
	BufferSize     int
	TickEvery      time.Duration
	PublishTimeout time.Duration
}

// DefaultForwarderConfig returns the production defaults
func DefaultForwarderConfig() ForwarderConfig {
	return ForwarderConfig{
		BufferSize:     1024,
		TickEvery:      5 * time.Second,
		PublishTimeout: 5 * time.Second,
	}
}

// Forwarder is a session.Observer that publishes events on its own goroutine.
// SessionChanged never blocks: when the buffer is full the event is dropped
// and counted. Countdown ticks are thinned to one per TickEvery per venue.
type Forwarder struct {
	publisher Publisher
	cfg       ForwarderConfig
	log       *logger.Logger

	mu       sync.Mutex
	closed   bool
	lastTick map[string]time.Time
	events   chan *SessionEvent

	dropped atomic.Int64
	done    chan struct{}
}

func NewForwarder(publisher Publisher, cfg ForwarderConfig, log *logger.Logger) *Forwarder {
	defaults := DefaultForwarderConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.TickEvery < 0 {
		cfg.TickEvery = 0
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaults.PublishTimeout
	}

	f := &Forwarder{
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		lastTick:  make(map[string]time.Time),
		events:    make(chan *SessionEvent, cfg.BufferSize),
		done:      make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *Forwarder) SessionChanged(event session.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if event.Kind == session.EventTick {
		last, seen := f.lastTick[event.VenueKey]
		if seen && event.At.Sub(last) < f.cfg.TickEvery {
			return
		}
		f.lastTick[event.VenueKey] = event.At
	}

	select {
	case f.events <- NewSessionEvent(event):
	default:
		f.dropped.Add(1)
		f.log.Warn("Session event dropped, publish buffer full",
			"venue_key", event.VenueKey,
			"kind", event.Kind,
		)
	}
}

// Dropped reports how many events were discarded on a full buffer
func (f *Forwarder) Dropped() int64 {
	return f.dropped.Load()
}

func (f *Forwarder) run() {
	defer close(f.done)
	for event := range f.events {
		ctx, cancel := context.WithTimeout(context.Background(), f.cfg.PublishTimeout)
		if err := f.publisher.Publish(ctx, event); err != nil {
			f.log.ErrorWithContext(ctx, "Failed to publish session event", err, map[string]interface{}{
				"venue_key": event.VenueKey,
				"kind":      string(event.Kind),
			})
		}
		cancel()
	}
}

// Close publishes what is buffered, then closes the publisher. Events
// arriving afterwards are ignored.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.events)
	f.mu.Unlock()

	<-f.done
	return f.publisher.Close()
}
