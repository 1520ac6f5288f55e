package session

import (
	"fmt"
	"sync"
	"time"
)

// SongDurationSeconds is the fixed allowance for one performance.
const SongDurationSeconds = 180

// Timer is a cancellable repeating callback.
type Timer interface {
	Stop()
}

// Scheduler creates repeating timers. Tests substitute a manual scheduler.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// TickerScheduler runs each timer on its own goroutine backed by time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) run(fn func()) {
	for {
		select {
		case <-t.ticker.C:
			fn()
		case <-t.done:
			return
		}
	}
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// FormatElapsed renders whole seconds as m:ss.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ElapsedLabel is the board display, e.g. "1:05 / 3:00".
func ElapsedLabel(seconds int) string {
	return FormatElapsed(seconds) + " / " + FormatElapsed(SongDurationSeconds)
}
