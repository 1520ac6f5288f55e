package session

import "sync"

// dispatcher runs submitted jobs one at a time on its own goroutine, in
// submission order. Submitting never blocks; a full buffer rejects the job.
type dispatcher struct {
	jobs   chan func()
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func newDispatcher(size int) *dispatcher {
	d := &dispatcher{jobs: make(chan func(), size)}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for job := range d.jobs {
		job()
	}
}

func (d *dispatcher) submit(job func()) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		return false
	}
}

// flush blocks until every job submitted before the call has run.
func (d *dispatcher) flush() {
	done := make(chan struct{})
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return
	}
	d.jobs <- func() { close(done) }
	d.mu.RUnlock()
	<-done
}

// close drains pending jobs and stops the goroutine.
func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
