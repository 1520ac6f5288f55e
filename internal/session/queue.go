package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PerformanceQueue is the ordered backlog of song requests. Index 0 plays next.
//
// Requests can be addressed by their stable ID or by (spotID, songName). The
// second form matches the first entry in list order, so two identical pending
// requests from one seat are indistinguishable through it.
type PerformanceQueue struct {
	entries []QueueEntry
}

// NewPerformanceQueue adopts loaded entries, assigning IDs to entries saved
// before IDs existed.
func NewPerformanceQueue(entries []QueueEntry) *PerformanceQueue {
	owned := make([]QueueEntry, len(entries))
	copy(owned, entries)
	for i := range owned {
		if owned[i].ID == "" {
			owned[i].ID = uuid.NewString()
		}
	}
	return &PerformanceQueue{entries: owned}
}

func (q *PerformanceQueue) Len() int {
	return len(q.entries)
}

func (q *PerformanceQueue) IsEmpty() bool {
	return q.Len() == 0
}

func (q *PerformanceQueue) isValidIndex(index int) bool {
	return 0 <= index && index < q.Len()
}

// Entries returns a copy of the queue in serving order.
func (q *PerformanceQueue) Entries() []QueueEntry {
	out := make([]QueueEntry, q.Len())
	copy(out, q.entries)
	return out
}

func (q *PerformanceQueue) At(index int) (QueueEntry, bool) {
	if !q.isValidIndex(index) {
		return QueueEntry{}, false
	}
	return q.entries[index], true
}

// Peek returns the on-deck request.
func (q *PerformanceQueue) Peek() (QueueEntry, bool) {
	return q.At(0)
}

// Enqueue appends at the tail. A missing ID is filled in.
func (q *PerformanceQueue) Enqueue(entry QueueEntry) QueueEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	q.entries = append(q.entries, entry)
	return entry
}

// MoveUp swaps index with its predecessor. Index 0 and out-of-range indexes
// are left alone.
func (q *PerformanceQueue) MoveUp(index int) bool {
	if index <= 0 || index >= q.Len() {
		return false
	}
	q.entries[index], q.entries[index-1] = q.entries[index-1], q.entries[index]
	return true
}

// MoveDown swaps index with its successor. The last index is left alone.
func (q *PerformanceQueue) MoveDown(index int) bool {
	if index < 0 || index >= q.Len()-1 {
		return false
	}
	q.entries[index], q.entries[index+1] = q.entries[index+1], q.entries[index]
	return true
}

// Rename replaces the song name at index. It reports false when the trimmed
// name equals the current one.
func (q *PerformanceQueue) Rename(index int, newName string) (bool, error) {
	if !q.isValidIndex(index) {
		return false, fmt.Errorf("queue index %d: %w", index, ErrNotFound)
	}
	trimmed := strings.TrimSpace(newName)
	if trimmed == "" {
		return false, fmt.Errorf("empty song name: %w", ErrInvalidArgument)
	}
	if q.entries[index].SongName == trimmed {
		return false, nil
	}
	q.entries[index].SongName = trimmed
	return true, nil
}

// BoostToTop moves the first request matching spotID and songName to the
// front. A request that is absent or already first yields ErrNotFound and
// leaves the queue untouched.
func (q *PerformanceQueue) BoostToTop(spotID, songName string) (QueueEntry, error) {
	return q.boostAt(q.indexOf(spotID, songName), fmt.Sprintf("%s/%s", spotID, songName))
}

// BoostByID is BoostToTop addressed by request ID.
func (q *PerformanceQueue) BoostByID(entryID string) (QueueEntry, error) {
	return q.boostAt(q.indexOfID(entryID), entryID)
}

func (q *PerformanceQueue) boostAt(index int, label string) (QueueEntry, error) {
	if index < 0 {
		return QueueEntry{}, fmt.Errorf("queued song %s: %w", label, ErrNotFound)
	}
	if index == 0 {
		return QueueEntry{}, fmt.Errorf("queued song %s already at the top: %w", label, ErrNotFound)
	}
	entry := q.entries[index]
	q.entries = append(q.entries[:index], q.entries[index+1:]...)
	q.entries = append([]QueueEntry{entry}, q.entries...)
	return entry, nil
}

// DequeueMatching removes and returns the first request matching both fields.
// ErrNotFound means the request was already consumed.
func (q *PerformanceQueue) DequeueMatching(spotID, songName string) (QueueEntry, error) {
	return q.removeAt(q.indexOf(spotID, songName), fmt.Sprintf("%s/%s", spotID, songName))
}

// DequeueByID removes and returns the request with the given ID.
func (q *PerformanceQueue) DequeueByID(entryID string) (QueueEntry, error) {
	return q.removeAt(q.indexOfID(entryID), entryID)
}

func (q *PerformanceQueue) removeAt(index int, label string) (QueueEntry, error) {
	if index < 0 {
		return QueueEntry{}, fmt.Errorf("queued song %s: %w", label, ErrNotFound)
	}
	entry := q.entries[index]
	q.entries = append(q.entries[:index], q.entries[index+1:]...)
	return entry, nil
}

func (q *PerformanceQueue) Clear() {
	q.entries = make([]QueueEntry, 0)
}

func (q *PerformanceQueue) indexOf(spotID, songName string) int {
	for i, entry := range q.entries {
		if entry.SpotID == spotID && entry.SongName == songName {
			return i
		}
	}
	return -1
}

func (q *PerformanceQueue) indexOfID(entryID string) int {
	for i, entry := range q.entries {
		if entry.ID == entryID {
			return i
		}
	}
	return -1
}

func (q *PerformanceQueue) find(entryID string) (QueueEntry, bool) {
	i := q.indexOfID(entryID)
	if i < 0 {
		return QueueEntry{}, false
	}
	return q.entries[i], true
}

func (q *PerformanceQueue) findMatching(spotID, songName string) (QueueEntry, bool) {
	i := q.indexOf(spotID, songName)
	if i < 0 {
		return QueueEntry{}, false
	}
	return q.entries[i], true
}
