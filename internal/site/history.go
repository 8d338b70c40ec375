package site

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Build statuses
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// BuildRecord describes one site build
type BuildRecord struct {
	ID         string     `json:"id"`
	Variant    string     `json:"variant"`
	Status     string     `json:"status"`
	Pages      int        `json:"pages"`
	Copied     int        `json:"copied"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	Error      string     `json:"error,omitempty"`
}

// History is a thread-safe ring buffer of build records
type History struct {
	mu      sync.RWMutex
	entries []BuildRecord
	cap     int
}

// NewHistory creates a history keeping at most capacity records
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		entries: make([]BuildRecord, 0, capacity),
		cap:     capacity,
	}
}

// Start records a running build and returns its id
func (h *History) Start(variant string) string {
	rec := BuildRecord{
		ID:        uuid.NewString(),
		Variant:   variant,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.cap {
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = rec
	} else {
		h.entries = append(h.entries, rec)
	}
	return rec.ID
}

// Finish completes the build with the given id and returns the final record.
// The second result is false when the record has already been evicted.
func (h *History) Finish(id string, pages, copied int, err error) (BuildRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].ID != id {
			continue
		}
		h.entries[i].complete(pages, copied, err)
		return h.entries[i], true
	}
	return BuildRecord{}, false
}

// complete fills in the outcome of a finished build
func (r *BuildRecord) complete(pages, copied int, err error) {
	now := time.Now()
	r.Pages = pages
	r.Copied = copied
	r.FinishedAt = &now
	r.DurationMs = now.Sub(r.StartedAt).Milliseconds()
	r.Status = StatusSucceeded
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

// Entries returns all build records (newest first)
func (h *History) Entries() []BuildRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]BuildRecord, len(h.entries))
	for i, j := 0, len(h.entries)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = h.entries[j]
	}
	return result
}

// Last returns the newest record, if any
func (h *History) Last() (BuildRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return BuildRecord{}, false
	}
	return h.entries[len(h.entries)-1], true
}
