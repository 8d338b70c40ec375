package logging

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component,omitempty"`
	Message   string    `json:"message"`
}

// LogBuffer is a thread-safe ring buffer for log entries. It is installed
// as a logrus hook so every component logger feeds it.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	cap     int
}

// NewLogBuffer creates a new log buffer with the given capacity
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &LogBuffer{
		entries: make([]LogEntry, 0, capacity),
		cap:     capacity,
	}
}

// Levels implements logrus.Hook.
func (lb *LogBuffer) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (lb *LogBuffer) Fire(entry *logrus.Entry) error {
	component, _ := entry.Data["component"].(string)
	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	lb.add(LogEntry{
		Timestamp: entry.Time,
		Level:     level,
		Component: component,
		Message:   entry.Message,
	})
	return nil
}

func (lb *LogBuffer) add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.entries) >= lb.cap {
		// Shift everything left by 1, drop oldest
		copy(lb.entries, lb.entries[1:])
		lb.entries[len(lb.entries)-1] = entry
	} else {
		lb.entries = append(lb.entries, entry)
	}
}

// Resize changes the capacity, keeping the newest entries.
func (lb *LogBuffer) Resize(capacity int) {
	if capacity <= 0 {
		return
	}
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.entries) > capacity {
		lb.entries = append([]LogEntry(nil), lb.entries[len(lb.entries)-capacity:]...)
	}
	lb.cap = capacity
}

// Entries returns all entries, optionally filtered by level
func (lb *LogBuffer) Entries(levels []string) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	if len(levels) == 0 {
		result := make([]LogEntry, len(lb.entries))
		copy(result, lb.entries)
		return result
	}

	levelSet := make(map[string]bool)
	for _, l := range levels {
		levelSet[strings.ToLower(strings.TrimSpace(l))] = true
	}

	result := make([]LogEntry, 0)
	for _, e := range lb.entries {
		if levelSet[strings.ToLower(e.Level)] {
			result = append(result, e)
		}
	}
	return result
}

// Clear removes all entries
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = lb.entries[:0]
}
