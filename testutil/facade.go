package testutil

import (
	"strings"
	"sync"

	"github.com/kbukum/composekit/logger"
)

// LogEntry is one message captured by RecordingFacade.
type LogEntry struct {
	Message  string
	Category logger.Category
	Priority logger.Priority
}

// RecordingFacade is a logger.Facade that keeps every entry in memory.
type RecordingFacade struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecordingFacade creates an empty RecordingFacade.
func NewRecordingFacade() *RecordingFacade {
	return &RecordingFacade{}
}

// Log implements logger.Facade.
func (f *RecordingFacade) Log(message string, category logger.Category, priority logger.Priority) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, LogEntry{Message: message, Category: category, Priority: priority})
}

// Entries returns a copy of the captured entries in order.
func (f *RecordingFacade) Entries() []LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LogEntry(nil), f.entries...)
}

// Messages returns the captured messages in order.
func (f *RecordingFacade) Messages() []string {
	entries := f.Entries()
	result := make([]string, len(entries))
	for i, e := range entries {
		result[i] = e.Message
	}
	return result
}

// Contains reports whether any captured message contains substr.
func (f *RecordingFacade) Contains(substr string) bool {
	for _, m := range f.Messages() {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Reset drops all captured entries.
func (f *RecordingFacade) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = nil
}
