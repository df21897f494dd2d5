// Package logbuffer keeps the most recent diagnostic entries in a fixed-capacity,
// oldest-first evicting buffer for display on the operator page.
package logbuffer

import (
	"fmt"
	"sync"
	"time"
)

// Severity category of a log entry.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// String returns the string representation.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Entry a single buffered log line.
type Entry struct {
	// Seq arrival number, strictly increasing for the lifetime of the buffer.
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Render wraps the message for display. Info entries get the plain wrapper;
// warnings and errors carry their category as a marker class.
func (e Entry) Render() string {
	switch e.Severity {
	case SeverityWarning, SeverityError:
		return fmt.Sprintf(`<div class="log-entry %s">%s</div>`, e.Severity, e.Message)
	default:
		return fmt.Sprintf(`<div class="log-entry">%s</div>`, e.Message)
	}
}

// Buffer holds at most capacity entries. When full, each Append evicts exactly
// the oldest entry first. Reads never change eviction order. Safe for
// concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	slots    []Entry
	head     int
	size     int
	capacity int
	seq      uint64
	now      func() time.Time
}

// New creates a buffer with fixed capacity. A capacity of zero or less keeps nothing.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{
		slots:    make([]Entry, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Append adds an entry, evicting the oldest one if the buffer is full.
func (b *Buffer) Append(severity Severity, text string) {
	if b == nil || b.capacity == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	entry := Entry{Seq: b.seq, Time: b.now(), Severity: severity, Message: text}

	if b.size == b.capacity {
		b.slots[b.head] = entry
		b.head = (b.head + 1) % b.capacity
		return
	}

	b.slots[(b.head+b.size)%b.capacity] = entry
	b.size++
}

// Clear drops every entry. Capacity is kept.
func (b *Buffer) Clear() {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.slots {
		b.slots[i] = Entry{}
	}
	b.head = 0
	b.size = 0
}

// Entries returns the retained entries, oldest first.
func (b *Buffer) Entries() []Entry {
	return b.EntriesAfter(0)
}

// EntriesAfter returns retained entries with Seq greater than seq, oldest first.
func (b *Buffer) EntriesAfter(seq uint64) []Entry {
	if b == nil {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]Entry, 0, b.size)
	for i := 0; i < b.size; i++ {
		entry := b.slots[(b.head+i)%b.capacity]
		if entry.Seq > seq {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Render returns every retained entry in display form, oldest first.
func (b *Buffer) Render() []string {
	entries := b.Entries()
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.Render())
	}
	return lines
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.size
}

// Capacity returns the fixed capacity.
func (b *Buffer) Capacity() int {
	if b == nil {
		return 0
	}
	return b.capacity
}
