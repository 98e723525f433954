package transcript

import (
	"sync"
	"time"
)

// Kind identifies who or what produced an entry
type Kind string

const (
	KindUser     Kind = "user"      // Text typed by the user
	KindBot      Kind = "bot"       // Assistant message
	KindSensor   Kind = "sensor"    // Smartwatch reading
	KindError    Kind = "error"     // Service or transport failure
	KindFollowUp Kind = "follow-up" // Prompt of a follow-up question
	KindFinal    Kind = "final"     // Assessment-complete marker
)

// StampLayout is the local clock display used for every entry
const StampLayout = "3:04:05 PM"

// Entry is one immutable line of the visible conversation
type Entry struct {
	kind Kind
	text string
	at   time.Time
}

func (e Entry) Kind() Kind      { return e.kind }
func (e Entry) Text() string    { return e.text }
func (e Entry) Time() time.Time { return e.at }

// Stamp returns the display timestamp
func (e Entry) Stamp() string {
	return e.at.Format(StampLayout)
}

// Transcript is the ordered, append-only log of entries. It is only emptied wholesale by Clear.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time

	onAppend []func(Entry)
	onClear  []func()
}

// New creates an empty transcript stamping entries with now (time.Now when nil)
func New(now func() time.Time) *Transcript {
	if now == nil {
		now = time.Now
	}
	return &Transcript{now: now}
}

// OnAppend registers fn to be called after every append
func (t *Transcript) OnAppend(fn func(Entry)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAppend = append(t.onAppend, fn)
}

// OnClear registers fn to be called after every clear
func (t *Transcript) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = append(t.onClear, fn)
}

// Append stamps and stores a new entry
func (t *Transcript) Append(kind Kind, text string) Entry {
	t.mu.Lock()
	entry := Entry{kind: kind, text: text, at: t.now()}
	t.entries = append(t.entries, entry)
	listeners := t.onAppend
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(entry)
	}
	return entry
}

// Clear removes every entry
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.entries = nil
	listeners := t.onClear
	t.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Entries returns a copy of the log in order
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Last returns the most recent entry
func (t *Transcript) Last() (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
