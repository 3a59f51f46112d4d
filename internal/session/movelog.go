package session

import "time"

// Entry records one observed block, newest first. The log is client-only,
// ephemeral, and reset on every new game; it is never reconciled with the
// chain.
type Entry struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// moveLog keeps block entries most recent first.
type moveLog struct {
	entries []Entry
}

// prepend inserts an entry at the front.
func (l *moveLog) prepend(e Entry) {
	l.entries = append([]Entry{e}, l.entries...)
}

// reset drops all entries.
func (l *moveLog) reset() {
	l.entries = nil
}

// snapshot returns a copy of the entries, newest first.
func (l *moveLog) snapshot() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
