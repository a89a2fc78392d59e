package audit

import (
	"time"
)

// Entry is one immutable record in an audit trail.
type Entry struct {
	Action  string    `json:"action"`
	ActorID string    `json:"actor_id"`
	At      time.Time `json:"at"`
	Details string    `json:"details,omitempty"`
}

// Trail is an append-only event log. It is embedded in attendance records and
// approval requests and persisted as JSONB.
type Trail []Entry

// Append adds an entry at the end of the trail.
func (t *Trail) Append(action, actorID, details string, at time.Time) {
	*t = append(*t, Entry{
		Action:  action,
		ActorID: actorID,
		At:      at.UTC(),
		Details: details,
	})
}

// Entries returns a copy so callers cannot rewrite history.
func (t Trail) Entries() []Entry {
	out := make([]Entry, len(t))
	copy(out, t)
	return out
}

// Last returns the most recent entry.
func (t Trail) Last() (Entry, bool) {
	if len(t) == 0 {
		return Entry{}, false
	}
	return t[len(t)-1], true
}

// Has reports whether an entry with the given action and details exists.
func (t Trail) Has(action, details string) bool {
	for _, e := range t {
		if e.Action == action && e.Details == details {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the trail.
func (t Trail) Clone() Trail {
	if t == nil {
		return nil
	}
	return Trail(t.Entries())
}
