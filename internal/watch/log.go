package watch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/imageforge/gateway/model"
)

// Log is the bounded, most-recent-first record of submitted jobs, persisted
// as a JSON file. It is a recency cache: a missing or corrupt file starts
// empty instead of failing, because job outcomes are always observable
// through the listing.
type Log struct {
	path    string
	cap     int
	entries []model.SubmittedJob
}

func OpenLog(path string, cap int) *Log {
	l := &Log{path: path, cap: cap}

	raw, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	if err := json.Unmarshal(raw, &l.entries); err != nil {
		l.entries = nil
		return l
	}
	if len(l.entries) > cap {
		l.entries = l.entries[:cap]
	}
	return l
}

// Append prepends a freshly submitted job, trims to the cap and persists.
func (l *Log) Append(id string, submittedAt time.Time) error {
	entries := make([]model.SubmittedJob, 0, len(l.entries)+1)
	entries = append(entries, model.SubmittedJob{ID: id, SubmittedAt: submittedAt})
	entries = append(entries, l.entries...)
	if len(entries) > l.cap {
		entries = entries[:l.cap]
	}
	l.entries = entries
	return l.persist()
}

// RemoveCompleted drops every entry whose id is in the completed set and
// persists when anything changed. Returns how many entries were removed.
func (l *Log) RemoveCompleted(completed map[string]struct{}) (int, error) {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if _, done := completed[e.ID]; !done {
			kept = append(kept, e)
		}
	}

	removed := len(l.entries) - len(kept)
	l.entries = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, l.persist()
}

func (l *Log) Entries() []model.SubmittedJob {
	out := make([]model.SubmittedJob, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) persist() error {
	raw, err := json.Marshal(l.entries)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, raw, 0644)
}
