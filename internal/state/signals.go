package state

import (
	"sort"
	"sync"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

const (
	signalTrimThreshold = 100
	signalKeep          = 50
)

// SignalLog is the append-only store of relayed WebRTC negotiation events.
// Clients without a live socket poll it with a timestamp cursor. The log is
// capped: once it grows past the trim threshold only the most recent records
// survive.
type SignalLog struct {
	mu      sync.RWMutex
	records []types.SignalRecord
	max     int
	keep    int
}

func NewSignalLog() *SignalLog {
	return &SignalLog{max: signalTrimThreshold, keep: signalKeep}
}

// Append stores a record, stamping its timestamp when unset.
func (l *SignalLog) Append(rec types.SignalRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Status == "" {
		rec.Status = types.SignalPending
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)
	if len(l.records) > l.max {
		l.records = append([]types.SignalRecord(nil), l.records[len(l.records)-l.keep:]...)
	}
}

// Since returns the records addressed to the role (or unaddressed) with a
// timestamp strictly after the cursor, oldest first.
func (l *SignalLog) Since(role string, after time.Time) []types.SignalRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []types.SignalRecord
	for _, rec := range l.records {
		if rec.To != "" && rec.To != role {
			continue
		}
		if !rec.Timestamp.After(after) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// LatestStatus returns the most recent record involving either role, used to
// answer "are these two connected?" queries.
func (l *SignalLog) LatestStatus(roleA, roleB string) (types.SignalRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.records) - 1; i >= 0; i-- {
		rec := l.records[i]
		if involves(rec, roleA) || involves(rec, roleB) {
			return rec, true
		}
	}
	return types.SignalRecord{}, false
}

func (l *SignalLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func involves(rec types.SignalRecord, role string) bool {
	return role != "" && (rec.From == role || rec.To == role)
}
