package state

import (
	"sync"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

// DangerZoneSeconds is the remaining-time threshold (inclusive) at which the
// on-air warning engages.
const DangerZoneSeconds = 120

// TimerBank is the single authority for the per-studio countdown timers.
// Every transport that publishes timer state reads the snapshot stored here,
// so the WebSocket broadcast and the dedicated timer channel can never
// disagree.
type TimerBank struct {
	mu     sync.RWMutex
	states map[types.Studio]*types.TimerState
}

// NewTimerBank initializes the countdown for studios A and B to 5:00,
// not running.
func NewTimerBank() *TimerBank {
	b := &TimerBank{states: make(map[types.Studio]*types.TimerState)}
	for _, s := range []types.Studio{types.StudioA, types.StudioB} {
		b.states[s] = &types.TimerState{
			Studio:     s,
			Minutes:    5,
			Seconds:    0,
			LastUpdate: time.Now(),
		}
	}
	return b
}

// Update stores a new countdown value. DangerZone is recomputed here and
// nowhere else; publishers take the returned snapshot as-is.
func (b *TimerBank) Update(studio types.Studio, minutes, seconds int, running bool) (types.TimerState, error) {
	if minutes < 0 || seconds < 0 || seconds > 59 {
		return types.TimerState{}, ErrInvalidTime
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[studio]
	if !ok {
		return types.TimerState{}, ErrUnknownStudio
	}

	st.Minutes = minutes
	st.Seconds = seconds
	st.Running = running
	st.DangerZone = minutes*60+seconds <= DangerZoneSeconds
	st.LastUpdate = time.Now()
	return *st, nil
}

// Snapshot returns the latest stored state. HTTP pollers use this instead of
// a push channel.
func (b *TimerBank) Snapshot(studio types.Studio) (types.TimerState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st, ok := b.states[studio]
	if !ok {
		return types.TimerState{}, ErrUnknownStudio
	}
	return *st, nil
}

// All returns snapshots for every studio with a timer.
func (b *TimerBank) All() []types.TimerState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.TimerState, 0, len(b.states))
	for _, st := range b.states {
		out = append(out, *st)
	}
	return out
}
