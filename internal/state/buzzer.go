package state

import (
	"sync"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

// DefaultBuzzerTTL is how long an activated buzzer stays on before the
// server clears it.
const DefaultBuzzerTTL = 10 * time.Second

// BuzzerBank holds the per-studio attention signal. Expiry is driven by a
// scheduled callback at ActivatedAt+TTL so a buzzer can never stay stuck on
// when nobody polls; Status additionally performs the same check lazily so
// pollers observe expiry even before the timer fires.
type BuzzerBank struct {
	mu     sync.Mutex
	states map[types.Studio]*types.BuzzerState
	ttl    time.Duration

	// expired, when set, is invoked outside the lock after a scheduled
	// expiry clears a studio. The server uses it to push the deactivation
	// to connected consoles.
	expired func(types.Studio)
}

func NewBuzzerBank(ttl time.Duration) *BuzzerBank {
	if ttl <= 0 {
		ttl = DefaultBuzzerTTL
	}
	b := &BuzzerBank{
		states: make(map[types.Studio]*types.BuzzerState),
		ttl:    ttl,
	}
	for _, s := range []types.Studio{types.StudioA, types.StudioB, types.StudioRE} {
		b.states[s] = &types.BuzzerState{Studio: s}
	}
	return b
}

// OnExpire registers the callback invoked when a scheduled expiry fires.
func (b *BuzzerBank) OnExpire(fn func(types.Studio)) {
	b.mu.Lock()
	b.expired = fn
	b.mu.Unlock()
}

// Activate turns the studio's buzzer on and schedules its expiry. Active and
// ActivatedAt are written together under the lock so no caller can observe a
// torn pair.
func (b *BuzzerBank) Activate(studio types.Studio) (types.BuzzerState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[studio]
	if !ok {
		return types.BuzzerState{}, ErrUnknownStudio
	}

	now := time.Now()
	st.Active = true
	st.ActivatedAt = now

	// The fired timer re-checks ActivatedAt: a newer activation or a manual
	// deactivation makes it a no-op.
	time.AfterFunc(b.ttl, func() { b.expire(studio, now) })

	return *st, nil
}

func (b *BuzzerBank) Deactivate(studio types.Studio) (types.BuzzerState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[studio]
	if !ok {
		return types.BuzzerState{}, ErrUnknownStudio
	}
	st.Active = false
	st.ActivatedAt = time.Time{}
	return *st, nil
}

// Status returns the studio's buzzer state, clearing it first if the TTL
// has already elapsed.
func (b *BuzzerBank) Status(studio types.Studio) (types.BuzzerState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[studio]
	if !ok {
		return types.BuzzerState{}, ErrUnknownStudio
	}
	if st.Active && time.Since(st.ActivatedAt) > b.ttl {
		st.Active = false
		st.ActivatedAt = time.Time{}
	}
	return *st, nil
}

// ActiveCount reports how many studios currently have the buzzer on.
func (b *BuzzerBank) ActiveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, st := range b.states {
		if st.Active && time.Since(st.ActivatedAt) <= b.ttl {
			n++
		}
	}
	return n
}

func (b *BuzzerBank) expire(studio types.Studio, activatedAt time.Time) {
	b.mu.Lock()
	st, ok := b.states[studio]
	if !ok || !st.Active || !st.ActivatedAt.Equal(activatedAt) {
		b.mu.Unlock()
		return
	}
	st.Active = false
	st.ActivatedAt = time.Time{}
	fn := b.expired
	b.mu.Unlock()

	if fn != nil {
		fn(studio)
	}
}
