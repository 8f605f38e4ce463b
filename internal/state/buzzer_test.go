package state_test

import (
	"testing"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/state"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

func TestBuzzer_ActivateThenStatus(t *testing.T) {
	b := state.NewBuzzerBank(time.Second)

	st, err := b.Activate(types.StudioA)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !st.Active || st.ActivatedAt.IsZero() {
		t.Fatalf("expected active state with timestamp, got %+v", st)
	}

	got, err := b.Status(types.StudioA)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !got.Active {
		t.Fatalf("expected buzzer still active before TTL")
	}
}

func TestBuzzer_LazyExpiryOnStatus(t *testing.T) {
	b := state.NewBuzzerBank(60 * time.Millisecond)

	if _, err := b.Activate(types.StudioB); err != nil {
		t.Fatalf("activate: %v", err)
	}

	// well before the TTL the buzzer reads active
	st, _ := b.Status(types.StudioB)
	if !st.Active {
		t.Fatalf("expected active before TTL")
	}

	time.Sleep(120 * time.Millisecond)

	st, _ = b.Status(types.StudioB)
	if st.Active {
		t.Fatalf("expected buzzer expired after TTL")
	}
	if !st.ActivatedAt.IsZero() {
		t.Fatalf("expected ActivatedAt cleared on expiry, got %v", st.ActivatedAt)
	}
}

func TestBuzzer_ScheduledExpiryFiresWithoutPoll(t *testing.T) {
	b := state.NewBuzzerBank(50 * time.Millisecond)

	expired := make(chan types.Studio, 1)
	b.OnExpire(func(s types.Studio) { expired <- s })

	if _, err := b.Activate(types.StudioA); err != nil {
		t.Fatalf("activate: %v", err)
	}

	select {
	case s := <-expired:
		if s != types.StudioA {
			t.Fatalf("expected expiry for studio A, got %s", s)
		}
	case <-time.After(time.Second):
		t.Fatalf("scheduled expiry never fired")
	}

	st, _ := b.Status(types.StudioA)
	if st.Active {
		t.Fatalf("expected inactive after scheduled expiry")
	}
}

func TestBuzzer_ReactivationSupersedesPendingExpiry(t *testing.T) {
	b := state.NewBuzzerBank(80 * time.Millisecond)

	if _, err := b.Activate(types.StudioA); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	// the second activation restarts the clock; the first timer must not
	// clear it when it fires
	if _, err := b.Activate(types.StudioA); err != nil {
		t.Fatalf("second activate: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	st, _ := b.Status(types.StudioA)
	if !st.Active {
		t.Fatalf("expected buzzer still active after re-activation")
	}
}

func TestBuzzer_DeactivateClearsTimestamp(t *testing.T) {
	b := state.NewBuzzerBank(time.Second)

	if _, err := b.Activate(types.StudioRE); err != nil {
		t.Fatalf("activate: %v", err)
	}
	st, err := b.Deactivate(types.StudioRE)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if st.Active || !st.ActivatedAt.IsZero() {
		t.Fatalf("expected cleared state, got %+v", st)
	}
}

func TestBuzzer_UnknownStudio(t *testing.T) {
	b := state.NewBuzzerBank(time.Second)

	if _, err := b.Activate("Z"); err != state.ErrUnknownStudio {
		t.Fatalf("expected ErrUnknownStudio on activate, got %v", err)
	}
	if _, err := b.Status("Z"); err != state.ErrUnknownStudio {
		t.Fatalf("expected ErrUnknownStudio on status, got %v", err)
	}
}
