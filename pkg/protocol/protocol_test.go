package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

func TestEncodeStampsTimestamp(t *testing.T) {
	ev := &protocol.Event{Type: protocol.TypePing}
	payload, err := protocol.Encode(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if ev.Timestamp.IsZero() {
		t.Fatalf("expected timestamp stamped")
	}

	var decoded protocol.Event
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != protocol.TypePing || decoded.Timestamp.IsZero() {
		t.Fatalf("round trip lost fields: %+v", decoded)
	}
}

func TestDataAccessorsTolerateJSONNumbers(t *testing.T) {
	raw := `{"type":"countdown_update","studioId":"A","data":{"minutes":2,"seconds":30,"isRunning":true,"label":"break"}}`
	var ev protocol.Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m, ok := ev.DataInt("minutes"); !ok || m != 2 {
		t.Fatalf("minutes: got %d ok=%v", m, ok)
	}
	if s, ok := ev.DataInt("seconds"); !ok || s != 30 {
		t.Fatalf("seconds: got %d ok=%v", s, ok)
	}
	if run, ok := ev.DataBool("isRunning"); !ok || !run {
		t.Fatalf("isRunning: got %v ok=%v", run, ok)
	}
	if label, ok := ev.DataString("label"); !ok || label != "break" {
		t.Fatalf("label: got %q ok=%v", label, ok)
	}
	if _, ok := ev.DataInt("missing"); ok {
		t.Fatalf("missing key must report !ok")
	}
}

func TestDataAccessorsNilData(t *testing.T) {
	ev := &protocol.Event{Type: protocol.TypePing}
	if _, ok := ev.DataString("x"); ok {
		t.Fatalf("nil data must report !ok")
	}
	if _, ok := ev.DataBool("x"); ok {
		t.Fatalf("nil data must report !ok")
	}
	if _, ok := ev.DataInt("x"); ok {
		t.Fatalf("nil data must report !ok")
	}
}

func TestIsSignaling(t *testing.T) {
	for _, kind := range []string{protocol.TypeRTCOffer, protocol.TypeRTCAnswer, protocol.TypeICECandidate} {
		if !(&protocol.Event{Type: kind}).IsSignaling() {
			t.Fatalf("%s must be signaling", kind)
		}
	}
	if (&protocol.Event{Type: protocol.TypeChat}).IsSignaling() {
		t.Fatalf("chat is not signaling")
	}
}
