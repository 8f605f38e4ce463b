package protocol

import (
	"encoding/json"
	"time"
)

// Event types consumed by the coordinator.
const (
	TypeRole            = "role"
	TypeAuth            = "auth"
	TypeTalentBuzzer    = "talentBuzzer"
	TypeProducerBuzzer  = "producerBuzzer"
	TypeChat            = "chat"
	TypeClearChat       = "clearChat"
	TypeCountdownUpdate = "countdown_update"
	TypeCallLineStatus  = "call_line_status"
	TypeRTCOffer        = "rtc-offer"
	TypeRTCAnswer       = "rtc-answer"
	TypeICECandidate    = "ice-candidate"
	TypePing            = "ping"
)

// Event types emitted by the coordinator.
const (
	TypePong           = "pong"
	TypeInit           = "init"
	TypeAuthSuccess    = "auth_success"
	TypeAuthFailure    = "auth_failure"
	TypeNewChatMessage = "newChatMessage"
	TypeCallLineUpdate = "call_line_update"
	TypePlaybackUpdate = "playback_update"
)

// Event is the wire envelope shared by every transport: one persistent
// WebSocket message, one timer-channel frame, or one HTTP poll response
// entry. Unknown payload fields travel in Data untouched.
type Event struct {
	Type              string                 `json:"type"`
	Role              string                 `json:"role,omitempty"`
	Studio            string                 `json:"studioId,omitempty"`
	AdditionalStudios []string               `json:"additionalStudios,omitempty"`
	From              string                 `json:"from,omitempty"`
	To                string                 `json:"to,omitempty"`
	Timestamp         time.Time              `json:"timestamp,omitempty"`
	Data              map[string]interface{} `json:"data,omitempty"`
}

// Encode marshals the event, stamping the timestamp when unset.
func Encode(ev *Event) ([]byte, error) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	return json.Marshal(ev)
}

// DataString extracts a string payload field, tolerating a missing Data map.
func (e *Event) DataString(key string) (string, bool) {
	if e.Data == nil {
		return "", false
	}
	v, ok := e.Data[key].(string)
	return v, ok
}

// DataBool extracts a boolean payload field.
func (e *Event) DataBool(key string) (bool, bool) {
	if e.Data == nil {
		return false, false
	}
	v, ok := e.Data[key].(bool)
	return v, ok
}

// DataInt extracts an integer payload field. JSON numbers decode as float64,
// so both representations are accepted.
func (e *Event) DataInt(key string) (int, bool) {
	if e.Data == nil {
		return 0, false
	}
	switch v := e.Data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// IsSignaling reports whether the event carries an opaque WebRTC payload
// that should be mirrored into the signal store for polling clients.
func (e *Event) IsSignaling() bool {
	switch e.Type {
	case TypeRTCOffer, TypeRTCAnswer, TypeICECandidate:
		return true
	default:
		return false
	}
}
