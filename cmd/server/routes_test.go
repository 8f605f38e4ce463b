package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/X-CodesTech/qAudio-sub000/internal/config"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer()
	w := doJSON(t, s, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBuzzerHTTP_ActivateAndPoll(t *testing.T) {
	s := NewServer()

	w := doJSON(t, s, "POST", "/api/buzzer/A", `{"activate":true,"role":"talent"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("activate: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var st types.BuzzerState
	decodeBody(t, w, &st)
	if !st.Active || st.ActivatedAt.IsZero() {
		t.Fatalf("expected active buzzer with timestamp, got %+v", st)
	}

	w = doJSON(t, s, "GET", "/api/buzzer/A/status", "")
	decodeBody(t, w, &st)
	if !st.Active {
		t.Fatalf("poll should see the active buzzer")
	}

	w = doJSON(t, s, "POST", "/api/buzzer/A", `{"activate":false}`)
	decodeBody(t, w, &st)
	if st.Active || !st.ActivatedAt.IsZero() {
		t.Fatalf("expected deactivated buzzer, got %+v", st)
	}
}

func TestBuzzerHTTP_PollClearsExpired(t *testing.T) {
	cfg := &config.Config{}
	cfg.Realtime.BuzzerTTL = 30 * time.Millisecond
	s := NewServer(WithConfig(cfg))

	if w := doJSON(t, s, "POST", "/api/buzzer/B", `{"activate":true}`); w.Code != http.StatusOK {
		t.Fatalf("activate: %d", w.Code)
	}
	time.Sleep(60 * time.Millisecond)

	var st types.BuzzerState
	w := doJSON(t, s, "GET", "/api/buzzer/B/status", "")
	decodeBody(t, w, &st)
	if st.Active {
		t.Fatalf("poll past the TTL must report inactive, got %+v", st)
	}
}

func TestBuzzerHTTP_UnknownStudio(t *testing.T) {
	s := NewServer()
	if w := doJSON(t, s, "GET", "/api/buzzer/Z/status", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown studio, got %d", w.Code)
	}
}

func TestTimerHTTP_UpdateAndGet(t *testing.T) {
	s := NewServer()

	w := doJSON(t, s, "POST", "/api/timer/A", `{"minutes":2,"seconds":0,"isRunning":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("post: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var st types.TimerState
	decodeBody(t, w, &st)
	if !st.DangerZone {
		t.Fatalf("2:00 must be inside the danger zone, got %+v", st)
	}

	w = doJSON(t, s, "GET", "/api/timer/A", "")
	decodeBody(t, w, &st)
	if st.Minutes != 2 || st.Seconds != 0 || !st.Running {
		t.Fatalf("get disagrees with post: %+v", st)
	}
}

func TestTimerHTTP_RejectsInvalidTime(t *testing.T) {
	s := NewServer()
	if w := doJSON(t, s, "POST", "/api/timer/A", `{"minutes":0,"seconds":60}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for 60 seconds, got %d", w.Code)
	}
	if w := doJSON(t, s, "POST", "/api/timer/RE", `{"minutes":1,"seconds":0}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for studio without a timer, got %d", w.Code)
	}
}

func TestSignalsHTTP_PostAndPoll(t *testing.T) {
	s := NewServer()

	w := doJSON(t, s, "POST", "/api/signals", `{"from":"remote","to":"tech","signal":{"sdp":"v=0"},"status":"signaling"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("post: expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	var resp struct {
		Signals []types.SignalRecord `json:"signals"`
	}
	w = doJSON(t, s, "GET", "/api/signals?role=tech", "")
	if w.Code != http.StatusOK {
		t.Fatalf("poll: expected 200, got %d", w.Code)
	}
	decodeBody(t, w, &resp)
	if len(resp.Signals) != 1 || resp.Signals[0].From != "remote" {
		t.Fatalf("unexpected poll result: %+v", resp.Signals)
	}

	// a cursor past the record's millisecond excludes it
	cursor := resp.Signals[0].Timestamp.UnixMilli() + 1
	w = doJSON(t, s, "GET", "/api/signals?role=tech&since="+strconv.FormatInt(cursor, 10), "")
	decodeBody(t, w, &resp)
	if len(resp.Signals) != 0 {
		t.Fatalf("expected empty page past the cursor, got %d", len(resp.Signals))
	}
}

func TestSignalsHTTP_RoleRequired(t *testing.T) {
	s := NewServer()
	if w := doJSON(t, s, "GET", "/api/signals", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without role, got %d", w.Code)
	}
	if w := doJSON(t, s, "GET", "/api/signals?role=tech&since=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad cursor, got %d", w.Code)
	}
	if w := doJSON(t, s, "POST", "/api/signals", `{"to":"tech"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without from, got %d", w.Code)
	}
}

func TestSignalsHTTP_Status(t *testing.T) {
	s := NewServer()

	var resp struct {
		Status string `json:"status"`
	}
	w := doJSON(t, s, "GET", "/api/signals/status?a=tech&b=remote", "")
	decodeBody(t, w, &resp)
	if resp.Status != string(types.SignalDisconnected) {
		t.Fatalf("expected disconnected before any signaling, got %s", resp.Status)
	}

	doJSON(t, s, "POST", "/api/signals", `{"from":"tech","to":"remote","status":"connected"}`)
	w = doJSON(t, s, "GET", "/api/signals/status?a=tech&b=remote", "")
	decodeBody(t, w, &resp)
	if resp.Status != string(types.SignalConnected) {
		t.Fatalf("expected connected, got %s", resp.Status)
	}
}

func TestCallLinesHTTP(t *testing.T) {
	s := NewServer()

	var listResp struct {
		Lines []types.CallLine `json:"lines"`
	}
	w := doJSON(t, s, "GET", "/api/calllines", "")
	decodeBody(t, w, &listResp)
	if len(listResp.Lines) != 8 {
		t.Fatalf("expected 8 fixed lines, got %d", len(listResp.Lines))
	}

	w = doJSON(t, s, "POST", "/api/calllines/3", `{"status":"active","phoneNumber":"+15550002222","contact":"weather desk"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("post: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var line types.CallLine
	decodeBody(t, w, &line)
	if line.Status != types.LineActive || line.StartTime == nil {
		t.Fatalf("expected answered line with start time, got %+v", line)
	}

	if w := doJSON(t, s, "POST", "/api/calllines/42", `{}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown line, got %d", w.Code)
	}
	if w := doJSON(t, s, "POST", "/api/calllines/1", `{"status":"busy"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
	if w := doJSON(t, s, "POST", "/api/calllines/nope", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := NewServer()
	registerConn(s, "c1")
	doJSON(t, s, "POST", "/api/buzzer/A", `{"activate":true}`)

	var stats types.ServerStats
	w := doJSON(t, s, "GET", "/api/stats", "")
	decodeBody(t, w, &stats)
	if stats.Connections != 1 {
		t.Fatalf("expected 1 connection, got %d", stats.Connections)
	}
	if stats.ActiveBuzzers != 1 {
		t.Fatalf("expected 1 active buzzer, got %d", stats.ActiveBuzzers)
	}
}
