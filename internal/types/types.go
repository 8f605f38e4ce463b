package types

import (
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Role identifies what kind of console a connection belongs to.
type Role string

const (
	RoleProducer Role = "producer"
	RoleTalent   Role = "talent"
	RoleAdmin    Role = "admin"
	RoleTech     Role = "tech"
	RoleRemote   Role = "remote"
)

func (r Role) Valid() bool {
	switch r {
	case RoleProducer, RoleTalent, RoleAdmin, RoleTech, RoleRemote:
		return true
	default:
		return false
	}
}

// Studio is a broadcast room. RE is the remote-contribution studio.
type Studio string

const (
	StudioA  Studio = "A"
	StudioB  Studio = "B"
	StudioRE Studio = "RE"
)

func (s Studio) Valid() bool {
	switch s {
	case StudioA, StudioB, StudioRE:
		return true
	default:
		return false
	}
}

// Connection is one live bidirectional channel to a console. The role and
// studio fields are populated by the first identifying message and may be
// overwritten by a later one (last registration wins).
type Connection struct {
	ID          string
	Role        Role
	Studio      Studio
	Additional  map[Studio]struct{}
	ConnectedAt time.Time

	// Conn is the underlying transport. Nil in unit tests that only
	// exercise routing and registry behavior.
	Conn *websocket.Conn

	mu           sync.RWMutex
	send         chan []byte
	closed       bool
	lastActivity time.Time
}

func NewConnection(id string) *Connection {
	now := time.Now()
	return &Connection{
		ID:           id,
		Additional:   make(map[Studio]struct{}),
		ConnectedAt:  now,
		send:         make(chan []byte, 256),
		lastActivity: now,
	}
}

// InStudio reports whether the connection's primary or any additional studio
// matches s.
func (c *Connection) InStudio(s Studio) bool {
	if c.Studio == s {
		return true
	}
	_, ok := c.Additional[s]
	return ok
}

// Unscoped reports whether the connection has no studio assignment at all.
// Such connections receive every studio-scoped chat event.
func (c *Connection) Unscoped() bool {
	return c.Studio == "" && len(c.Additional) == 0
}

// Touch records activity on the connection. Called on every inbound frame.
func (c *Connection) Touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

func (c *Connection) LastActivity() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastActivity
}

// Enqueue offers a payload to the connection's outbox without blocking.
// Returns false if the connection is closed or its buffer is full; the
// caller treats either as a skipped delivery, never a fatal error.
func (c *Connection) Enqueue(payload []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Outbox is consumed by the single writer goroutine owning the socket.
func (c *Connection) Outbox() <-chan []byte {
	return c.send
}

// Close marks the connection closed and releases the writer. Safe to call
// more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Connection) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// BuzzerState is the per-studio attention signal. ActivatedAt is set iff
// Active is true.
type BuzzerState struct {
	Studio      Studio    `json:"studioId"`
	Active      bool      `json:"isActive"`
	ActivatedAt time.Time `json:"activatedAt,omitempty"`
}

// TimerState is the per-studio countdown snapshot. DangerZone is derived:
// total remaining seconds <= 120.
type TimerState struct {
	Studio     Studio    `json:"studioId"`
	Minutes    int       `json:"minutes"`
	Seconds    int       `json:"seconds"`
	Running    bool      `json:"isRunning"`
	DangerZone bool      `json:"isDangerZone"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// SignalStatus tracks a WebRTC negotiation chain, best-effort.
type SignalStatus string

const (
	SignalPending      SignalStatus = "pending"
	SignalConnecting   SignalStatus = "connecting"
	SignalConnected    SignalStatus = "connected"
	SignalSignaling    SignalStatus = "signaling"
	SignalDisconnected SignalStatus = "disconnected"
)

// SignalRecord is one relayed WebRTC/connection-negotiation event. The
// payload is opaque to the coordinator.
type SignalRecord struct {
	From      string                 `json:"from"`
	To        string                 `json:"to,omitempty"`
	Signal    map[string]interface{} `json:"signal,omitempty"`
	Status    SignalStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
}

// CallLineStatus is the lifecycle of a phone-call slot.
type CallLineStatus string

const (
	LineInactive CallLineStatus = "inactive"
	LineRinging  CallLineStatus = "ringing"
	LineActive   CallLineStatus = "active"
	LineHolding  CallLineStatus = "holding"
	LineOnAir    CallLineStatus = "on-air"
)

// Live reports whether the line has an established call. StartTime is set
// iff the line is live.
func (s CallLineStatus) Live() bool {
	switch s {
	case LineActive, LineHolding, LineOnAir:
		return true
	default:
		return false
	}
}

func (s CallLineStatus) Valid() bool {
	switch s {
	case LineInactive, LineRinging, LineActive, LineHolding, LineOnAir:
		return true
	default:
		return false
	}
}

// CallLine is one of the 8 fixed phone-call slots (1-4 studio A, 5-8 studio B).
type CallLine struct {
	ID          int            `json:"id"`
	Studio      Studio         `json:"studioId"`
	Status      CallLineStatus `json:"status"`
	PhoneNumber string         `json:"phoneNumber,omitempty"`
	Contact     string         `json:"contact,omitempty"`
	StartTime   *time.Time     `json:"startTime,omitempty"`
	Duration    int            `json:"duration,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	InputLevel  int            `json:"inputLevel"`
	OutputLevel int            `json:"outputLevel"`
}

// ChatMessage is one studio chat entry. An empty studio means the message
// was unscoped and visible everywhere.
type ChatMessage struct {
	ID      string    `json:"id"`
	Studio  Studio    `json:"studioId,omitempty"`
	Sender  string    `json:"sender"`
	Role    Role      `json:"role,omitempty"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

// ServerStats is the aggregate reported by the stats endpoint.
type ServerStats struct {
	Connections   int          `json:"connections"`
	ByRole        map[Role]int `json:"by_role"`
	ActiveBuzzers int          `json:"active_buzzers"`
	SignalRecords int          `json:"signal_records"`
	UptimeSeconds int64        `json:"uptime_seconds"`
}
