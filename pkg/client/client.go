// Package client is a Go console client for the realtime coordinator. It is
// used by remote-talent and tech integrations that run outside the browser.
package client

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	cidpkg "github.com/X-CodesTech/qAudio-sub000/internal/cid"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

// buildDialHeaders constructs the HTTP header map used for websocket.Dial.
// Extracted to allow unit testing of header propagation.
func buildDialHeaders(ctx context.Context, userAgent string) map[string][]string {
	headers := map[string][]string{"User-Agent": {userAgent}}
	cidpkg.AddHeaderFromContext(headers, ctx)
	return headers
}

// EventHandler defines callbacks for handling coordinator events.
type EventHandler interface {
	OnConnected()
	OnDisconnected()
	OnAuthResult(success bool, connectionID string)
	OnInit(data map[string]interface{})
	OnBuzzer(studio string, active bool)
	OnChatMessage(studio, sender, content string)
	OnChatCleared(studio string)
	OnTimerUpdate(studio string, minutes, seconds int, running, dangerZone bool)
	OnCallLineUpdate(data map[string]interface{})
	OnPlaybackUpdate(data map[string]interface{})
	OnServerEvent(eventType string, data map[string]interface{})
}

// DefaultEventHandler provides a basic logging implementation of EventHandler.
type DefaultEventHandler struct{}

func (h *DefaultEventHandler) OnConnected()    { log.Printf("connected to coordinator") }
func (h *DefaultEventHandler) OnDisconnected() { log.Printf("disconnected from coordinator") }
func (h *DefaultEventHandler) OnAuthResult(success bool, connectionID string) {
	log.Printf("auth result: success=%v connection=%s", success, connectionID)
}
func (h *DefaultEventHandler) OnInit(map[string]interface{}) { log.Printf("received init snapshot") }
func (h *DefaultEventHandler) OnBuzzer(studio string, active bool) {
	log.Printf("buzzer studio=%s active=%v", studio, active)
}
func (h *DefaultEventHandler) OnChatMessage(studio, sender, content string) {
	log.Printf("[%s] %s: %s", studio, sender, content)
}
func (h *DefaultEventHandler) OnChatCleared(studio string) { log.Printf("chat cleared: %s", studio) }
func (h *DefaultEventHandler) OnTimerUpdate(studio string, minutes, seconds int, running, dangerZone bool) {
	log.Printf("timer %s %02d:%02d running=%v danger=%v", studio, minutes, seconds, running, dangerZone)
}
func (h *DefaultEventHandler) OnCallLineUpdate(map[string]interface{}) { log.Printf("call line update") }
func (h *DefaultEventHandler) OnPlaybackUpdate(map[string]interface{}) { log.Printf("playback update") }
func (h *DefaultEventHandler) OnServerEvent(eventType string, _ map[string]interface{}) {
	log.Printf("event: %s", eventType)
}

// ConsoleClient is a connection to the coordinator acting as one console.
type ConsoleClient struct {
	conn      *websocket.Conn
	clientID  string
	config    Config
	connected bool
	handler   EventHandler
}

func NewConsoleClient(config Config) *ConsoleClient {
	if config.UserAgent == "" {
		config.UserAgent = "qaudio-console/1.0"
	}
	return &ConsoleClient{
		clientID: uuid.New().String(),
		config:   config,
		handler:  &DefaultEventHandler{},
	}
}

// SetEventHandler sets a custom event handler.
func (c *ConsoleClient) SetEventHandler(handler EventHandler) {
	c.handler = handler
}

func (c *ConsoleClient) ClientID() string { return c.clientID }

func (c *ConsoleClient) IsConnected() bool { return c.connected }

// Connect establishes the WebSocket connection to the coordinator.
func (c *ConsoleClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.config.ServerURL, &websocket.DialOptions{
		HTTPHeader: buildDialHeaders(ctx, c.config.UserAgent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to coordinator: %w", err)
	}

	c.conn = conn
	c.connected = true
	c.handler.OnConnected()
	return nil
}

// Disconnect closes the WebSocket connection.
func (c *ConsoleClient) Disconnect() error {
	if c.conn != nil {
		c.connected = false
		err := c.conn.Close(websocket.StatusNormalClosure, "client disconnect")
		c.handler.OnDisconnected()
		return err
	}
	return nil
}

// Register announces the console's role and studio affiliation. The
// coordinator treats a repeated announcement as a re-registration.
func (c *ConsoleClient) Register(ctx context.Context) error {
	ev := protocol.Event{
		Type:              protocol.TypeRole,
		Role:              c.config.Role,
		Studio:            c.config.Studio,
		AdditionalStudios: c.config.AdditionalStudios,
		Timestamp:         time.Now(),
	}
	if err := c.sendEvent(ctx, &ev); err != nil {
		return fmt.Errorf("failed to register role: %w", err)
	}
	return nil
}

// Buzz activates or clears the buzzer for a studio. The event direction
// follows the console's role: producers send producerBuzzer, everyone else
// sends talentBuzzer.
func (c *ConsoleClient) Buzz(ctx context.Context, studio string, activate bool) error {
	eventType := protocol.TypeTalentBuzzer
	if c.config.Role == "producer" {
		eventType = protocol.TypeProducerBuzzer
	}
	ev := protocol.Event{
		Type:      eventType,
		Studio:    studio,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"activate": activate},
	}
	if err := c.sendEvent(ctx, &ev); err != nil {
		return fmt.Errorf("failed to send buzzer: %w", err)
	}
	return nil
}

// SendChat posts a chat message to the console's studio.
func (c *ConsoleClient) SendChat(ctx context.Context, content string) error {
	ev := protocol.Event{
		Type:      protocol.TypeChat,
		Studio:    c.config.Studio,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"sender":  c.config.DisplayName,
			"content": content,
		},
	}
	if err := c.sendEvent(ctx, &ev); err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}
	return nil
}

// UpdateTimer pushes a countdown update. Only producer consoles are honored
// by the coordinator.
func (c *ConsoleClient) UpdateTimer(ctx context.Context, studio string, minutes, seconds int, running bool) error {
	ev := protocol.Event{
		Type:      protocol.TypeCountdownUpdate,
		Studio:    studio,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"minutes":   minutes,
			"seconds":   seconds,
			"isRunning": running,
		},
	}
	if err := c.sendEvent(ctx, &ev); err != nil {
		return fmt.Errorf("failed to send timer update: %w", err)
	}
	return nil
}

// SendSignal relays an opaque WebRTC negotiation payload.
func (c *ConsoleClient) SendSignal(ctx context.Context, kind, to string, payload map[string]interface{}) error {
	ev := protocol.Event{
		Type:      kind,
		From:      c.config.Role,
		To:        to,
		Timestamp: time.Now(),
		Data:      payload,
	}
	if err := c.sendEvent(ctx, &ev); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}
	return nil
}

// Ping sends an application-level ping; the coordinator answers with pong
// and refreshes the connection's activity clock.
func (c *ConsoleClient) Ping(ctx context.Context) error {
	return c.sendEvent(ctx, &protocol.Event{Type: protocol.TypePing, Timestamp: time.Now()})
}

// Listen processes coordinator events until the context ends or the
// connection drops (blocking).
func (c *ConsoleClient) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			var ev protocol.Event
			if err := wsjson.Read(ctx, c.conn, &ev); err != nil {
				c.connected = false
				return fmt.Errorf("read error: %w", err)
			}
			c.handleServerEvent(&ev)
		}
	}
}

func (c *ConsoleClient) sendEvent(ctx context.Context, ev *protocol.Event) error {
	if !c.connected {
		return fmt.Errorf("client not connected")
	}
	return wsjson.Write(ctx, c.conn, ev)
}

func (c *ConsoleClient) handleServerEvent(ev *protocol.Event) {
	switch ev.Type {
	case protocol.TypeAuthSuccess:
		id, _ := ev.DataString("connectionId")
		c.handler.OnAuthResult(true, id)
	case protocol.TypeAuthFailure:
		c.handler.OnAuthResult(false, "")
	case protocol.TypeInit:
		c.handler.OnInit(ev.Data)
	case protocol.TypeTalentBuzzer, protocol.TypeProducerBuzzer:
		active, ok := ev.DataBool("isActive")
		if !ok {
			active = true
		}
		c.handler.OnBuzzer(ev.Studio, active)
	case protocol.TypeNewChatMessage:
		sender, _ := ev.DataString("sender")
		content, _ := ev.DataString("content")
		c.handler.OnChatMessage(ev.Studio, sender, content)
	case protocol.TypeClearChat:
		c.handler.OnChatCleared(ev.Studio)
	case protocol.TypeCountdownUpdate:
		minutes, _ := ev.DataInt("minutes")
		seconds, _ := ev.DataInt("seconds")
		running, _ := ev.DataBool("isRunning")
		danger, _ := ev.DataBool("isDangerZone")
		c.handler.OnTimerUpdate(ev.Studio, minutes, seconds, running, danger)
	case protocol.TypeCallLineUpdate:
		c.handler.OnCallLineUpdate(ev.Data)
	case protocol.TypePlaybackUpdate:
		c.handler.OnPlaybackUpdate(ev.Data)
	case protocol.TypePong:
		// activity refresh only
	default:
		c.handler.OnServerEvent(ev.Type, ev.Data)
	}
}
