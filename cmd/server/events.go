package main

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/state"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

// handleEvent classifies one inbound event and applies it. Failure modes
// degrade to log-and-drop; the sender never sees a routing error.
func (s *Server) handleEvent(conn *types.Connection, ev *protocol.Event) {
	switch ev.Type {
	case protocol.TypeRole, protocol.TypeAuth:
		s.handleIdentify(conn, ev)
	case protocol.TypeTalentBuzzer, protocol.TypeProducerBuzzer:
		s.handleBuzzer(conn, ev)
	case protocol.TypeChat:
		s.handleChat(conn, ev)
	case protocol.TypeClearChat:
		s.handleClearChat(conn, ev)
	case protocol.TypeCountdownUpdate:
		s.handleCountdown(conn, ev)
	case protocol.TypeCallLineStatus:
		s.handleCallLine(conn, ev)
	case protocol.TypePing:
		s.dispatch.Send(conn, &protocol.Event{Type: protocol.TypePong})
	default:
		if ev.IsSignaling() {
			s.signals.Append(types.SignalRecord{
				From:   ev.From,
				To:     ev.To,
				Signal: ev.Data,
				Status: types.SignalSignaling,
			})
		}
		// Unrecognized and playback/broadcast events fan out to everyone.
		s.dispatch.Route(ev)
	}
}

// handleIdentify records the connection's announced role and studios.
// Authentication is a stub by deployment policy: any valid role is accepted
// and answered with auth_success. A repeated announcement overwrites the
// previous identity.
func (s *Server) handleIdentify(conn *types.Connection, ev *protocol.Event) {
	role := ev.Role
	if role == "" {
		role, _ = ev.DataString("role")
	}

	additional := make([]types.Studio, 0, len(ev.AdditionalStudios))
	for _, st := range ev.AdditionalStudios {
		additional = append(additional, types.Studio(st))
	}

	err := s.registry.SetIdentity(conn.ID, types.Role(role), types.Studio(ev.Studio), additional)
	if err != nil {
		s.log.Warn("identity rejected",
			zap.String("connection", conn.ID),
			zap.String("role", role),
			zap.Error(err))
		s.dispatch.Send(conn, &protocol.Event{
			Type: protocol.TypeAuthFailure,
			Data: map[string]interface{}{"reason": err.Error()},
		})
		return
	}

	s.log.Info("console identified",
		zap.String("connection", conn.ID),
		zap.String("role", role),
		zap.String("studio", ev.Studio))

	s.dispatch.Send(conn, &protocol.Event{
		Type:   protocol.TypeAuthSuccess,
		Role:   role,
		Studio: ev.Studio,
		Data: map[string]interface{}{
			"connectionId": conn.ID,
			"chatHistory":  s.chat.History(types.Studio(ev.Studio)),
		},
	})
}

func (s *Server) handleBuzzer(conn *types.Connection, ev *protocol.Event) {
	studio := types.Studio(ev.Studio)
	if !studio.Valid() {
		s.log.Warn("buzzer event without a valid studio",
			zap.String("connection", conn.ID),
			zap.String("studio", ev.Studio))
		return
	}

	activate, ok := ev.DataBool("activate")
	if !ok {
		activate = true
	}

	var (
		st  types.BuzzerState
		err error
	)
	if activate {
		st, err = s.buzzers.Activate(studio)
	} else {
		st, err = s.buzzers.Deactivate(studio)
	}
	if err != nil {
		s.log.Warn("buzzer update ignored", zap.String("studio", ev.Studio), zap.Error(err))
		return
	}

	s.dispatch.Route(&protocol.Event{
		Type:   ev.Type,
		Studio: ev.Studio,
		From:   string(conn.Role),
		Data: map[string]interface{}{
			"isActive":    st.Active,
			"activatedAt": st.ActivatedAt,
		},
	})
}

func (s *Server) handleChat(conn *types.Connection, ev *protocol.Event) {
	content, ok := ev.DataString("content")
	if !ok {
		content, ok = ev.DataString("message")
	}
	if !ok || content == "" {
		s.log.Warn("chat event without content", zap.String("connection", conn.ID))
		return
	}

	sender, _ := ev.DataString("sender")
	if sender == "" {
		sender = conn.ID
	}

	msg := types.ChatMessage{
		ID:      uuid.New().String(),
		Studio:  types.Studio(ev.Studio),
		Sender:  sender,
		Role:    conn.Role,
		Content: content,
		SentAt:  time.Now(),
	}
	s.chat.Add(msg)
	// Durable persistence is fire-and-forget; routing does not wait on it.
	s.chatStore.Save(msg)

	s.dispatch.Route(&protocol.Event{
		Type:   protocol.TypeNewChatMessage,
		Studio: ev.Studio,
		Data: map[string]interface{}{
			"id":      msg.ID,
			"sender":  msg.Sender,
			"role":    string(msg.Role),
			"content": msg.Content,
			"sentAt":  msg.SentAt,
		},
	})
}

func (s *Server) handleClearChat(conn *types.Connection, ev *protocol.Event) {
	s.chat.Clear(types.Studio(ev.Studio))
	s.log.Info("chat cleared",
		zap.String("studio", ev.Studio),
		zap.String("by", string(conn.Role)))
	s.dispatch.Route(&protocol.Event{Type: protocol.TypeClearChat, Studio: ev.Studio})
}

// handleCountdown applies a producer timer update and publishes the stored
// snapshot over both transports. Both publishers read the same snapshot, so
// they cannot diverge.
func (s *Server) handleCountdown(conn *types.Connection, ev *protocol.Event) {
	if conn.Role != types.RoleProducer && conn.Role != types.RoleAdmin {
		s.log.Warn("countdown update from non-producer ignored",
			zap.String("connection", conn.ID),
			zap.String("role", string(conn.Role)))
		return
	}

	minutes, okMin := ev.DataInt("minutes")
	seconds, okSec := ev.DataInt("seconds")
	if !okMin || !okSec {
		s.log.Warn("countdown update missing minutes or seconds",
			zap.String("connection", conn.ID))
		return
	}
	running, _ := ev.DataBool("isRunning")

	st, err := s.applyTimerUpdate(types.Studio(ev.Studio), minutes, seconds, running)
	if err != nil {
		s.log.Warn("countdown update ignored", zap.String("studio", ev.Studio), zap.Error(err))
		return
	}
	_ = st
}

// applyTimerUpdate is the single entry point for timer mutations, shared by
// the WebSocket handler and the HTTP fallback.
func (s *Server) applyTimerUpdate(studio types.Studio, minutes, seconds int, running bool) (types.TimerState, error) {
	st, err := s.timers.Update(studio, minutes, seconds, running)
	if err != nil {
		return types.TimerState{}, err
	}

	s.dispatch.Route(timerEvent(st))
	s.timerHub.Publish(st)
	return st, nil
}

func timerEvent(st types.TimerState) *protocol.Event {
	return &protocol.Event{
		Type:   protocol.TypeCountdownUpdate,
		Studio: string(st.Studio),
		Data: map[string]interface{}{
			"minutes":      st.Minutes,
			"seconds":      st.Seconds,
			"isRunning":    st.Running,
			"isDangerZone": st.DangerZone,
			"lastUpdate":   st.LastUpdate,
		},
	}
}

func (s *Server) handleCallLine(conn *types.Connection, ev *protocol.Event) {
	id, ok := ev.DataInt("lineId")
	if !ok {
		id, ok = ev.DataInt("id")
	}
	if !ok {
		s.log.Warn("call line event without line id", zap.String("connection", conn.ID))
		return
	}

	upd := state.CallLineUpdate{}
	if v, ok := ev.DataString("status"); ok {
		status := types.CallLineStatus(v)
		upd.Status = &status
	}
	if v, ok := ev.DataString("phoneNumber"); ok {
		upd.PhoneNumber = &v
	}
	if v, ok := ev.DataString("contact"); ok {
		upd.Contact = &v
	}
	if v, ok := ev.DataString("notes"); ok {
		upd.Notes = &v
	}
	if v, ok := ev.DataInt("duration"); ok {
		upd.Duration = &v
	}
	if v, ok := ev.DataInt("inputLevel"); ok {
		upd.InputLevel = &v
	}
	if v, ok := ev.DataInt("outputLevel"); ok {
		upd.OutputLevel = &v
	}

	line, err := s.callLines.Apply(id, upd)
	if err != nil {
		s.log.Warn("call line update ignored", zap.Int("line", id), zap.Error(err))
		return
	}

	s.dispatch.Route(&protocol.Event{
		Type:   protocol.TypeCallLineUpdate,
		Studio: string(line.Studio),
		Data:   map[string]interface{}{"line": line},
	})
}
