package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

// handleWebSocket upgrades a console connection and runs its read loop until
// the socket closes. Cleanup goes through the normal unregister path whether
// the close came from the client, a write error, or the monitor.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.New().String()
	wc := types.NewConnection(id)
	wc.Conn = conn
	s.registry.Register(wc)
	s.log.Info("console connected", zap.String("connection", id))

	go s.writePump(wc)

	defer func() {
		s.registry.Unregister(id)
		wc.Close()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.log.Info("console disconnected",
			zap.String("connection", id),
			zap.String("role", string(wc.Role)))
	}()

	s.sendInit(wc)
	s.readPump(c.Request.Context(), wc)
}

func (s *Server) readPump(ctx context.Context, wc *types.Connection) {
	for {
		msgType, data, err := wc.Conn.Read(ctx)
		if err != nil {
			s.log.Debug("websocket read ended",
				zap.String("connection", wc.ID), zap.Error(err))
			return
		}
		wc.Touch()

		if msgType != websocket.MessageText {
			continue
		}

		var ev protocol.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Warn("dropping malformed event",
				zap.String("connection", wc.ID), zap.Error(err))
			continue
		}
		s.handleEvent(wc, &ev)
	}
}

func (s *Server) writePump(wc *types.Connection) {
	for payload := range wc.Outbox() {
		ctx, cancel := context.WithTimeout(context.Background(), PingWriteTimeout)
		err := wc.Conn.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			s.log.Debug("websocket write failed",
				zap.String("connection", wc.ID), zap.Error(err))
			return
		}
	}
}

// sendInit pushes the full coordinator snapshot so a fresh or reconnecting
// console converges without polling.
func (s *Server) sendInit(wc *types.Connection) {
	s.dispatch.Send(wc, &protocol.Event{
		Type: protocol.TypeInit,
		Data: map[string]interface{}{
			"connectionId": wc.ID,
			"timers":       s.timers.All(),
			"callLines":    s.callLines.All(),
			"serverTime":   time.Now(),
		},
	})
}
