package main

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

// TimerHub is the dedicated per-studio timer transport. It is a stateless
// publisher: every frame it sends is the snapshot stored in the TimerBank,
// so a console on this channel and one on the main socket always agree.
type TimerHub struct {
	mu   sync.Mutex
	subs map[types.Studio]map[chan []byte]struct{}
	log  *zap.Logger
}

func NewTimerHub(log *zap.Logger) *TimerHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &TimerHub{
		subs: make(map[types.Studio]map[chan []byte]struct{}),
		log:  log,
	}
}

func (h *TimerHub) Subscribe(studio types.Studio) chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	if h.subs[studio] == nil {
		h.subs[studio] = make(map[chan []byte]struct{})
	}
	h.subs[studio][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *TimerHub) Unsubscribe(studio types.Studio, ch chan []byte) {
	h.mu.Lock()
	if set, ok := h.subs[studio]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
	}
	h.mu.Unlock()
}

// Publish fans the snapshot out to the studio's subscribers. A slow
// subscriber is skipped, not waited on.
func (h *TimerHub) Publish(st types.TimerState) {
	payload, err := protocol.Encode(timerEvent(st))
	if err != nil {
		h.log.Warn("timer snapshot not encodable", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[st.Studio] {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (h *TimerHub) subscriberCount(studio types.Studio) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[studio])
}

// handleTimerSocket serves the dedicated timer channel. The client receives
// the current snapshot immediately, then every update until it disconnects.
func (s *Server) handleTimerSocket(c *gin.Context) {
	studio := types.Studio(c.Param("studio"))
	snapshot, err := s.timers.Snapshot(studio)
	if err != nil {
		c.JSON(404, gin.H{"error": "unknown studio"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("timer socket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := s.timerHub.Subscribe(studio)
	defer s.timerHub.Unsubscribe(studio, ch)

	// CloseRead cancels the context when the peer goes away; this channel
	// is outbound-only.
	ctx := conn.CloseRead(c.Request.Context())

	if payload, err := protocol.Encode(timerEvent(snapshot)); err == nil {
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
