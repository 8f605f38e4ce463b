package main

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

// monitorLoop is the periodic liveness sweep. A connection idle past the
// staleness threshold gets one protocol ping with a short grace window; a
// connection that shows no life is forcibly closed, which unwinds through
// the normal read-loop cleanup and unregisters it.
func (s *Server) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(s.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Server) sweep(ctx context.Context) {
	for _, conn := range s.registry.All() {
		if time.Since(conn.LastActivity()) < s.staleAfter {
			continue
		}
		go s.probe(ctx, conn)
	}
}

func (s *Server) probe(ctx context.Context, conn *types.Connection) {
	if conn.Conn == nil || conn.Closed() {
		return
	}

	s.log.Info("pinging stale connection",
		zap.String("connection", conn.ID),
		zap.Time("last_activity", conn.LastActivity()))

	// Ping blocks until the pong arrives or the grace window expires.
	pctx, cancel := context.WithTimeout(ctx, s.pongGrace)
	defer cancel()
	if err := conn.Conn.Ping(pctx); err != nil {
		s.log.Info("terminating stale connection",
			zap.String("connection", conn.ID), zap.Error(err))
		_ = conn.Conn.Close(websocket.StatusPolicyViolation, "stale connection")
		return
	}

	conn.Touch()
}
