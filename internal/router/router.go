// Package router decides which live connections receive an inbound event.
// Delivery is fire-and-forget over already-open sockets: a full buffer or a
// closed connection is skipped and never aborts the rest of the fan-out.
package router

import (
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/state"
	"github.com/X-CodesTech/qAudio-sub000/internal/types"
	"github.com/X-CodesTech/qAudio-sub000/pkg/protocol"
)

type Router struct {
	registry *state.Registry
	log      *zap.Logger
}

func New(registry *state.Registry, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{registry: registry, log: log}
}

// Route fans the event out to its audience and returns the number of
// connections the payload was enqueued to. Rules are evaluated in
// precedence order; the first matching rule selects the audience.
func (r *Router) Route(ev *protocol.Event) int {
	payload, err := protocol.Encode(ev)
	if err != nil {
		r.log.Warn("dropping unencodable event", zap.String("type", ev.Type), zap.Error(err))
		return 0
	}

	recipients := r.registry.Find(r.audience(ev))

	delivered := 0
	for _, conn := range recipients {
		if conn.Enqueue(payload) {
			delivered++
		} else {
			r.log.Debug("skipped slow or closed connection",
				zap.String("connection", conn.ID),
				zap.String("type", ev.Type))
		}
	}
	return delivered
}

func (r *Router) audience(ev *protocol.Event) func(*types.Connection) bool {
	studio := types.Studio(ev.Studio)

	switch ev.Type {
	case protocol.TypeTalentBuzzer:
		// Producers always see buzzer traffic for UI feedback; talents only
		// when the target studio is theirs.
		return func(c *types.Connection) bool {
			if c.Role == types.RoleProducer {
				return true
			}
			return c.Role == types.RoleTalent && c.InStudio(studio)
		}

	case protocol.TypeProducerBuzzer:
		return func(c *types.Connection) bool {
			if c.Role == types.RoleProducer {
				return true
			}
			return c.Role == types.RoleTalent && c.InStudio(studio)
		}

	case protocol.TypeChat, protocol.TypeNewChatMessage, protocol.TypeClearChat:
		// Connections with no studio assignment receive everything. This is
		// a permissive fallback, not a security boundary.
		return func(c *types.Connection) bool {
			return c.InStudio(studio) || c.Unscoped()
		}

	case protocol.TypeCountdownUpdate:
		return func(c *types.Connection) bool {
			return c.InStudio(studio) || c.Role == types.RoleProducer
		}

	default:
		return func(*types.Connection) bool { return true }
	}
}

// Send delivers an event to a single connection, same best-effort semantics
// as Route. Used for direct replies (pong, init, auth results).
func (r *Router) Send(conn *types.Connection, ev *protocol.Event) bool {
	payload, err := protocol.Encode(ev)
	if err != nil {
		r.log.Warn("dropping unencodable event", zap.String("type", ev.Type), zap.Error(err))
		return false
	}
	return conn.Enqueue(payload)
}
