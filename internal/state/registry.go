package state

import (
	"sync"

	"github.com/X-CodesTech/qAudio-sub000/internal/types"
)

// Registry owns every live connection. Other components only borrow
// transient references through Find; nothing else retains a connection.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*types.Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*types.Connection)}
}

func (r *Registry) Register(conn *types.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = conn
}

// Unregister removes a connection from the registry. Calling it again for
// the same id is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Get(id string) (*types.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// SetIdentity records the role and studio affiliation announced by the
// connection's identifying message. A later call overwrites the earlier
// identity: reconnecting consoles re-announce themselves and the last
// registration wins.
func (r *Registry) SetIdentity(id string, role types.Role, studio types.Studio, additional []types.Studio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return ErrConnectionNotFound
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	if studio != "" && !studio.Valid() {
		return ErrUnknownStudio
	}

	conn.Role = role
	conn.Studio = studio
	conn.Additional = make(map[types.Studio]struct{}, len(additional))
	for _, s := range additional {
		if s.Valid() {
			conn.Additional[s] = struct{}{}
		}
	}
	return nil
}

// Find returns the currently-open connections matching the predicate.
// Closed connections still awaiting cleanup are skipped.
func (r *Registry) Find(match func(*types.Connection) bool) []*types.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*types.Connection
	for _, conn := range r.conns {
		if conn.Closed() {
			continue
		}
		if match(conn) {
			out = append(out, conn)
		}
	}
	return out
}

// All returns every open connection.
func (r *Registry) All() []*types.Connection {
	return r.Find(func(*types.Connection) bool { return true })
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CountByRole tallies open connections per role for the stats endpoint.
func (r *Registry) CountByRole() map[types.Role]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.Role]int)
	for _, conn := range r.conns {
		if conn.Closed() || conn.Role == "" {
			continue
		}
		out[conn.Role]++
	}
	return out
}
