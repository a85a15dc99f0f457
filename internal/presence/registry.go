package presence

import "sync"

// Conn is a live client connection the registry can route events to.
// Send must not block; it reports whether the event was queued.
type Conn interface {
	ID() string
	Send(data []byte) bool
}

// Registry maps online users to their live connection. It is volatile
// routing state only: it is never consulted for the correctness of persisted
// data, just for the opportunity to push. Constructed at server start and
// injected wherever presence is needed.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint]Conn)}
}

// Register binds a user to a connection. A later registration for the same
// user wins the routing slot; the superseded connection stays open and is
// simply no longer routed to.
func (r *Registry) Register(userID uint, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = c
}

// Unregister removes every slot still held by this exact connection. A stale
// disconnect cannot evict a newer registration for the same user.
func (r *Registry) Unregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, held := range r.conns {
		if held.ID() == c.ID() {
			delete(r.conns, userID)
		}
	}
}

// Resolve returns the connection currently registered for the user, if any.
func (r *Registry) Resolve(userID uint) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// Online returns the IDs of every currently registered user.
func (r *Registry) Online() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.conns))
	for userID := range r.conns {
		ids = append(ids, userID)
	}
	return ids
}
