package realtime

import "sync"

// ConnectionRegistry owns the live mapping from user id to that user's open
// connections. A user id key exists only while its set is non-empty; the
// empty transition is the signal that the user went offline. The registry
// performs no I/O of its own.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[uint]map[Conn]struct{}
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns: make(map[uint]map[Conn]struct{}),
	}
}

// Connect registers conn under userID and reports whether this took the user
// from zero to one connections.
func (r *ConnectionRegistry) Connect(userID uint, conn Conn) (wasOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		r.conns[userID] = set
	}
	wasOffline = len(set) == 0
	set[conn] = struct{}{}
	return wasOffline
}

// Disconnect removes conn from userID's set and reports whether that was the
// user's last connection. Disconnecting an absent (userID, conn) pair is a
// no-op.
func (r *ConnectionRegistry) Disconnect(userID uint, conn Conn) (becameOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[userID]
	if !ok {
		return false
	}
	if _, ok := set[conn]; !ok {
		return false
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.conns, userID)
		return true
	}
	return false
}

func (r *ConnectionRegistry) IsOnline(userID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// ConnectionsFor returns a snapshot copy; delivery iterates it while the
// underlying set may mutate concurrently.
func (r *ConnectionRegistry) ConnectionsFor(userID uint) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[userID]
	if len(set) == 0 {
		return nil
	}
	snapshot := make([]Conn, 0, len(set))
	for conn := range set {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// CloseAll closes every live connection and empties the registry. Used on
// shutdown; no presence events fire from this path.
func (r *ConnectionRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, set := range r.conns {
		for conn := range set {
			_ = conn.Close()
		}
		delete(r.conns, userID)
	}
}
