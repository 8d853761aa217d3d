package hub

import "sync"

// Observer is informed after every registry mutation. It must not call back
// into the registry.
type Observer interface {
	PresenceChanged(users, connections int)
}

// Registry maps a user identity to the set of its live connection ids.
// It is created once per server and shared by the gateway and the dispatcher.
type Registry struct {
	users    map[string]map[string]struct{}
	owners   map[string]string // connection id -> user id
	mu       sync.RWMutex
	observer Observer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// SetObserver installs an observer. Call before the registry is shared.
func (r *Registry) SetObserver(o Observer) {
	r.observer = o
}

// Register adds connID to the set for userID. Registering the same pair twice
// has no further effect. A connection id owned by another user is moved so it
// never appears in two entries.
func (r *Registry) Register(userID, connID string) {
	mustIdentify(userID, connID)

	r.mu.Lock()
	if owner, ok := r.owners[connID]; ok && owner != userID {
		r.removeLocked(owner, connID)
	}
	conns, ok := r.users[userID]
	if !ok {
		conns = make(map[string]struct{})
		r.users[userID] = conns
	}
	conns[connID] = struct{}{}
	r.owners[connID] = userID
	users, total := len(r.users), len(r.owners)
	r.mu.Unlock()

	r.notify(users, total)
}

// Unregister removes connID from userID's set, dropping the entry once it is
// empty. Unknown pairs are ignored.
func (r *Registry) Unregister(userID, connID string) {
	mustIdentify(userID, connID)

	r.mu.Lock()
	removed := r.removeLocked(userID, connID)
	users, total := len(r.users), len(r.owners)
	r.mu.Unlock()

	if removed {
		r.notify(users, total)
	}
}

// ListConnections returns a snapshot of userID's connection ids. The result is
// empty, never nil-erroring, when the user has no open connections.
func (r *Registry) ListConnections(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.users[userID]
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	return ids
}

// IsOnline reports whether userID has at least one live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// Len returns the number of users with a presence entry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// ConnectionCount returns the number of registered connections across all users.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

func (r *Registry) removeLocked(userID, connID string) bool {
	conns, ok := r.users[userID]
	if !ok {
		return false
	}
	if _, ok := conns[connID]; !ok {
		return false
	}
	delete(conns, connID)
	if r.owners[connID] == userID {
		delete(r.owners, connID)
	}
	if len(conns) == 0 {
		delete(r.users, userID)
	}
	return true
}

func (r *Registry) notify(users, connections int) {
	if r.observer != nil {
		r.observer.PresenceChanged(users, connections)
	}
}

func mustIdentify(userID, connID string) {
	if userID == "" {
		panic("hub: empty user id")
	}
	if connID == "" {
		panic("hub: empty connection id")
	}
}
