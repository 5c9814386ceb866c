package chat

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"socialhub/internal/app/user"
	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/metrics"
)

// ConnID identifies one live transport session.
type ConnID string

// Conn is the transport side of a connection. Send must not block.
type Conn interface {
	Send(frame []byte) error
	Close() error
}

var (
	ErrAlreadyRegistered = errors.New("connection already registered")
	ErrNotRegistered     = errors.New("connection not registered")
)

// Connection is a snapshot of a registered connection.
type Connection struct {
	ID       ConnID
	Identity user.Identity
	Rooms    []RoomID
}

type registryEntry struct {
	conn     Conn
	identity user.Identity
	rooms    map[RoomID]struct{}
}

// Registry maps live connections to identities and back.
// byID and byUser always describe the same set of connections.
type Registry struct {
	mu     sync.RWMutex
	byID   map[ConnID]*registryEntry
	byUser map[int64]map[ConnID]struct{}
	logger zerolog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[ConnID]*registryEntry),
		byUser: make(map[int64]map[ConnID]struct{}),
		logger: logx.WithComponent("registry"),
	}
}

// Register inserts the connection under both views. first reports whether this is
// the user's only connection, i.e. the user just came online.
func (r *Registry) Register(id ConnID, conn Conn, identity user.Identity) (first bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		r.logger.Error().
			Str("conn_id", string(id)).
			Int64("user_id", identity.UserID).
			Msg("Duplicate connection registration.")
		return false, ErrAlreadyRegistered
	}

	r.byID[id] = &registryEntry{
		conn:     conn,
		identity: identity,
		rooms:    make(map[RoomID]struct{}),
	}

	conns, ok := r.byUser[identity.UserID]
	if !ok {
		conns = make(map[ConnID]struct{})
		r.byUser[identity.UserID] = conns
	}
	conns[id] = struct{}{}

	r.updateGauges()
	return len(conns) == 1, nil
}

// Remove deletes the connection from both views and returns what was removed.
// last reports whether the owning user has no connections left.
func (r *Registry) Remove(id ConnID) (removed Connection, last bool, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byID[id]
	if !ok {
		return Connection{}, false, false
	}
	delete(r.byID, id)

	userID := entry.identity.UserID
	conns := r.byUser[userID]
	delete(conns, id)
	if len(conns) == 0 {
		delete(r.byUser, userID)
		last = true
	}

	removed = Connection{ID: id, Identity: entry.identity, Rooms: roomList(entry.rooms)}

	r.updateGauges()
	return removed, last, true
}

// Unregister removes the connection and reports whether it was the user's last one.
// Unknown ids are a no-op returning false.
func (r *Registry) Unregister(id ConnID) bool {
	_, last, _ := r.Remove(id)
	return last
}

// IsOnline reports whether the user has at least one registered connection.
func (r *Registry) IsOnline(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser[userID]) > 0
}

// ConnectionsFor returns a snapshot of the user's connection ids.
func (r *Registry) ConnectionsFor(userID int64) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ConnID, 0, len(r.byUser[userID]))
	for id := range r.byUser[userID] {
		ids = append(ids, id)
	}
	return ids
}

// Lookup resolves the identity owning a connection.
func (r *Registry) Lookup(id ConnID) (user.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byID[id]
	if !ok {
		return user.Identity{}, false
	}
	return entry.identity, true
}

// OnlineUsers returns the ids of every user with a live connection.
func (r *Registry) OnlineUsers() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.byUser))
	for userID := range r.byUser {
		ids = append(ids, userID)
	}
	return ids
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

func (r *Registry) conn(id ConnID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

func (r *Registry) transports() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.byID))
	for _, entry := range r.byID {
		conns = append(conns, entry.conn)
	}
	return conns
}

// attachRoom records room on the connection and returns its transport.
func (r *Registry) attachRoom(id ConnID, room RoomID) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	entry.rooms[room] = struct{}{}
	return entry.conn, true
}

func (r *Registry) detachRoom(id ConnID, room RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.byID[id]; ok {
		delete(entry.rooms, room)
	}
}

// updateGauges must be called with mu held.
func (r *Registry) updateGauges() {
	metrics.ConnectionsActive.Set(float64(len(r.byID)))
	metrics.OnlineUsers.Set(float64(len(r.byUser)))
}

func roomList(rooms map[RoomID]struct{}) []RoomID {
	list := make([]RoomID, 0, len(rooms))
	for room := range rooms {
		list = append(list, room)
	}
	return list
}
