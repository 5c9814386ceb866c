package chat

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"socialhub/internal/pkg/logx"
	"socialhub/internal/pkg/metrics"
)

// RoomID names a delivery group. Rooms exist only while they have members.
type RoomID string

// PersonalRoom returns the room holding every connection of userID.
func PersonalRoom(userID int64) RoomID {
	return RoomID(fmt.Sprintf("user:%d", userID))
}

// ChatRoom returns the pairwise chat room of a and b. The name does not depend on argument order.
func ChatRoom(a, b int64) RoomID {
	if a > b {
		a, b = b, a
	}
	return RoomID(fmt.Sprintf("chat:%d_%d", a, b))
}

// Router keeps room membership and performs group-scoped delivery.
// Membership is only granted to registered connections; each join is also recorded
// on the registry entry so disconnect can prune it.
type Router struct {
	mu       sync.RWMutex
	rooms    map[RoomID]map[ConnID]Conn
	registry *Registry
	logger   zerolog.Logger
}

// NewRouter returns a Router bound to registry.
func NewRouter(registry *Registry) *Router {
	return &Router{
		rooms:    make(map[RoomID]map[ConnID]Conn),
		registry: registry,
		logger:   logx.WithComponent("router"),
	}
}

// Join adds the connection to room. Joining twice is a no-op.
func (r *Router) Join(id ConnID, room RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.registry.attachRoom(id, room)
	if !ok {
		return ErrNotRegistered
	}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[ConnID]Conn)
		r.rooms[room] = members
	}
	members[id] = conn

	r.logger.Debug().Str("conn_id", string(id)).Str("room", string(room)).Msg("Connection joined room.")
	return nil
}

// Leave removes the connection from room. Leaving a room the connection is not in is a no-op.
func (r *Router) Leave(id ConnID, room RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeMember(id, room)
	r.registry.detachRoom(id, room)
}

// removeMember must be called with mu held.
func (r *Router) removeMember(id ConnID, room RoomID) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Emit delivers ev to every member of room and returns the number of successful deliveries.
// A member whose send fails is dropped from the room.
func (r *Router) Emit(room RoomID, ev Event) int {
	frame, err := ev.Encode()
	if err != nil {
		r.logger.Error().Err(err).Str("event", ev.Name).Msg("Failed to encode event.")
		return 0
	}

	r.mu.RLock()
	targets := make(map[ConnID]Conn, len(r.rooms[room]))
	for id, conn := range r.rooms[room] {
		targets[id] = conn
	}
	r.mu.RUnlock()

	delivered := 0
	for id, conn := range targets {
		if err := conn.Send(frame); err != nil {
			r.logger.Warn().Err(err).
				Str("conn_id", string(id)).
				Str("room", string(room)).
				Str("event", ev.Name).
				Msg("Delivery failed, dropping connection from room.")
			metrics.DeliveriesTotal.WithLabelValues(ev.Name, metrics.ResultDropped).Inc()
			r.Leave(id, room)
			continue
		}
		metrics.DeliveriesTotal.WithLabelValues(ev.Name, metrics.ResultDelivered).Inc()
		delivered++
	}

	return delivered
}

// EmitToConnection delivers ev to a single registered connection.
func (r *Router) EmitToConnection(id ConnID, ev Event) bool {
	conn, ok := r.registry.conn(id)
	if !ok {
		return false
	}
	return r.sendTo(conn, id, ev)
}

func (r *Router) sendTo(conn Conn, id ConnID, ev Event) bool {
	frame, err := ev.Encode()
	if err != nil {
		r.logger.Error().Err(err).Str("event", ev.Name).Msg("Failed to encode event.")
		return false
	}

	if err := conn.Send(frame); err != nil {
		r.logger.Warn().Err(err).Str("conn_id", string(id)).Str("event", ev.Name).Msg("Direct delivery failed.")
		metrics.DeliveriesTotal.WithLabelValues(ev.Name, metrics.ResultDropped).Inc()
		return false
	}
	metrics.DeliveriesTotal.WithLabelValues(ev.Name, metrics.ResultDelivered).Inc()
	return true
}

// Members returns a snapshot of room membership.
func (r *Router) Members(room RoomID) []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ConnID, 0, len(r.rooms[room]))
	for id := range r.rooms[room] {
		ids = append(ids, id)
	}
	return ids
}

// HasUserIn reports whether any connection of userID is a member of room.
func (r *Router) HasUserIn(room RoomID, userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := range r.rooms[room] {
		if identity, ok := r.registry.Lookup(id); ok && identity.UserID == userID {
			return true
		}
	}
	return false
}

// RoomCount returns the number of non-empty rooms.
func (r *Router) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
