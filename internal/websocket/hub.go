package websocket

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"teamchat-service/internal/conversation"
	"teamchat-service/internal/metrics"
)

var ErrConnectionNotFound = errors.New("connection not found")

// Sink is the hub's view of one connection.
type Sink interface {
	ID() string
	// Deliver enqueues a frame without blocking. It returns false when the
	// frame could not be queued.
	Deliver(frame []byte) bool
	Close()
	Closed() bool
}

// Router decides which connections receive an event.
// Every Broadcast* call returns the number of connections the frame was queued to.
type Router interface {
	Register(s Sink)
	Unregister(connectionID string)
	Join(connectionID string, room conversation.RoomID) bool
	Leave(connectionID string, room conversation.RoomID)
	Broadcast(room conversation.RoomID, event string, payload any) (int, error)
	BroadcastExcept(room conversation.RoomID, event string, payload any, excludeConnectionID string) (int, error)
	BroadcastAll(event string, payload any) (int, error)
	SendTo(connectionID string, event string, payload any) error
	// Connections counts the registered connections.
	Connections() int
}

// Hub is the in-process Router. Membership changes and fan-out hold the same
// lock, so a broadcast never observes a half-applied join or leave.
type Hub struct {
	mu          sync.Mutex
	sinks       map[string]Sink
	rooms       map[conversation.RoomID]map[string]Sink
	memberships map[string]map[conversation.RoomID]struct{}
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

var _ Router = (*Hub)(nil)

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		sinks:       make(map[string]Sink),
		rooms:       make(map[conversation.RoomID]map[string]Sink),
		memberships: make(map[string]map[conversation.RoomID]struct{}),
		logger:      logger,
		metrics:     m,
	}
}

func (h *Hub) Register(s Sink) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sinks[s.ID()] = s
	if _, ok := h.memberships[s.ID()]; !ok {
		h.memberships[s.ID()] = make(map[conversation.RoomID]struct{})
	}
}

// Unregister drops the connection and every room membership it held.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.memberships[connectionID] {
		h.removeMember(room, connectionID)
	}
	delete(h.memberships, connectionID)
	delete(h.sinks, connectionID)
}

// Join is idempotent. It returns false for an unknown connection.
func (h *Hub) Join(connectionID string, room conversation.RoomID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sinks[connectionID]
	if !ok {
		return false
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]Sink)
		h.rooms[room] = members
	}
	members[connectionID] = s
	h.memberships[connectionID][room] = struct{}{}
	return true
}

// Leave is idempotent.
func (h *Hub) Leave(connectionID string, room conversation.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeMember(room, connectionID)
	if rooms, ok := h.memberships[connectionID]; ok {
		delete(rooms, room)
	}
}

func (h *Hub) removeMember(room conversation.RoomID, connectionID string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// roomsOf lists the rooms a connection has joined.
func (h *Hub) roomsOf(connectionID string) []conversation.RoomID {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms := make([]conversation.RoomID, 0, len(h.memberships[connectionID]))
	for room := range h.memberships[connectionID] {
		rooms = append(rooms, room)
	}
	return rooms
}

// memberCount counts the connections in a room.
func (h *Hub) memberCount(room conversation.RoomID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sinks)
}

func (h *Hub) Broadcast(room conversation.RoomID, event string, payload any) (int, error) {
	return h.BroadcastExcept(room, event, payload, "")
}

// BroadcastExcept skips excludeConnectionID. A room with no members is not an error.
func (h *Hub) BroadcastExcept(room conversation.RoomID, event string, payload any, excludeConnectionID string) (int, error) {
	frame, err := Encode(event, payload)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.fanOut(event, h.rooms[room], frame, excludeConnectionID), nil
}

// BroadcastAll sends to every registered connection, joined to a room or not.
func (h *Hub) BroadcastAll(event string, payload any) (int, error) {
	frame, err := Encode(event, payload)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.fanOut(event, h.sinks, frame, ""), nil
}

func (h *Hub) SendTo(connectionID string, event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sinks[connectionID]
	if !ok {
		return ErrConnectionNotFound
	}
	h.fanOut(event, map[string]Sink{connectionID: s}, frame, "")
	return nil
}

// fanOut must be called with h.mu held. A connection that cannot take the
// frame is a slow consumer and gets closed; its read pump then runs the
// normal disconnect path.
func (h *Hub) fanOut(event string, targets map[string]Sink, frame []byte, exclude string) int {
	delivered, dropped := 0, 0
	for id, s := range targets {
		if id == exclude {
			continue
		}
		if s.Deliver(frame) {
			delivered++
			continue
		}
		dropped++
		if !s.Closed() {
			h.logger.Warn("Closing slow connection",
				zap.String("connectionId", id),
				zap.String("event", event))
			s.Close()
		}
	}
	h.metrics.RecordBroadcast(event, delivered, dropped)
	return delivered
}
