// Package presence holds the in-memory who-is-online state of the realtime layer.
//
// Registry and TypingTracker are plain state containers. They are not safe for
// concurrent use: their owner (the websocket controller) serializes every access.
package presence

import (
	"sort"
	"time"
)

type Status string

const (
	StatusOnline Status = "online"
	StatusAway   Status = "away"
	// StatusOffline is never stored; an offline user has no Session.
	StatusOffline Status = "offline"
)

// ParseStatus accepts the statuses a client may set for itself.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOnline, StatusAway:
		return Status(s), true
	}
	return "", false
}

// Session is the presence record of one authenticated connection.
// UserID and Username never change for the life of the connection.
type Session struct {
	UserID           string
	Username         string
	ConnectionID     string
	Status           Status
	LastSeen         time.Time
	CurrentWorkspace string
	CurrentChannel   string
}

// Registry maps a user id to at most one Session.
type Registry struct {
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Record creates or overwrites the Session of userID. A second connection of the
// same user replaces the first one's mapping.
func (r *Registry) Record(userID, username, connectionID string) Session {
	s := &Session{
		UserID:       userID,
		Username:     username,
		ConnectionID: connectionID,
		Status:       StatusOnline,
		LastSeen:     r.now(),
	}
	r.sessions[userID] = s
	return *s
}

// SetCurrentWorkspace is a no-op when the session is already gone.
func (r *Registry) SetCurrentWorkspace(userID, workspaceID string) bool {
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	s.CurrentWorkspace = workspaceID
	return true
}

// SetCurrentChannel is a no-op when the session is already gone.
func (r *Registry) SetCurrentChannel(userID, channelID string) bool {
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	s.CurrentChannel = channelID
	return true
}

// SetStatus updates status and lastSeen and returns the updated Session.
func (r *Registry) SetStatus(userID string, status Status) (Session, bool) {
	s, ok := r.sessions[userID]
	if !ok {
		return Session{}, false
	}
	s.Status = status
	s.LastSeen = r.now()
	return *s, true
}

// Remove deletes the Session of userID. Removing a missing session is not an error.
func (r *Registry) Remove(userID string) (Session, bool) {
	s, ok := r.sessions[userID]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, userID)
	s.LastSeen = r.now()
	return *s, true
}

// RemoveConnection deletes the Session of userID only while it still belongs
// to connectionID, so an older tab closing does not log out the newer one.
func (r *Registry) RemoveConnection(userID, connectionID string) (Session, bool) {
	s, ok := r.sessions[userID]
	if !ok || s.ConnectionID != connectionID {
		return Session{}, false
	}
	return r.Remove(userID)
}

func (r *Registry) Get(userID string) (Session, bool) {
	s, ok := r.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// ListOnline returns a snapshot of the online sessions whose current workspace is
// workspaceID, ordered by username then user id.
func (r *Registry) ListOnline(workspaceID string) []Session {
	out := make([]Session, 0)
	for _, s := range r.sessions {
		if s.CurrentWorkspace == workspaceID && s.Status == StatusOnline {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Len is the number of connected users.
func (r *Registry) Len() int {
	return len(r.sessions)
}
