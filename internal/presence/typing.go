package presence

import "sort"

// Marker says that a user is typing in a conversation.
// It carries no expiry: clients re-assert typing and send an explicit stop.
type Marker struct {
	UserID         string
	Username       string
	ConversationID string
}

type markerKey struct {
	userID         string
	conversationID string
}

// TypingTracker holds the typing markers keyed by (user, conversation).
type TypingTracker struct {
	markers map[markerKey]Marker
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{markers: make(map[markerKey]Marker)}
}

// Start inserts or overwrites the marker of (userID, conversationID).
func (t *TypingTracker) Start(userID, username, conversationID string) Marker {
	m := Marker{UserID: userID, Username: username, ConversationID: conversationID}
	t.markers[markerKey{userID, conversationID}] = m
	return m
}

// Stop removes the marker and reports whether one existed. A second Stop returns false.
func (t *TypingTracker) Stop(userID, conversationID string) (Marker, bool) {
	key := markerKey{userID, conversationID}
	m, ok := t.markers[key]
	if !ok {
		return Marker{}, false
	}
	delete(t.markers, key)
	return m, true
}

// SweepForUser removes every marker of userID and returns them ordered by conversation.
func (t *TypingTracker) SweepForUser(userID string) []Marker {
	var swept []Marker
	for key, m := range t.markers {
		if key.userID == userID {
			swept = append(swept, m)
			delete(t.markers, key)
		}
	}
	sort.Slice(swept, func(i, j int) bool {
		return swept[i].ConversationID < swept[j].ConversationID
	})
	return swept
}

func (t *TypingTracker) isTyping(userID, conversationID string) bool {
	_, ok := t.markers[markerKey{userID, conversationID}]
	return ok
}

// Typists lists the users typing in conversationID, ordered by username.
func (t *TypingTracker) Typists(conversationID string) []Marker {
	var out []Marker
	for _, m := range t.markers {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (t *TypingTracker) Len() int {
	return len(t.markers)
}
