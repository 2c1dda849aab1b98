// Package conversation derives the identifiers shared by the HTTP layer and the
// realtime layer: direct-message conversation ids and namespaced room ids.
package conversation

import (
	"strings"

	"github.com/google/uuid"
)

// DMPrefix marks a synthetic direct-message conversation id.
const DMPrefix = "dm-"

// DMID returns the canonical conversation id for a direct message between a and b.
// The two ids are ordered lexicographically, so DMID(a, b) == DMID(b, a).
//
// Every caller that addresses a DM (send, history, pins, room joins) must use this
// function; a differently derived id points at a room nobody listens on.
func DMID(a, b string) string {
	low, high := a, b
	if high < low {
		low, high = high, low
	}
	return DMPrefix + low + "-" + high
}

// IsDM reports whether id is a direct-message conversation id.
func IsDM(id string) bool {
	return strings.HasPrefix(id, DMPrefix)
}

// userIDLen is the length of a canonical UUID string. User ids are UUIDs, so a
// DM id splits at a fixed offset even though both halves contain hyphens.
const userIDLen = 36

// DMParticipants splits a DM id into its two user ids. It fails for anything
// that is not two canonical UUIDs joined by DMID.
func DMParticipants(id string) (low, high string, ok bool) {
	if !IsDM(id) {
		return "", "", false
	}
	rest := strings.TrimPrefix(id, DMPrefix)
	if len(rest) != 2*userIDLen+1 || rest[userIDLen] != '-' {
		return "", "", false
	}
	low, high = rest[:userIDLen], rest[userIDLen+1:]
	if !isUUID(low) || !isUUID(high) {
		return "", "", false
	}
	return low, high, true
}

// DMIncludes reports whether userID is one of the two participants of the DM id.
func DMIncludes(id, userID string) bool {
	low, high, ok := DMParticipants(id)
	if !ok {
		return false
	}
	return userID == low || userID == high
}

func isUUID(s string) bool {
	if len(s) != userIDLen {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
