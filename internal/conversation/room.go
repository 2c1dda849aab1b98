package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// RoomKind is the namespace of a room.
type RoomKind uint8

const (
	RoomWorkspace RoomKind = iota + 1
	RoomChannel
	RoomUser
)

var ErrInvalidRoomID = errors.New("invalid room id")

func (k RoomKind) String() string {
	switch k {
	case RoomWorkspace:
		return "workspace"
	case RoomChannel:
		return "channel"
	case RoomUser:
		return "user"
	default:
		return "unknown"
	}
}

// RoomID names a publish/subscribe group. The kind keeps ids of different
// namespaces apart even when the raw ids are equal.
// DM rooms are channel rooms whose id is a DMID.
type RoomID struct {
	kind RoomKind
	id   string
}

func Workspace(id string) RoomID { return RoomID{kind: RoomWorkspace, id: id} }

// Channel also addresses DM conversations (pass the DMID).
func Channel(id string) RoomID { return RoomID{kind: RoomChannel, id: id} }

func User(id string) RoomID { return RoomID{kind: RoomUser, id: id} }

func (r RoomID) Kind() RoomKind { return r.kind }

func (r RoomID) ID() string { return r.id }

func (r RoomID) IsZero() bool { return r.kind == 0 && r.id == "" }

// String renders the room as "<kind>:<id>", e.g. "channel:dm-a-b".
func (r RoomID) String() string {
	return r.kind.String() + ":" + r.id
}

// parseRoomID is the inverse of String.
func parseRoomID(s string) (RoomID, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return RoomID{}, fmt.Errorf("%w: %q", ErrInvalidRoomID, s)
	}
	switch kind {
	case "workspace":
		return Workspace(id), nil
	case "channel":
		return Channel(id), nil
	case "user":
		return User(id), nil
	}
	return RoomID{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRoomID, kind)
}
