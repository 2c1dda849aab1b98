package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"teamchat-service/internal/presence"
)

// Client to server events
const (
	EventAuthenticate  = "authenticate"
	EventJoinWorkspace = "join_workspace"
	EventJoinChannel   = "join_channel"
	EventLeaveChannel  = "leave_channel"
	EventNewMessage    = "new_message"
	EventTypingStart   = "typing_start"
	EventTypingStop    = "typing_stop"
	EventStatusChange  = "status_change"
)

// Server to client events
const (
	EventAuthenticated       = "authenticated"
	EventAuthenticationError = "authentication_error"
	EventWorkspacePresence   = "workspace_presence"
	EventPresenceUpdate      = "presence_update"
	EventMessageReceived     = "message_received"
	EventMessageUpdated      = "message_updated"
	EventMessageDeleted      = "message_deleted"
	EventMessagePinned       = "message_pinned"
	EventMessageUnpinned     = "message_unpinned"
	EventUserTyping          = "user_typing"
)

const maxIDLength = 128

var ErrInvalidPayload = errors.New("invalid payload")

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode renders one outbound frame.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

func jsonRaw(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event", ErrInvalidPayload)
	}
	return env, nil
}

func validateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidPayload, field)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidPayload, field, maxIDLength)
	}
	return nil
}

func decode(data json.RawMessage, v interface{ validate() error }) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return v.validate()
}

type AuthenticateRequest struct {
	Token string `json:"token"`
}

func (r *AuthenticateRequest) validate() error {
	if r.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidPayload)
	}
	return nil
}

type WorkspaceRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

func (r *WorkspaceRequest) validate() error { return validateID("workspaceId", r.WorkspaceID) }

// ChannelRequest is used by join/leave and typing events. DM conversations pass the DM id.
type ChannelRequest struct {
	ChannelID string `json:"channelId"`
}

func (r *ChannelRequest) validate() error { return validateID("channelId", r.ChannelID) }

type StatusChangeRequest struct {
	Status string `json:"status"`

	parsed presence.Status
}

func (r *StatusChangeRequest) validate() error {
	s, ok := presence.ParseStatus(r.Status)
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, r.Status)
	}
	r.parsed = s
	return nil
}

// RelayMessage is a client-pushed message. Fields other than channelId are
// relayed untouched, except sender which the server always overwrites.
type RelayMessage struct {
	ChannelID string
	Fields    map[string]json.RawMessage
}

func (r *RelayMessage) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	raw, ok := fields["channelId"]
	if !ok {
		return fmt.Errorf("channelId is required")
	}
	if err := json.Unmarshal(raw, &r.ChannelID); err != nil {
		return fmt.Errorf("channelId: %w", err)
	}
	r.Fields = fields
	return nil
}

func (r *RelayMessage) validate() error { return validateID("channelId", r.ChannelID) }

// Sender identifies the author of a message as known to the server.
type Sender struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type AuthenticatedPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type AuthenticationErrorPayload struct {
	Message string `json:"message"`
}

type PresencePayload struct {
	UserID   string          `json:"userId"`
	Username string          `json:"username"`
	Status   presence.Status `json:"status"`
	LastSeen time.Time       `json:"lastSeen"`
}

func presenceFromSession(s presence.Session) PresencePayload {
	return PresencePayload{
		UserID:   s.UserID,
		Username: s.Username,
		Status:   s.Status,
		LastSeen: s.LastSeen,
	}
}

type TypingPayload struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	ChannelID string `json:"channelId"`
	IsTyping  bool   `json:"isTyping"`
}

// PinPayload is sent with message_pinned and message_unpinned.
type PinPayload struct {
	MessageID string    `json:"messageId"`
	IsPinned  bool      `json:"isPinned"`
	Actor     Sender    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageDeletedPayload struct {
	MessageID string `json:"messageId"`
	ChannelID string `json:"channelId"`
}
