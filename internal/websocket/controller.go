package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"teamchat-service/internal/client"
	"teamchat-service/internal/conversation"
	"teamchat-service/internal/metrics"
	"teamchat-service/internal/presence"
)

const defaultAuthTimeout = 5 * time.Second

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// ProfileLookup resolves the stored profile of a user.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*client.UserProfile, error)
}

// LastSeenRecorder persists the time a user went offline.
type LastSeenRecorder interface {
	Touch(ctx context.Context, userID string, at time.Time) error
}

type connection struct {
	sink     Sink
	userID   string
	username string
}

func (c *connection) authenticated() bool { return c.userID != "" }

// AccessChecker decides whether a user may read a conversation.
type AccessChecker interface {
	CanAccess(ctx context.Context, userID, conversationID string) error
}

// Stats is a point-in-time view of the realtime state.
type Stats struct {
	Connections   int
	Sessions      int
	TypingMarkers int
}

// Controller runs the connection state machine. It owns the session registry
// and typing tracker; mu covers the synchronous part of every event and is
// never held while waiting on the token verifier, the user-service or Redis.
type Controller struct {
	mu       sync.Mutex
	conns    map[string]*connection
	registry *presence.Registry
	typing   *presence.TypingTracker

	router      Router
	verifier    TokenVerifier
	profiles    ProfileLookup
	lastSeen    LastSeenRecorder
	access      AccessChecker
	authTimeout time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewController wires the state machine. lastSeen may be nil.
func NewController(
	router Router,
	verifier TokenVerifier,
	profiles ProfileLookup,
	lastSeen LastSeenRecorder,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		conns:       make(map[string]*connection),
		registry:    presence.NewRegistry(),
		typing:      presence.NewTypingTracker(),
		router:      router,
		verifier:    verifier,
		profiles:    profiles,
		lastSeen:    lastSeen,
		authTimeout: defaultAuthTimeout,
		metrics:     m,
		logger:      logger,
	}
}

// SetAuthTimeout bounds token verification plus profile lookup, and the
// access check of a channel join.
func (c *Controller) SetAuthTimeout(d time.Duration) {
	if d > 0 {
		c.authTimeout = d
	}
}

// SetAccessChecker makes join_channel refuse conversations the user cannot
// read over REST. Without one every join is accepted.
func (c *Controller) SetAccessChecker(a AccessChecker) {
	c.access = a
}

// Connect registers a freshly opened, unauthenticated connection.
func (c *Controller) Connect(s Sink) {
	c.mu.Lock()
	c.conns[s.ID()] = &connection{sink: s}
	c.router.Register(s)
	c.mu.Unlock()

	c.metrics.ConnectionOpened()
	c.logger.Debug("Connection opened", zap.String("connectionId", s.ID()))
}

// Handle decodes one frame and dispatches it. Malformed frames, unknown
// events and actions before authentication are dropped without a reply.
func (c *Controller) Handle(ctx context.Context, connectionID string, frame []byte) {
	env, err := DecodeEnvelope(frame)
	if err != nil {
		c.logger.Debug("Dropping malformed frame", zap.String("connectionId", connectionID), zap.Error(err))
		return
	}

	switch env.Event {
	case EventAuthenticate:
		var req AuthenticateRequest
		if err := decode(env.Data, &req); err != nil {
			c.rejectAuth(connectionID, "missing_token", "Token is required", err)
			return
		}
		c.Authenticate(ctx, connectionID, req.Token)

	case EventJoinWorkspace:
		var req WorkspaceRequest
		if c.decodeOrDrop(connectionID, env, &req) {
			c.JoinWorkspace(connectionID, req.WorkspaceID)
		}

	case EventJoinChannel:
		var req ChannelRequest
		if c.decodeOrDrop(connectionID, env, &req) {
			c.JoinChannel(ctx, connectionID, req.ChannelID)
		}

	case EventLeaveChannel:
		var req ChannelRequest
		if c.decodeOrDrop(connectionID, env, &req) {
			c.LeaveChannel(connectionID, req.ChannelID)
		}

	case EventNewMessage:
		var req RelayMessage
		if c.decodeOrDrop(connectionID, env, &req) {
			c.RelayMessage(connectionID, req)
		}

	case EventTypingStart:
		var req ChannelRequest
		if c.decodeOrDrop(connectionID, env, &req) {
			c.StartTyping(connectionID, req.ChannelID)
		}

	case EventTypingStop:
		var req ChannelRequest
		if c.decodeOrDrop(connectionID, env, &req) {
			c.StopTyping(connectionID, req.ChannelID)
		}

	case EventStatusChange:
		var req StatusChangeRequest
		if c.decodeOrDrop(connectionID, env, &req) {
			c.ChangeStatus(connectionID, req.parsed)
		}

	default:
		c.logger.Debug("Dropping unknown event",
			zap.String("connectionId", connectionID),
			zap.String("event", env.Event))
	}
}

func (c *Controller) decodeOrDrop(connectionID string, env Envelope, v interface{ validate() error }) bool {
	if err := decode(env.Data, v); err != nil {
		c.logger.Debug("Dropping invalid payload",
			zap.String("connectionId", connectionID),
			zap.String("event", env.Event),
			zap.Error(err))
		return false
	}
	return true
}

// Authenticate verifies the token and resolves the profile without holding the
// lock, then records the session if the connection is still open.
// Failure leaves the connection open and unauthenticated so the client can retry.
func (c *Controller) Authenticate(ctx context.Context, connectionID, token string) error {
	c.mu.Lock()
	conn, ok := c.conns[connectionID]
	if !ok {
		c.mu.Unlock()
		return ErrConnectionNotFound
	}
	if conn.authenticated() {
		c.send(connectionID, EventAuthenticated, AuthenticatedPayload{UserID: conn.userID, Username: conn.username})
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.authTimeout)
	defer cancel()

	userID, err := c.verifier.VerifyToken(ctx, token)
	if err != nil {
		c.rejectAuth(connectionID, "invalid_token", "Invalid or expired token", err)
		return err
	}

	profile, err := c.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, client.ErrUserNotFound) {
			c.rejectAuth(connectionID, "user_not_found", "User not found", err)
		} else {
			c.rejectAuth(connectionID, "profile_lookup", "Authentication failed", err)
		}
		return err
	}
	username := profile.DisplayName()

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok = c.conns[connectionID]
	if !ok || conn.sink.Closed() {
		c.logger.Debug("Connection closed during authentication",
			zap.String("connectionId", connectionID),
			zap.String("userId", userID))
		return ErrConnectionNotFound
	}
	if conn.authenticated() {
		c.send(connectionID, EventAuthenticated, AuthenticatedPayload{UserID: conn.userID, Username: conn.username})
		return nil
	}

	conn.userID = userID
	conn.username = username
	c.registry.Record(userID, username, connectionID)
	c.router.Join(connectionID, conversation.User(userID))
	c.send(connectionID, EventAuthenticated, AuthenticatedPayload{UserID: userID, Username: username})
	c.metrics.SetPresence(c.registry.Len(), c.typing.Len())

	c.logger.Info("Connection authenticated",
		zap.String("connectionId", connectionID),
		zap.String("userId", userID))
	return nil
}

func (c *Controller) rejectAuth(connectionID, reason, message string, err error) {
	c.metrics.RecordAuthFailure(reason)
	c.logger.Warn("Authentication failed",
		zap.String("connectionId", connectionID),
		zap.String("reason", reason),
		zap.Error(err))
	if sendErr := c.router.SendTo(connectionID, EventAuthenticationError, AuthenticationErrorPayload{Message: message}); sendErr != nil {
		c.logger.Debug("Could not report authentication failure",
			zap.String("connectionId", connectionID),
			zap.Error(sendErr))
	}
}

// lookup returns the connection only if it has authenticated. Callers hold mu.
func (c *Controller) lookup(connectionID, event string) (*connection, bool) {
	conn, ok := c.conns[connectionID]
	if !ok || !conn.authenticated() {
		c.logger.Debug("Ignoring event from unauthenticated connection",
			zap.String("connectionId", connectionID),
			zap.String("event", event))
		return nil, false
	}
	return conn, true
}

// JoinWorkspace sends the online snapshot to the requester only and announces
// the requester to the rest of the workspace.
func (c *Controller) JoinWorkspace(connectionID, workspaceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.lookup(connectionID, EventJoinWorkspace)
	if !ok {
		return
	}

	room := conversation.Workspace(workspaceID)
	c.router.Join(connectionID, room)
	c.registry.SetCurrentWorkspace(conn.userID, workspaceID)

	snapshot := c.registry.ListOnline(workspaceID)
	payload := make([]PresencePayload, 0, len(snapshot))
	for _, s := range snapshot {
		payload = append(payload, presenceFromSession(s))
	}
	c.send(connectionID, EventWorkspacePresence, payload)

	if session, ok := c.registry.Get(conn.userID); ok {
		c.broadcast(room, EventPresenceUpdate, presenceFromSession(session), connectionID)
	}
}

// JoinChannel checks access without holding the lock, then joins the room and
// tells the joiner who is already typing there. A denied join is dropped.
func (c *Controller) JoinChannel(ctx context.Context, connectionID, channelID string) {
	c.mu.Lock()
	conn, ok := c.lookup(connectionID, EventJoinChannel)
	var userID string
	if ok {
		userID = conn.userID
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	if c.access != nil {
		ctx, cancel := context.WithTimeout(ctx, c.authTimeout)
		err := c.access.CanAccess(ctx, userID, channelID)
		cancel()
		if err != nil {
			c.logger.Warn("Channel join denied",
				zap.String("connectionId", connectionID),
				zap.String("userId", userID),
				zap.String("channelId", channelID),
				zap.Error(err))
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok = c.conns[connectionID]
	if !ok || conn.userID != userID {
		return
	}
	c.router.Join(connectionID, conversation.Channel(channelID))
	c.registry.SetCurrentChannel(userID, channelID)

	for _, marker := range c.typing.Typists(channelID) {
		if marker.UserID == userID {
			continue
		}
		c.send(connectionID, EventUserTyping, TypingPayload{
			UserID:    marker.UserID,
			Username:  marker.Username,
			ChannelID: marker.ConversationID,
			IsTyping:  true,
		})
	}
}

// LeaveChannel also clears the user's typing marker there.
func (c *Controller) LeaveChannel(connectionID, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.lookup(connectionID, EventLeaveChannel)
	if !ok {
		return
	}
	room := conversation.Channel(channelID)
	c.router.Leave(connectionID, room)
	if marker, stopped := c.typing.Stop(conn.userID, channelID); stopped {
		c.broadcastTyping(marker, false, connectionID)
	}
}

// RelayMessage broadcasts a client-pushed message to its channel, sender included.
// The sender field always comes from the session.
func (c *Controller) RelayMessage(connectionID string, msg RelayMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.lookup(connectionID, EventNewMessage)
	if !ok {
		return
	}

	sender, err := jsonRaw(Sender{UserID: conn.userID, Username: conn.username})
	if err != nil {
		c.logger.Error("Failed to encode sender", zap.Error(err))
		return
	}
	fields := make(map[string]json.RawMessage, len(msg.Fields)+1)
	for k, v := range msg.Fields {
		fields[k] = v
	}
	fields["sender"] = sender

	c.broadcast(conversation.Channel(msg.ChannelID), EventMessageReceived, fields, "")
}

func (c *Controller) StartTyping(connectionID, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.lookup(connectionID, EventTypingStart)
	if !ok {
		return
	}
	marker := c.typing.Start(conn.userID, conn.username, channelID)
	c.broadcastTyping(marker, true, connectionID)
}

// StopTyping broadcasts only when a marker was actually removed.
func (c *Controller) StopTyping(connectionID, channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.lookup(connectionID, EventTypingStop)
	if !ok {
		return
	}
	if marker, stopped := c.typing.Stop(conn.userID, channelID); stopped {
		c.broadcastTyping(marker, false, connectionID)
	}
}

// ChangeStatus updates the session and notifies the current workspace, if any.
func (c *Controller) ChangeStatus(connectionID string, status presence.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, ok := c.lookup(connectionID, EventStatusChange)
	if !ok {
		return
	}
	session, ok := c.registry.SetStatus(conn.userID, status)
	if !ok || session.CurrentWorkspace == "" {
		return
	}
	c.broadcast(conversation.Workspace(session.CurrentWorkspace), EventPresenceUpdate, presenceFromSession(session), "")
}

// Disconnect is the terminal transition. The session is removed only if it
// still belongs to this connection; typing markers are swept and an offline
// update goes to every connection when the session was removed.
func (c *Controller) Disconnect(connectionID string) {
	c.mu.Lock()
	conn, ok := c.conns[connectionID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.conns, connectionID)
	c.router.Unregister(connectionID)

	var (
		session presence.Session
		removed bool
	)
	if conn.authenticated() {
		session, removed = c.registry.RemoveConnection(conn.userID, connectionID)
		if removed || !c.hasConnection(conn.userID) {
			for _, marker := range c.typing.SweepForUser(conn.userID) {
				c.broadcastTyping(marker, false, "")
			}
		}
		if removed {
			offline := presenceFromSession(session)
			offline.Status = presence.StatusOffline
			if _, err := c.router.BroadcastAll(EventPresenceUpdate, offline); err != nil {
				c.logger.Error("Failed to broadcast offline presence", zap.Error(err))
			}
		}
	}
	c.metrics.SetPresence(c.registry.Len(), c.typing.Len())
	c.mu.Unlock()

	conn.sink.Close()
	c.metrics.ConnectionClosed()
	c.logger.Info("Connection closed",
		zap.String("connectionId", connectionID),
		zap.String("userId", conn.userID),
		zap.Bool("sessionRemoved", removed))

	if removed && c.lastSeen != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.lastSeen.Touch(ctx, session.UserID, session.LastSeen); err != nil {
			c.logger.Debug("Failed to store last seen", zap.String("userId", session.UserID), zap.Error(err))
		}
	}
}

// hasConnection reports whether userID still has an authenticated connection. Callers hold mu.
func (c *Controller) hasConnection(userID string) bool {
	for _, conn := range c.conns {
		if conn.userID == userID {
			return true
		}
	}
	return false
}

// Stats samples the realtime state.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Connections:   c.router.Connections(),
		Sessions:      c.registry.Len(),
		TypingMarkers: c.typing.Len(),
	}
}

// OnlineSnapshot is listOnline for the HTTP presence endpoint.
func (c *Controller) OnlineSnapshot(workspaceID string) []presence.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.ListOnline(workspaceID)
}

func (c *Controller) Session(userID string) (presence.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Get(userID)
}

func (c *Controller) broadcastTyping(marker presence.Marker, isTyping bool, exclude string) {
	c.broadcast(conversation.Channel(marker.ConversationID), EventUserTyping, TypingPayload{
		UserID:    marker.UserID,
		Username:  marker.Username,
		ChannelID: marker.ConversationID,
		IsTyping:  isTyping,
	}, exclude)
}

func (c *Controller) broadcast(room conversation.RoomID, event string, payload any, exclude string) {
	if _, err := c.router.BroadcastExcept(room, event, payload, exclude); err != nil {
		c.logger.Error("Broadcast failed",
			zap.String("room", room.String()),
			zap.String("event", event),
			zap.Error(err))
	}
}

func (c *Controller) send(connectionID, event string, payload any) {
	if err := c.router.SendTo(connectionID, event, payload); err != nil {
		c.logger.Debug("Send failed",
			zap.String("connectionId", connectionID),
			zap.String("event", event),
			zap.Error(err))
	}
}
