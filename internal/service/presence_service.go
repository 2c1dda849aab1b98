package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/presence"
	"teamchat-service/internal/response"
)

// LivePresence is the realtime view of connected users.
// *websocket.Controller implements it.
type LivePresence interface {
	OnlineSnapshot(workspaceID string) []presence.Session
	Session(userID string) (presence.Session, bool)
}

// PresenceService answers presence queries from the live registry, falling
// back to the last-seen store for users who are no longer connected.
type PresenceService struct {
	live     LivePresence
	lastSeen presence.LastSeenReader
	logger   *zap.Logger
}

func NewPresenceService(live LivePresence, lastSeen presence.LastSeenReader, logger *zap.Logger) *PresenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceService{live: live, lastSeen: lastSeen, logger: logger}
}

func (s *PresenceService) WorkspacePresence(workspaceID string) []dto.PresenceResponse {
	sessions := s.live.OnlineSnapshot(workspaceID)
	out := make([]dto.PresenceResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, fromSession(sess))
	}
	return out
}

func (s *PresenceService) UserPresence(ctx context.Context, userID string) (*dto.PresenceResponse, error) {
	if sess, ok := s.live.Session(userID); ok {
		resp := fromSession(sess)
		return &resp, nil
	}

	at, err := s.lastSeen.LastSeen(ctx, userID)
	switch {
	case err == nil:
		at = at.UTC()
		return &dto.PresenceResponse{UserID: userID, Status: string(presence.StatusOffline), LastSeen: &at}, nil
	case errors.Is(err, presence.ErrLastSeenNotFound), errors.Is(err, presence.ErrStoreUnavailable):
		return nil, response.NewNotFoundError("Presence not found", "")
	default:
		s.logger.Error("Failed to read last seen", zap.String("userId", userID), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to read presence", err.Error())
	}
}

func fromSession(sess presence.Session) dto.PresenceResponse {
	lastSeen := sess.LastSeen
	return dto.PresenceResponse{
		UserID:           sess.UserID,
		Username:         sess.Username,
		Status:           string(sess.Status),
		LastSeen:         &lastSeen,
		CurrentWorkspace: sess.CurrentWorkspace,
	}
}
