package handler

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"teamchat-service/internal/dto"
	"teamchat-service/internal/presence"
)

var errNotMocked = errors.New("not mocked")

// headerValidator treats the bearer token as the user id.
type headerValidator struct{}

func (headerValidator) VerifyToken(_ context.Context, token string) (string, error) {
	if token == "invalid" {
		return "", errors.New("invalid token")
	}
	return token, nil
}

type MockChannelService struct {
	CreateChannelFunc         func(ctx context.Context, userID string, req *dto.CreateChannelRequest) (*dto.ChannelResponse, error)
	GetChannelFunc            func(ctx context.Context, userID string, channelID uuid.UUID) (*dto.ChannelResponse, error)
	ListWorkspaceChannelsFunc func(ctx context.Context, userID string, workspaceID uuid.UUID) ([]dto.ChannelResponse, error)
	AddMembersFunc            func(ctx context.Context, userID string, channelID uuid.UUID, req *dto.AddMembersRequest) (*dto.ChannelResponse, error)
}

func (m *MockChannelService) CreateChannel(ctx context.Context, userID string, req *dto.CreateChannelRequest) (*dto.ChannelResponse, error) {
	if m.CreateChannelFunc != nil {
		return m.CreateChannelFunc(ctx, userID, req)
	}
	return nil, errNotMocked
}

func (m *MockChannelService) GetChannel(ctx context.Context, userID string, channelID uuid.UUID) (*dto.ChannelResponse, error) {
	if m.GetChannelFunc != nil {
		return m.GetChannelFunc(ctx, userID, channelID)
	}
	return nil, errNotMocked
}

func (m *MockChannelService) ListWorkspaceChannels(ctx context.Context, userID string, workspaceID uuid.UUID) ([]dto.ChannelResponse, error) {
	if m.ListWorkspaceChannelsFunc != nil {
		return m.ListWorkspaceChannelsFunc(ctx, userID, workspaceID)
	}
	return nil, errNotMocked
}

func (m *MockChannelService) AddMembers(ctx context.Context, userID string, channelID uuid.UUID, req *dto.AddMembersRequest) (*dto.ChannelResponse, error) {
	if m.AddMembersFunc != nil {
		return m.AddMembersFunc(ctx, userID, channelID, req)
	}
	return nil, errNotMocked
}

type MockMessageService struct {
	SendChannelMessageFunc func(ctx context.Context, userID string, channelID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetChannelMessagesFunc func(ctx context.Context, userID string, channelID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error)
	SendDirectMessageFunc  func(ctx context.Context, userID, peerID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetDirectMessagesFunc  func(ctx context.Context, userID, peerID string, page dto.PageQuery) ([]dto.MessageResponse, error)
	EditMessageFunc        func(ctx context.Context, userID string, messageID uuid.UUID, content string) (*dto.MessageResponse, error)
	DeleteMessageFunc      func(ctx context.Context, userID string, messageID uuid.UUID) error
	PinMessageFunc         func(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error)
	UnpinMessageFunc       func(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error)
	GetChannelPinsFunc     func(ctx context.Context, userID string, channelID uuid.UUID) ([]dto.MessageResponse, error)
	GetDirectPinsFunc      func(ctx context.Context, userID, peerID string) ([]dto.MessageResponse, error)
	AddReactionFunc        func(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error)
	RemoveReactionFunc     func(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error)
	CreateReplyFunc        func(ctx context.Context, userID string, parentID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetRepliesFunc         func(ctx context.Context, userID string, parentID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error)
	CanAccessFunc          func(ctx context.Context, userID, conversationID string) error
}

func (m *MockMessageService) SendChannelMessage(ctx context.Context, userID string, channelID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if m.SendChannelMessageFunc != nil {
		return m.SendChannelMessageFunc(ctx, userID, channelID, req)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) GetChannelMessages(ctx context.Context, userID string, channelID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error) {
	if m.GetChannelMessagesFunc != nil {
		return m.GetChannelMessagesFunc(ctx, userID, channelID, page)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) SendDirectMessage(ctx context.Context, userID, peerID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if m.SendDirectMessageFunc != nil {
		return m.SendDirectMessageFunc(ctx, userID, peerID, req)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) GetDirectMessages(ctx context.Context, userID, peerID string, page dto.PageQuery) ([]dto.MessageResponse, error) {
	if m.GetDirectMessagesFunc != nil {
		return m.GetDirectMessagesFunc(ctx, userID, peerID, page)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) EditMessage(ctx context.Context, userID string, messageID uuid.UUID, content string) (*dto.MessageResponse, error) {
	if m.EditMessageFunc != nil {
		return m.EditMessageFunc(ctx, userID, messageID, content)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) DeleteMessage(ctx context.Context, userID string, messageID uuid.UUID) error {
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(ctx, userID, messageID)
	}
	return errNotMocked
}

func (m *MockMessageService) PinMessage(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error) {
	if m.PinMessageFunc != nil {
		return m.PinMessageFunc(ctx, userID, messageID)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) UnpinMessage(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error) {
	if m.UnpinMessageFunc != nil {
		return m.UnpinMessageFunc(ctx, userID, messageID)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) GetChannelPins(ctx context.Context, userID string, channelID uuid.UUID) ([]dto.MessageResponse, error) {
	if m.GetChannelPinsFunc != nil {
		return m.GetChannelPinsFunc(ctx, userID, channelID)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) GetDirectPins(ctx context.Context, userID, peerID string) ([]dto.MessageResponse, error) {
	if m.GetDirectPinsFunc != nil {
		return m.GetDirectPinsFunc(ctx, userID, peerID)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) AddReaction(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error) {
	if m.AddReactionFunc != nil {
		return m.AddReactionFunc(ctx, userID, messageID, emoji)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) RemoveReaction(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error) {
	if m.RemoveReactionFunc != nil {
		return m.RemoveReactionFunc(ctx, userID, messageID, emoji)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) CreateReply(ctx context.Context, userID string, parentID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if m.CreateReplyFunc != nil {
		return m.CreateReplyFunc(ctx, userID, parentID, req)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) GetReplies(ctx context.Context, userID string, parentID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error) {
	if m.GetRepliesFunc != nil {
		return m.GetRepliesFunc(ctx, userID, parentID, page)
	}
	return nil, errNotMocked
}

func (m *MockMessageService) CanAccess(ctx context.Context, userID, conversationID string) error {
	if m.CanAccessFunc != nil {
		return m.CanAccessFunc(ctx, userID, conversationID)
	}
	return nil
}

type MockLivePresence struct {
	Online   map[string][]presence.Session
	Sessions map[string]presence.Session
}

func (m *MockLivePresence) OnlineSnapshot(workspaceID string) []presence.Session {
	return m.Online[workspaceID]
}

func (m *MockLivePresence) Session(userID string) (presence.Session, bool) {
	s, ok := m.Sessions[userID]
	return s, ok
}
