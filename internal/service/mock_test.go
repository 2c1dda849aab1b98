package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"teamchat-service/internal/client"
	"teamchat-service/internal/domain"
	"teamchat-service/internal/presence"
)

// Test user ids. They sort in numeric order so DMID(u1, u2) keeps u1 first.
const (
	u1 = "00000000-0000-4000-8000-000000000001"
	u2 = "00000000-0000-4000-8000-000000000002"
	u3 = "00000000-0000-4000-8000-000000000003"
	u7 = "00000000-0000-4000-8000-000000000007"
	u9 = "00000000-0000-4000-8000-000000000009"
)

// MockChannelRepository is a mock implementation of ChannelRepository
type MockChannelRepository struct {
	CreateFunc          func(ctx context.Context, channel *domain.Channel, memberIDs []string) error
	FindByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	FindByWorkspaceFunc func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Channel, error)
	AddMembersFunc      func(ctx context.Context, channelID uuid.UUID, userIDs []string) error
	IsMemberFunc        func(ctx context.Context, channelID uuid.UUID, userID string) (bool, error)
}

func (m *MockChannelRepository) Create(ctx context.Context, channel *domain.Channel, memberIDs []string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, channel, memberIDs)
	}
	return nil
}

func (m *MockChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockChannelRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Channel, error) {
	if m.FindByWorkspaceFunc != nil {
		return m.FindByWorkspaceFunc(ctx, workspaceID)
	}
	return nil, nil
}

func (m *MockChannelRepository) AddMembers(ctx context.Context, channelID uuid.UUID, userIDs []string) error {
	if m.AddMembersFunc != nil {
		return m.AddMembersFunc(ctx, channelID, userIDs)
	}
	return nil
}

func (m *MockChannelRepository) IsMember(ctx context.Context, channelID uuid.UUID, userID string) (bool, error) {
	if m.IsMemberFunc != nil {
		return m.IsMemberFunc(ctx, channelID, userID)
	}
	return false, nil
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	CreateFunc             func(ctx context.Context, message *domain.Message) error
	FindByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	FindByConversationFunc func(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error)
	FindRepliesFunc        func(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]*domain.Message, error)
	FindPinnedFunc         func(ctx context.Context, conversationID string) ([]*domain.Message, error)
	UpdateContentFunc      func(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	SetPinnedFunc          func(ctx context.Context, id uuid.UUID, pinned bool, by string, at time.Time) error
	DeleteFunc             func(ctx context.Context, message *domain.Message) error
	AddReactionFunc        func(ctx context.Context, reaction *domain.Reaction) (bool, error)
	RemoveReactionFunc     func(ctx context.Context, messageID uuid.UUID, userID, emoji string) (bool, error)
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	return nil
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMessageRepository) FindByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	if m.FindByConversationFunc != nil {
		return m.FindByConversationFunc(ctx, conversationID, limit, offset)
	}
	return nil, nil
}

func (m *MockMessageRepository) FindReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	if m.FindRepliesFunc != nil {
		return m.FindRepliesFunc(ctx, parentID, limit, offset)
	}
	return nil, nil
}

func (m *MockMessageRepository) FindPinned(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	if m.FindPinnedFunc != nil {
		return m.FindPinnedFunc(ctx, conversationID)
	}
	return nil, nil
}

func (m *MockMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	if m.UpdateContentFunc != nil {
		return m.UpdateContentFunc(ctx, id, content, editedAt)
	}
	return nil
}

func (m *MockMessageRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool, by string, at time.Time) error {
	if m.SetPinnedFunc != nil {
		return m.SetPinnedFunc(ctx, id, pinned, by, at)
	}
	return nil
}

func (m *MockMessageRepository) Delete(ctx context.Context, message *domain.Message) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, message)
	}
	return nil
}

func (m *MockMessageRepository) AddReaction(ctx context.Context, reaction *domain.Reaction) (bool, error) {
	if m.AddReactionFunc != nil {
		return m.AddReactionFunc(ctx, reaction)
	}
	return true, nil
}

func (m *MockMessageRepository) RemoveReaction(ctx context.Context, messageID uuid.UUID, userID, emoji string) (bool, error) {
	if m.RemoveReactionFunc != nil {
		return m.RemoveReactionFunc(ctx, messageID, userID, emoji)
	}
	return true, nil
}

type publishedEvent struct {
	ConversationID string
	Event          string
	Payload        any
}

// MockPublisher records every Publish call
type MockPublisher struct {
	mu          sync.Mutex
	Events      []publishedEvent
	PublishFunc func(conversationID, event string, payload any) error
}

func (m *MockPublisher) Publish(conversationID, event string, payload any) error {
	m.mu.Lock()
	m.Events = append(m.Events, publishedEvent{ConversationID: conversationID, Event: event, Payload: payload})
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(conversationID, event, payload)
	}
	return nil
}

// MockProfileLookup serves profiles from a map
type MockProfileLookup struct {
	Profiles map[string]*client.UserProfile
}

func (m *MockProfileLookup) GetProfile(ctx context.Context, userID string) (*client.UserProfile, error) {
	if p, ok := m.Profiles[userID]; ok {
		return p, nil
	}
	return nil, client.ErrUserNotFound
}

// MockLivePresence is a mock implementation of LivePresence
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

// MockLastSeenReader is a mock implementation of presence.LastSeenReader
type MockLastSeenReader struct {
	LastSeenFunc func(ctx context.Context, userID string) (time.Time, error)
}

func (m *MockLastSeenReader) LastSeen(ctx context.Context, userID string) (time.Time, error) {
	if m.LastSeenFunc != nil {
		return m.LastSeenFunc(ctx, userID)
	}
	return time.Time{}, presence.ErrLastSeenNotFound
}
