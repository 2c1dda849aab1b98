package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamchat-service/internal/client"
	"teamchat-service/internal/conversation"
	"teamchat-service/internal/domain"
	"teamchat-service/internal/dto"
	"teamchat-service/internal/metrics"
	"teamchat-service/internal/repository"
	"teamchat-service/internal/response"
	"teamchat-service/internal/websocket"
)

// Publisher pushes an event to the live subscribers of a conversation.
// *websocket.Bridge implements it.
type Publisher interface {
	Publish(conversationID, event string, payload any) error
}

// ProfileLookup resolves display names for message authors and pin actors.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*client.UserProfile, error)
}

// MessageService defines the interface for message business logic
type MessageService interface {
	SendChannelMessage(ctx context.Context, userID string, channelID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetChannelMessages(ctx context.Context, userID string, channelID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error)
	SendDirectMessage(ctx context.Context, userID, peerID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetDirectMessages(ctx context.Context, userID, peerID string, page dto.PageQuery) ([]dto.MessageResponse, error)
	EditMessage(ctx context.Context, userID string, messageID uuid.UUID, content string) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, userID string, messageID uuid.UUID) error

	PinMessage(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error)
	UnpinMessage(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error)
	GetChannelPins(ctx context.Context, userID string, channelID uuid.UUID) ([]dto.MessageResponse, error)
	GetDirectPins(ctx context.Context, userID, peerID string) ([]dto.MessageResponse, error)

	AddReaction(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error)
	RemoveReaction(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error)

	CreateReply(ctx context.Context, userID string, parentID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetReplies(ctx context.Context, userID string, parentID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error)

	// CanAccess reports whether userID participates in the conversation.
	CanAccess(ctx context.Context, userID, conversationID string) error
}

type messageServiceImpl struct {
	messageRepo repository.MessageRepository
	channelRepo repository.ChannelRepository
	publisher   Publisher
	profiles    ProfileLookup
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	channelRepo repository.ChannelRepository,
	publisher Publisher,
	profiles ProfileLookup,
	m *metrics.Metrics,
	logger *zap.Logger,
) MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &messageServiceImpl{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		publisher:   publisher,
		profiles:    profiles,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *messageServiceImpl) SendChannelMessage(ctx context.Context, userID string, channelID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	return s.send(ctx, userID, channelID.String(), req, "channel")
}

func (s *messageServiceImpl) GetChannelMessages(ctx context.Context, userID string, channelID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error) {
	return s.history(ctx, userID, channelID.String(), page)
}

// SendDirectMessage stores the message under DMID(userID, peerID).
func (s *messageServiceImpl) SendDirectMessage(ctx context.Context, userID, peerID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	dmID, err := directID(userID, peerID)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, userID, dmID, req, "dm")
}

func (s *messageServiceImpl) GetDirectMessages(ctx context.Context, userID, peerID string, page dto.PageQuery) ([]dto.MessageResponse, error) {
	dmID, err := directID(userID, peerID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, userID, dmID, page)
}

// EditMessage is allowed to the author only
func (s *messageServiceImpl) EditMessage(ctx context.Context, userID string, messageID uuid.UUID, content string) (*dto.MessageResponse, error) {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, response.NewForbiddenError("Only the author can edit this message", "")
	}

	if err := s.messageRepo.UpdateContent(ctx, messageID, content, s.now()); err != nil {
		return nil, wrapWriteError("Failed to edit message", err)
	}

	resp, err := s.reload(ctx, messageID)
	if err != nil {
		return nil, err
	}
	s.publish(msg.ConversationID, websocket.EventMessageUpdated, resp)
	return resp, nil
}

// DeleteMessage is allowed to the author only
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, userID string, messageID uuid.UUID) error {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return response.NewForbiddenError("Only the author can delete this message", "")
	}

	if err := s.messageRepo.Delete(ctx, msg); err != nil {
		return wrapWriteError("Failed to delete message", err)
	}

	s.publish(msg.ConversationID, websocket.EventMessageDeleted, websocket.MessageDeletedPayload{
		MessageID: msg.ID.String(),
		ChannelID: msg.ConversationID,
	})
	return nil
}

func (s *messageServiceImpl) PinMessage(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error) {
	return s.setPinned(ctx, userID, messageID, true)
}

func (s *messageServiceImpl) UnpinMessage(ctx context.Context, userID string, messageID uuid.UUID) (*dto.MessageResponse, error) {
	return s.setPinned(ctx, userID, messageID, false)
}

func (s *messageServiceImpl) setPinned(ctx context.Context, userID string, messageID uuid.UUID, pinned bool) (*dto.MessageResponse, error) {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.CanAccess(ctx, userID, msg.ConversationID); err != nil {
		return nil, err
	}

	at := s.now()
	if err := s.messageRepo.SetPinned(ctx, messageID, pinned, userID, at); err != nil {
		return nil, wrapWriteError("Failed to update pin", err)
	}

	resp, err := s.reload(ctx, messageID)
	if err != nil {
		return nil, err
	}

	event := websocket.EventMessageUnpinned
	if pinned {
		event = websocket.EventMessagePinned
	}
	s.publish(msg.ConversationID, event, websocket.PinPayload{
		MessageID: messageID.String(),
		IsPinned:  pinned,
		Actor:     websocket.Sender{UserID: userID, Username: s.displayName(ctx, userID)},
		Timestamp: at,
	})
	return resp, nil
}

func (s *messageServiceImpl) GetChannelPins(ctx context.Context, userID string, channelID uuid.UUID) ([]dto.MessageResponse, error) {
	return s.pins(ctx, userID, channelID.String())
}

func (s *messageServiceImpl) GetDirectPins(ctx context.Context, userID, peerID string) ([]dto.MessageResponse, error) {
	dmID, err := directID(userID, peerID)
	if err != nil {
		return nil, err
	}
	return s.pins(ctx, userID, dmID)
}

func (s *messageServiceImpl) pins(ctx context.Context, userID, conversationID string) ([]dto.MessageResponse, error) {
	if err := s.CanAccess(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindPinned(ctx, conversationID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load pinned messages", err.Error())
	}
	return dto.NewMessageResponses(messages), nil
}

// AddReaction is idempotent. Reactions are stored but not pushed to live clients.
func (s *messageServiceImpl) AddReaction(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error) {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.CanAccess(ctx, userID, msg.ConversationID); err != nil {
		return nil, err
	}

	if _, err := s.messageRepo.AddReaction(ctx, &domain.Reaction{MessageID: messageID, UserID: userID, Emoji: emoji}); err != nil {
		return nil, wrapWriteError("Failed to add reaction", err)
	}
	return s.reload(ctx, messageID)
}

func (s *messageServiceImpl) RemoveReaction(ctx context.Context, userID string, messageID uuid.UUID, emoji string) (*dto.MessageResponse, error) {
	msg, err := s.findMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.CanAccess(ctx, userID, msg.ConversationID); err != nil {
		return nil, err
	}

	removed, err := s.messageRepo.RemoveReaction(ctx, messageID, userID, emoji)
	if err != nil {
		return nil, wrapWriteError("Failed to remove reaction", err)
	}
	if !removed {
		return nil, response.NewNotFoundError("Reaction not found", "")
	}
	return s.reload(ctx, messageID)
}

// CreateReply stores a thread reply in the parent's conversation. Replies are
// not pushed to live clients.
func (s *messageServiceImpl) CreateReply(ctx context.Context, userID string, parentID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	parent, err := s.findMessage(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.ParentID != nil {
		return nil, response.NewValidationError("Cannot reply to a thread reply", "")
	}
	if err := s.CanAccess(ctx, userID, parent.ConversationID); err != nil {
		return nil, err
	}

	msg, err := s.newMessage(ctx, userID, parent.ConversationID, req)
	if err != nil {
		return nil, err
	}
	msg.ParentID = &parent.ID
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, wrapWriteError("Failed to create reply", err)
	}
	s.metrics.IncrementMessagePersisted("reply")

	resp := dto.NewMessageResponse(msg)
	return &resp, nil
}

func (s *messageServiceImpl) GetReplies(ctx context.Context, userID string, parentID uuid.UUID, page dto.PageQuery) ([]dto.MessageResponse, error) {
	parent, err := s.findMessage(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if err := s.CanAccess(ctx, userID, parent.ConversationID); err != nil {
		return nil, err
	}

	page = page.Normalize()
	replies, err := s.messageRepo.FindReplies(ctx, parentID, page.Limit, page.Offset)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load replies", err.Error())
	}
	return dto.NewMessageResponses(replies), nil
}

func (s *messageServiceImpl) CanAccess(ctx context.Context, userID, conversationID string) error {
	if conversation.IsDM(conversationID) {
		if !conversation.DMIncludes(conversationID, userID) {
			return response.NewForbiddenError("Not a participant of this conversation", "")
		}
		return nil
	}

	channelID, err := uuid.Parse(conversationID)
	if err != nil {
		return response.NewValidationError("Invalid conversation id", conversationID)
	}
	ok, err := s.channelRepo.IsMember(ctx, channelID, userID)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to check membership", err.Error())
	}
	if !ok {
		return response.NewForbiddenError("Not a member of this channel", "")
	}
	return nil
}

// send persists a top-level message and then publishes message_received.
func (s *messageServiceImpl) send(ctx context.Context, userID, conversationID string, req *dto.SendMessageRequest, kind string) (*dto.MessageResponse, error) {
	if err := s.CanAccess(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	msg, err := s.newMessage(ctx, userID, conversationID, req)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, wrapWriteError("Failed to send message", err)
	}
	s.metrics.IncrementMessagePersisted(kind)

	resp := dto.NewMessageResponse(msg)
	s.publish(conversationID, websocket.EventMessageReceived, resp)
	return &resp, nil
}

func (s *messageServiceImpl) history(ctx context.Context, userID, conversationID string, page dto.PageQuery) ([]dto.MessageResponse, error) {
	if err := s.CanAccess(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	page = page.Normalize()
	messages, err := s.messageRepo.FindByConversation(ctx, conversationID, page.Limit, page.Offset)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load messages", err.Error())
	}
	return dto.NewMessageResponses(messages), nil
}

func (s *messageServiceImpl) newMessage(ctx context.Context, userID, conversationID string, req *dto.SendMessageRequest) (*domain.Message, error) {
	messageType := req.MessageType
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	if !messageType.Valid() {
		return nil, response.NewValidationError("Invalid message type", string(messageType))
	}
	if messageType != domain.MessageTypeText && (req.FileURL == nil || *req.FileURL == "") {
		return nil, response.NewValidationError("fileUrl is required for file messages", "")
	}

	return &domain.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		SenderName:     s.displayName(ctx, userID),
		Content:        req.Content,
		MessageType:    messageType,
		FileURL:        req.FileURL,
		FileName:       req.FileName,
		FileSize:       req.FileSize,
	}, nil
}

func (s *messageServiceImpl) displayName(ctx context.Context, userID string) string {
	if s.profiles == nil {
		return userID
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to resolve display name", zap.String("userId", userID), zap.Error(err))
		return userID
	}
	return profile.DisplayName()
}

func (s *messageServiceImpl) findMessage(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Message not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load message", err.Error())
	}
	return msg, nil
}

func (s *messageServiceImpl) reload(ctx context.Context, id uuid.UUID) (*dto.MessageResponse, error) {
	msg, err := s.findMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewMessageResponse(msg)
	return &resp, nil
}

// publish runs after a successful write. A failed publish is logged; the
// write stands.
func (s *messageServiceImpl) publish(conversationID, event string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(conversationID, event, payload); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("conversationId", conversationID),
			zap.String("event", event),
			zap.Error(err))
	}
}

func directID(userID, peerID string) (string, error) {
	peer, err := uuid.Parse(peerID)
	if err != nil || len(peerID) != len(peer.String()) {
		return "", response.NewValidationError("Invalid user id", peerID)
	}
	return conversation.DMID(userID, peer.String()), nil
}

func wrapWriteError(message string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFoundError("Message not found", "")
	}
	return response.NewAppError(response.ErrCodeInternal, message, err.Error())
}
