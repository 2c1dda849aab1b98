package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamchat-service/internal/domain"
	"teamchat-service/internal/dto"
	"teamchat-service/internal/repository"
	"teamchat-service/internal/response"
)

// ChannelService defines the interface for channel business logic
type ChannelService interface {
	CreateChannel(ctx context.Context, userID string, req *dto.CreateChannelRequest) (*dto.ChannelResponse, error)
	GetChannel(ctx context.Context, userID string, channelID uuid.UUID) (*dto.ChannelResponse, error)
	ListWorkspaceChannels(ctx context.Context, userID string, workspaceID uuid.UUID) ([]dto.ChannelResponse, error)
	AddMembers(ctx context.Context, userID string, channelID uuid.UUID, req *dto.AddMembersRequest) (*dto.ChannelResponse, error)
}

type channelServiceImpl struct {
	channelRepo repository.ChannelRepository
}

func NewChannelService(channelRepo repository.ChannelRepository) ChannelService {
	return &channelServiceImpl{channelRepo: channelRepo}
}

// CreateChannel creates the channel with the creator as its first member
func (s *channelServiceImpl) CreateChannel(ctx context.Context, userID string, req *dto.CreateChannelRequest) (*dto.ChannelResponse, error) {
	if req.WorkspaceID == uuid.Nil {
		return nil, response.NewValidationError("workspaceId is required", "")
	}

	channel := &domain.Channel{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedBy:   userID,
	}
	members := append([]string{userID}, req.MemberIDs...)
	if err := s.channelRepo.Create(ctx, channel, members); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create channel", err.Error())
	}

	resp := dto.NewChannelResponse(channel)
	return &resp, nil
}

func (s *channelServiceImpl) GetChannel(ctx context.Context, userID string, channelID uuid.UUID) (*dto.ChannelResponse, error) {
	channel, err := s.findChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.IsPrivate && !hasMember(channel, userID) {
		return nil, response.NewForbiddenError("Not a member of this channel", "")
	}

	resp := dto.NewChannelResponse(channel)
	return &resp, nil
}

// ListWorkspaceChannels returns public channels and the private ones userID belongs to
func (s *channelServiceImpl) ListWorkspaceChannels(ctx context.Context, userID string, workspaceID uuid.UUID) ([]dto.ChannelResponse, error) {
	channels, err := s.channelRepo.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list channels", err.Error())
	}

	out := make([]dto.ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		if ch.IsPrivate && !hasMember(ch, userID) {
			continue
		}
		out = append(out, dto.NewChannelResponse(ch))
	}
	return out, nil
}

// AddMembers is allowed to existing members only
func (s *channelServiceImpl) AddMembers(ctx context.Context, userID string, channelID uuid.UUID, req *dto.AddMembersRequest) (*dto.ChannelResponse, error) {
	channel, err := s.findChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !hasMember(channel, userID) {
		return nil, response.NewForbiddenError("Not a member of this channel", "")
	}

	if err := s.channelRepo.AddMembers(ctx, channelID, req.UserIDs); err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to add members", err.Error())
	}
	return s.GetChannel(ctx, userID, channelID)
}

func (s *channelServiceImpl) findChannel(ctx context.Context, channelID uuid.UUID) (*domain.Channel, error) {
	channel, err := s.channelRepo.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFoundError("Channel not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load channel", err.Error())
	}
	return channel, nil
}

func hasMember(channel *domain.Channel, userID string) bool {
	for _, m := range channel.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
