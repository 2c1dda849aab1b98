package dto

import (
	"time"

	"github.com/google/uuid"

	"teamchat-service/internal/domain"
)

// CreateChannelRequest represents the request to create a channel
type CreateChannelRequest struct {
	WorkspaceID uuid.UUID `json:"workspaceId" binding:"required"`
	Name        string    `json:"name" binding:"required,min=1,max=100"`
	Description string    `json:"description,omitempty"`
	IsPrivate   bool      `json:"isPrivate"`
	MemberIDs   []string  `json:"memberIds,omitempty" binding:"omitempty,dive,min=1,max=128"`
}

// AddMembersRequest represents the request to add users to a channel
type AddMembersRequest struct {
	UserIDs []string `json:"userIds" binding:"required,min=1,dive,min=1,max=128"`
}

// ChannelResponse represents the channel response
type ChannelResponse struct {
	ChannelID   uuid.UUID `json:"channelId"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedBy   string    `json:"createdBy"`
	MemberIDs   []string  `json:"memberIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewChannelResponse(ch *domain.Channel) ChannelResponse {
	members := make([]string, 0, len(ch.Members))
	for _, m := range ch.Members {
		members = append(members, m.UserID)
	}
	return ChannelResponse{
		ChannelID:   ch.ID,
		WorkspaceID: ch.WorkspaceID,
		Name:        ch.Name,
		Description: ch.Description,
		IsPrivate:   ch.IsPrivate,
		CreatedBy:   ch.CreatedBy,
		MemberIDs:   members,
		CreatedAt:   ch.CreatedAt,
		UpdatedAt:   ch.UpdatedAt,
	}
}
