package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"teamchat-service/internal/domain"
	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
)

func channelWith(id uuid.UUID, private bool, members ...string) *domain.Channel {
	ch := &domain.Channel{BaseModel: domain.BaseModel{ID: id}, Name: "general", IsPrivate: private}
	for _, m := range members {
		ch.Members = append(ch.Members, domain.ChannelMember{ChannelID: id, UserID: m})
	}
	return ch
}

func TestChannelService_CreateChannel(t *testing.T) {
	var gotMembers []string
	repo := &MockChannelRepository{
		CreateFunc: func(ctx context.Context, channel *domain.Channel, memberIDs []string) error {
			channel.ID = uuid.New()
			gotMembers = memberIDs
			return nil
		},
	}
	svc := NewChannelService(repo)

	resp, err := svc.CreateChannel(context.Background(), "u1", &dto.CreateChannelRequest{
		WorkspaceID: uuid.New(),
		Name:        "general",
		MemberIDs:   []string{"u2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.CreatedBy)
	assert.Equal(t, []string{"u1", "u2"}, gotMembers, "생성자가 첫 멤버")

	_, err = svc.CreateChannel(context.Background(), "u1", &dto.CreateChannelRequest{Name: "x"})
	assertAppErrorCode(t, err, response.ErrCodeValidation)
}

func TestChannelService_GetChannel(t *testing.T) {
	publicID, privateID := uuid.New(), uuid.New()
	repo := &MockChannelRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
			switch id {
			case publicID:
				return channelWith(id, false, "u1"), nil
			case privateID:
				return channelWith(id, true, "u1"), nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewChannelService(repo)

	tests := []struct {
		name        string
		userID      string
		channelID   uuid.UUID
		wantErrCode string
	}{
		{name: "공개 채널은 누구나", userID: "u2", channelID: publicID},
		{name: "비공개 채널 멤버", userID: "u1", channelID: privateID},
		{name: "비공개 채널 비멤버", userID: "u2", channelID: privateID, wantErrCode: response.ErrCodeForbidden},
		{name: "없는 채널", userID: "u1", channelID: uuid.New(), wantErrCode: response.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetChannel(context.Background(), tt.userID, tt.channelID)
			if tt.wantErrCode != "" {
				assertAppErrorCode(t, err, tt.wantErrCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.channelID, resp.ChannelID)
		})
	}
}

func TestChannelService_ListWorkspaceChannels(t *testing.T) {
	repo := &MockChannelRepository{
		FindByWorkspaceFunc: func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Channel, error) {
			return []*domain.Channel{
				channelWith(uuid.New(), false),
				channelWith(uuid.New(), true, "u1"),
				channelWith(uuid.New(), true, "u2"),
			}, nil
		},
	}
	svc := NewChannelService(repo)

	channels, err := svc.ListWorkspaceChannels(context.Background(), "u1", uuid.New())
	require.NoError(t, err)
	assert.Len(t, channels, 2, "남의 비공개 채널은 보이지 않는다")

	repo.FindByWorkspaceFunc = func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Channel, error) {
		return nil, errors.New("db down")
	}
	_, err = svc.ListWorkspaceChannels(context.Background(), "u1", uuid.New())
	assertAppErrorCode(t, err, response.ErrCodeInternal)
}

func TestChannelService_AddMembers(t *testing.T) {
	channelID := uuid.New()
	added := []string{}
	repo := &MockChannelRepository{
		FindByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
			return channelWith(id, false, append([]string{"u1"}, added...)...), nil
		},
		AddMembersFunc: func(ctx context.Context, id uuid.UUID, userIDs []string) error {
			added = append(added, userIDs...)
			return nil
		},
	}
	svc := NewChannelService(repo)

	_, err := svc.AddMembers(context.Background(), "u9", channelID, &dto.AddMembersRequest{UserIDs: []string{"u2"}})
	assertAppErrorCode(t, err, response.ErrCodeForbidden)

	resp, err := svc.AddMembers(context.Background(), "u1", channelID, &dto.AddMembersRequest{UserIDs: []string{"u2", "u3"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, resp.MemberIDs)
}
