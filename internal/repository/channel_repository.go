package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamchat-service/internal/domain"
)

// ChannelRepository defines the interface for channel data access
type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel, memberIDs []string) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Channel, error)
	AddMembers(ctx context.Context, channelID uuid.UUID, userIDs []string) error
	IsMember(ctx context.Context, channelID uuid.UUID, userID string) (bool, error)
}

type channelRepositoryImpl struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepositoryImpl{db: db}
}

// Create inserts the channel and its initial members in one transaction.
func (r *channelRepositoryImpl) Create(ctx context.Context, channel *domain.Channel, memberIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(channel).Error; err != nil {
			return err
		}
		members := newMembers(channel.ID, memberIDs)
		if len(members) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error; err != nil {
			return err
		}
		channel.Members = members
		return nil
	})
}

func (r *channelRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	var channel domain.Channel
	if err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Where("id = ?", id).
		First(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepositoryImpl) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("workspace_id = ?", workspaceID).
		Order("name ASC").
		Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// AddMembers ignores users who are already members.
func (r *channelRepositoryImpl) AddMembers(ctx context.Context, channelID uuid.UUID, userIDs []string) error {
	members := newMembers(channelID, userIDs)
	if len(members) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&members).Error
}

func (r *channelRepositoryImpl) IsMember(ctx context.Context, channelID uuid.UUID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	return count > 0, err
}

func newMembers(channelID uuid.UUID, userIDs []string) []domain.ChannelMember {
	seen := make(map[string]bool, len(userIDs))
	members := make([]domain.ChannelMember, 0, len(userIDs))
	for _, id := range userIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, domain.ChannelMember{ChannelID: channelID, UserID: id})
	}
	return members
}
