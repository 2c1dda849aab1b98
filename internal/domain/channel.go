package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel represents a workspace channel
type Channel struct {
	BaseModel
	WorkspaceID uuid.UUID       `gorm:"type:uuid;not null;index:idx_channels_workspace_id" json:"workspaceId"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	IsPrivate   bool            `gorm:"default:false" json:"isPrivate"`
	CreatedBy   string          `gorm:"type:varchar(128);not null" json:"createdBy"`
	Members     []ChannelMember `gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TableName specifies the table name for Channel
func (Channel) TableName() string {
	return "channels"
}

// ChannelMember represents a user in a channel
type ChannelMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_channel_members_channel_user" json:"channelId"`
	UserID    string    `gorm:"type:varchar(128);not null;uniqueIndex:uq_channel_members_channel_user;index:idx_channel_members_user_id" json:"userId"`
	JoinedAt  time.Time `gorm:"not null" json:"joinedAt"`
}

func (ChannelMember) TableName() string {
	return "channel_members"
}

func (m *ChannelMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}
