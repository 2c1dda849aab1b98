package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageType defines the type of message
type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeImage MessageType = "IMAGE"
	MessageTypeFile  MessageType = "FILE"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message is a channel or DM message. ConversationID holds the channel id or
// the DM id; thread replies carry ParentID and share the parent's conversation.
type Message struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"messageId"`
	ConversationID string         `gorm:"type:varchar(300);not null;index:idx_messages_conversation_created,priority:1" json:"conversationId"`
	SenderID       string         `gorm:"type:varchar(128);not null;index:idx_messages_sender_id" json:"senderId"`
	SenderName     string         `gorm:"type:varchar(255)" json:"senderName"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	MessageType    MessageType    `gorm:"type:varchar(20);default:'TEXT'" json:"messageType"`
	FileURL        *string        `gorm:"type:text" json:"fileUrl,omitempty"`
	FileName       *string        `gorm:"type:varchar(255)" json:"fileName,omitempty"`
	FileSize       *int64         `json:"fileSize,omitempty"`
	ParentID       *uuid.UUID     `gorm:"type:uuid;index:idx_messages_parent_id" json:"parentId,omitempty"`
	ReplyCount     int            `gorm:"not null;default:0" json:"replyCount"`
	IsPinned       bool           `gorm:"default:false" json:"isPinned"`
	PinnedBy       *string        `gorm:"type:varchar(128)" json:"pinnedBy,omitempty"`
	PinnedAt       *time.Time     `json:"pinnedAt,omitempty"`
	EditedAt       *time.Time     `json:"editedAt,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_messages_conversation_created,priority:2" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Reactions      []Reaction     `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MessageType == "" {
		m.MessageType = MessageTypeText
	}
	return nil
}

// Reaction is one emoji left by one user on one message.
type Reaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_reactions_message_user_emoji" json:"messageId"`
	UserID    string    `gorm:"type:varchar(128);not null;uniqueIndex:uq_reactions_message_user_emoji" json:"userId"`
	Emoji     string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_reactions_message_user_emoji" json:"emoji"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
