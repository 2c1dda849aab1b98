package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamchat-service/internal/domain"
)

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	FindByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error)
	FindReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]*domain.Message, error)
	FindPinned(ctx context.Context, conversationID string) ([]*domain.Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool, by string, at time.Time) error
	Delete(ctx context.Context, message *domain.Message) error
	AddReaction(ctx context.Context, reaction *domain.Reaction) (bool, error)
	RemoveReaction(ctx context.Context, messageID uuid.UUID, userID, emoji string) (bool, error)
}

type messageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepositoryImpl{db: db}
}

// Create inserts the message. A reply also bumps the parent's reply count in
// the same transaction.
func (r *messageRepositoryImpl) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Reactions").Create(message).Error; err != nil {
			return err
		}
		if message.ParentID == nil {
			return nil
		}
		return adjustReplyCount(tx, *message.ParentID, 1)
	})
}

func (r *messageRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var message domain.Message
	if err := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByConversation returns one page of top-level messages, newest page
// first, each page in chronological order. Thread replies are excluded.
func (r *messageRepositoryImpl) FindByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*domain.Message, error) {
	var messages []*domain.Message
	if err := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("conversation_id = ? AND parent_id IS NULL", conversationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepositoryImpl) FindReplies(ctx context.Context, parentID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	var messages []*domain.Message
	if err := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepositoryImpl) FindPinned(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	if err := r.db.WithContext(ctx).
		Preload("Reactions").
		Where("conversation_id = ? AND is_pinned = ?", conversationID, true).
		Order("pinned_at DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepositoryImpl) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"edited_at": editedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *messageRepositoryImpl) SetPinned(ctx context.Context, id uuid.UUID, pinned bool, by string, at time.Time) error {
	updates := map[string]interface{}{
		"is_pinned": pinned,
		"pinned_by": nil,
		"pinned_at": nil,
	}
	if pinned {
		updates["pinned_by"] = by
		updates["pinned_at"] = at
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft-deletes the message. Deleting a reply decrements the parent's
// reply count in the same transaction.
func (r *messageRepositoryImpl) Delete(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", message.ID).Delete(&domain.Message{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if message.ParentID == nil {
			return nil
		}
		return adjustReplyCount(tx, *message.ParentID, -1)
	})
}

// AddReaction reports false when the same user already left the same emoji.
func (r *messageRepositoryImpl) AddReaction(ctx context.Context, reaction *domain.Reaction) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(reaction)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *messageRepositoryImpl) RemoveReaction(ctx context.Context, messageID uuid.UUID, userID, emoji string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&domain.Reaction{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func adjustReplyCount(tx *gorm.DB, parentID uuid.UUID, delta int) error {
	q := tx.Model(&domain.Message{}).Where("id = ?", parentID)
	if delta < 0 {
		q = q.Where("reply_count > 0")
	}
	return q.UpdateColumn("reply_count", gorm.Expr("reply_count + ?", delta)).Error
}
