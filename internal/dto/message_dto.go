package dto

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"teamchat-service/internal/conversation"
	"teamchat-service/internal/domain"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// SendMessageRequest is the body of channel, DM and thread sends
type SendMessageRequest struct {
	Content     string             `json:"content" binding:"required,min=1,max=10000"`
	MessageType domain.MessageType `json:"messageType,omitempty"`
	FileURL     *string            `json:"fileUrl,omitempty"`
	FileName    *string            `json:"fileName,omitempty"`
	FileSize    *int64             `json:"fileSize,omitempty"`
}

// UpdateMessageRequest represents the request to edit a message
type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=10000"`
}

// AddReactionRequest represents the request to react to a message
type AddReactionRequest struct {
	Emoji string `json:"emoji" binding:"required,min=1,max=64"`
}

// PageQuery is the limit/offset pair of history endpoints
type PageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Normalize clamps the query to 1..MaxPageLimit and a non-negative offset.
func (q PageQuery) Normalize() PageQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// SenderResponse identifies the author of a message
type SenderResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// ReactionSummary aggregates one emoji
type ReactionSummary struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"userIds"`
}

// MessageResponse is the full message document returned by the API and
// carried by message_received and message_updated.
type MessageResponse struct {
	MessageID      uuid.UUID          `json:"messageId"`
	ChannelID      string             `json:"channelId"`
	IsDM           bool               `json:"isDm"`
	Sender         SenderResponse     `json:"sender"`
	Content        string             `json:"content"`
	MessageType    domain.MessageType `json:"messageType"`
	FileURL        *string            `json:"fileUrl,omitempty"`
	FileName       *string            `json:"fileName,omitempty"`
	FileSize       *int64             `json:"fileSize,omitempty"`
	ParentID       *uuid.UUID         `json:"parentId,omitempty"`
	ReplyCount     int                `json:"replyCount"`
	IsPinned       bool               `json:"isPinned"`
	PinnedBy       *string            `json:"pinnedBy,omitempty"`
	PinnedAt       *time.Time         `json:"pinnedAt,omitempty"`
	EditedAt       *time.Time         `json:"editedAt,omitempty"`
	Reactions      []ReactionSummary  `json:"reactions"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func NewMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		MessageID:   m.ID,
		ChannelID:   m.ConversationID,
		IsDM:        conversation.IsDM(m.ConversationID),
		Sender:      SenderResponse{UserID: m.SenderID, Username: m.SenderName},
		Content:     m.Content,
		MessageType: m.MessageType,
		FileURL:     m.FileURL,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		ParentID:    m.ParentID,
		ReplyCount:  m.ReplyCount,
		IsPinned:    m.IsPinned,
		PinnedBy:    m.PinnedBy,
		PinnedAt:    m.PinnedAt,
		EditedAt:    m.EditedAt,
		Reactions:   summarizeReactions(m.Reactions),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func NewMessageResponses(messages []*domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, NewMessageResponse(m))
	}
	return out
}

// summarizeReactions groups by emoji in first-seen order.
func summarizeReactions(reactions []domain.Reaction) []ReactionSummary {
	sorted := make([]domain.Reaction, len(reactions))
	copy(sorted, reactions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	out := make([]ReactionSummary, 0)
	index := make(map[string]int)
	for _, r := range sorted {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(out)
			index[r.Emoji] = i
			out = append(out, ReactionSummary{Emoji: r.Emoji, UserIDs: []string{}})
		}
		out[i].Count++
		out[i].UserIDs = append(out[i].UserIDs, r.UserID)
	}
	return out
}

// UploadResponse is returned by the upload endpoint; the URL goes into a
// subsequent send as fileUrl.
type UploadResponse struct {
	Key         string             `json:"key"`
	FileURL     string             `json:"fileUrl"`
	FileName    string             `json:"fileName"`
	FileSize    int64              `json:"fileSize"`
	ContentType string             `json:"contentType"`
	MessageType domain.MessageType `json:"messageType"`
}

// PresenceResponse is a user's live or last known presence
type PresenceResponse struct {
	UserID           string     `json:"userId"`
	Username         string     `json:"username,omitempty"`
	Status           string     `json:"status"`
	LastSeen         *time.Time `json:"lastSeen,omitempty"`
	CurrentWorkspace string     `json:"currentWorkspace,omitempty"`
}
