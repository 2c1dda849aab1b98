package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"teamchat-service/internal/client"
	"teamchat-service/internal/domain"
	"teamchat-service/internal/dto"
	"teamchat-service/internal/response"
)

// MaxUploadSize bounds a single attachment.
const MaxUploadSize = 20 << 20

// UploadService stores message attachments in S3.
type UploadService struct {
	s3       client.S3ClientInterface
	messages MessageService
	logger   *zap.Logger
}

func NewUploadService(s3 client.S3ClientInterface, messages MessageService, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{s3: s3, messages: messages, logger: logger}
}

// Enabled reports whether an S3 client is configured.
func (s *UploadService) Enabled() bool {
	return s != nil && s.s3 != nil
}

// Upload stores the file under the conversation. The caller must participate in it.
func (s *UploadService) Upload(ctx context.Context, userID, conversationID, fileName, contentType string, size int64, file io.Reader) (*dto.UploadResponse, error) {
	if !s.Enabled() {
		return nil, response.NewAppError(response.ErrCodeInternal, "File storage is not configured", "")
	}
	if size <= 0 || size > MaxUploadSize {
		return nil, response.NewValidationError("File size out of range", "")
	}
	if err := s.messages.CanAccess(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	kind := client.AttachmentFiles
	messageType := domain.MessageTypeFile
	if strings.HasPrefix(contentType, "image/") {
		kind = client.AttachmentImages
		messageType = domain.MessageTypeImage
	}

	key, err := s.s3.GenerateFileKey(kind, conversationID, filepath.Ext(fileName))
	if err != nil {
		return nil, response.NewValidationError("Invalid upload target", err.Error())
	}
	url, err := s.s3.UploadFile(ctx, key, file, contentType)
	if err != nil {
		s.logger.Error("Failed to upload attachment", zap.String("key", key), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to upload file", err.Error())
	}

	return &dto.UploadResponse{
		Key:         key,
		FileURL:     url,
		FileName:    fileName,
		FileSize:    size,
		ContentType: contentType,
		MessageType: messageType,
	}, nil
}

// Delete removes an uploaded object, used when the message that referenced it
// could not be sent. The caller must participate in the key's conversation.
func (s *UploadService) Delete(ctx context.Context, userID, key string) error {
	if !s.Enabled() {
		return response.NewAppError(response.ErrCodeInternal, "File storage is not configured", "")
	}
	conversationID, ok := conversationOfKey(key)
	if !ok {
		return response.NewValidationError("Invalid file key", key)
	}
	if err := s.messages.CanAccess(ctx, userID, conversationID); err != nil {
		return err
	}
	if err := s.s3.DeleteFile(ctx, key); err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete file", err.Error())
	}
	return nil
}

// conversationOfKey extracts the conversation from chat/{kind}/{conversationId}/...
func conversationOfKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) < 4 || parts[0] != "chat" || parts[2] == "" {
		return "", false
	}
	if parts[1] != client.AttachmentImages && parts[1] != client.AttachmentFiles {
		return "", false
	}
	return parts[2], true
}
