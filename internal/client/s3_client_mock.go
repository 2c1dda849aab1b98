package client

import (
	"context"
	"io"
	"time"
)

// MockS3Client implements S3ClientInterface for testing without AWS credentials
type MockS3Client struct {
	Bucket   string
	Region   string
	Endpoint string

	// Optional function overrides for custom test behavior
	GenerateFileKeyFunc func(kind, conversationID, fileExt string) (string, error)
	UploadFileFunc      func(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFileFunc      func(ctx context.Context, key string) error
	GetFileURLFunc      func(key string) string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "ap-northeast-2",
	}
}

func (m *MockS3Client) GenerateFileKey(kind, conversationID, fileExt string) (string, error) {
	if m.GenerateFileKeyFunc != nil {
		return m.GenerateFileKeyFunc(kind, conversationID, fileExt)
	}
	return generateFileKey(time.Now(), kind, conversationID, fileExt)
}

func (m *MockS3Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, key, file, contentType)
	}
	return m.GetFileURL(key), nil
}

func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	if m.GetFileURLFunc != nil {
		return m.GetFileURLFunc(key)
	}
	return fileURL("", m.Endpoint, m.Bucket, m.Region, key)
}

// Ensure MockS3Client implements S3ClientInterface
var _ S3ClientInterface = (*MockS3Client)(nil)
