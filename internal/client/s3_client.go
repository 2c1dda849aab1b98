package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appConfig "teamchat-service/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Attachment kinds accepted by GenerateFileKey.
const (
	AttachmentImages = "images"
	AttachmentFiles  = "files"
)

// S3ClientInterface defines the interface for S3 operations
type S3ClientInterface interface {
	GenerateFileKey(kind, conversationID, fileExt string) (string, error)
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// S3Client wraps AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string // MinIO
	publicURL string
}

// NewS3Client creates a new S3 client
func NewS3Client(cfg *appConfig.S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		// MinIO requires explicit credentials
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for MinIO endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Client{
		client:    s3Client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  cfg.Endpoint,
		publicURL: cfg.PublicURL,
	}, nil
}

// GenerateFileKey generates a unique S3 file key
// Format: chat/{kind}/{conversationId}/{year}/{month}/{uuid}_{timestamp}.ext
func (c *S3Client) GenerateFileKey(kind, conversationID, fileExt string) (string, error) {
	return generateFileKey(time.Now(), kind, conversationID, fileExt)
}

func generateFileKey(now time.Time, kind, conversationID, fileExt string) (string, error) {
	if kind != AttachmentImages && kind != AttachmentFiles {
		return "", fmt.Errorf("invalid attachment kind: %s (must be 'images' or 'files')", kind)
	}
	if conversationID == "" || strings.Contains(conversationID, "/") {
		return "", fmt.Errorf("invalid conversation id: %q", conversationID)
	}

	return fmt.Sprintf("chat/%s/%s/%s/%s/%s_%d%s",
		kind, conversationID, now.Format("2006"), now.Format("01"),
		uuid.New().String(), now.Unix(), strings.ToLower(fileExt)), nil
}

// UploadFile uploads a file to S3 and returns its URL
func (c *S3Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return c.GetFileURL(key), nil
}

// DeleteFile deletes a file from S3
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for a file
func (c *S3Client) GetFileURL(key string) string {
	return fileURL(c.publicURL, c.endpoint, c.bucket, c.region, key)
}

func fileURL(publicURL, endpoint, bucket, region, key string) string {
	if publicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(publicURL, "/"), key)
	}
	// MinIO: http://localhost:9000/bucket/key
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(endpoint, "/"), bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
