package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"eduadmin-backend/shared/config"
)

// MinIOService stores directory exports in a MinIO bucket.
type MinIOService struct {
	client     *minio.Client
	bucketName string
	log        *zap.Logger
}

func NewMinIOService(ctx context.Context, cfg *config.Config, log *zap.Logger) (*MinIOService, error) {
	// Parse endpoint URL to get host
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %w", err)
	}

	endpoint := parsedURL.Host
	useSSL := cfg.MinIOUseSSL

	log.Info("🔗 Connecting to MinIO", zap.String("endpoint", endpoint), zap.Bool("ssl", useSSL))

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &MinIOService{
		client:     minioClient,
		bucketName: cfg.MinIOBucketName,
		log:        log,
	}

	if err := service.initializeBucket(ctx); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *MinIOService) initializeBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.log.Info("✅ MinIO bucket created", zap.String("bucket", s.bucketName))
	} else {
		s.log.Info("✅ MinIO bucket already exists", zap.String("bucket", s.bucketName))
	}

	return nil
}

// Bucket returns the bucket name
func (s *MinIOService) Bucket() string {
	return s.bucketName
}

// PutObject uploads data under key
func (s *MinIOService) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.log.Info("✅ Object uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
