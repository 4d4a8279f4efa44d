// Package storage keeps uploaded files in an S3 compatible bucket (MinIO).
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/deppfellow/tours-api/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Storage writes objects into a single bucket.
type Storage struct {
	client *minio.Client
	bucket string
	logger *zerolog.Logger
}

func New(cfg config.StorageConfig, logger *zerolog.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Storage{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// EnsureBucket creates the bucket when missing.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info().Str("bucket", s.bucket).Msg("created storage bucket")
	return nil
}

// Put stores r under key and returns the key.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// Ping checks the bucket is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// UserPhotoKey names a user's photo: users/user-<id>-<unix>.<ext>.
func UserPhotoKey(userID string, unix int64, contentType string) string {
	ext := strings.TrimPrefix(contentType, "image/")
	if ext == "" || ext == contentType {
		ext = "jpeg"
	}
	return fmt.Sprintf("users/user-%s-%d.%s", userID, unix, ext)
}
