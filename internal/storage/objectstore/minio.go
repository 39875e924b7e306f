// Package objectstore wraps the MinIO client used for issue photos and
// other user uploads.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/civicpulse-api/internal/config"
	"github.com/gravadigital/civicpulse-api/internal/logger"
	"github.com/gravadigital/civicpulse-api/internal/validation"
)

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Store uploads files to a MinIO (S3-compatible) bucket
type Store struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
	log         *log.Logger
}

// New connects to MinIO and ensures the configured bucket exists
func New(ctx context.Context, cfg config.ObjectStoreConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	s := &Store{
		client:      client,
		bucket:      cfg.Bucket,
		maxFileSize: cfg.MaxFileSize,
		log:         logger.ObjectStore(),
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		s.log.Info("Bucket created", "bucket", cfg.Bucket)
	}

	s.log.Info("Object store connected", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return s, nil
}

// UploadImage stores an image under a generated object key and returns
// a presigned URL valid for seven days.
func (s *Store) UploadImage(ctx context.Context, filename string, size int64, reader io.Reader) (string, error) {
	if size > s.maxFileSize {
		return "", validation.NewError("file exceeds maximum size of %d bytes", s.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", validation.NewError("unsupported file type %q", ext)
	}

	objectKey := fmt.Sprintf("uploads/%s/%s%s", time.Now().Format("2006/01"), uuid.New(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.log.Error("Upload failed", "object", objectKey, "error", err)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, 7*24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object URL: %w", err)
	}

	s.log.Info("Image uploaded", "object", objectKey, "size", size)
	return url.String(), nil
}
