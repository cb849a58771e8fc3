// Package s3 stores crop images in a MinIO/S3 bucket.
package s3

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Storage uploads objects under images/ and returns their public URL.
type Storage struct {
	client  objectPutter
	baseURL string
	bucket  string
	logger  *logger.Logger
}

// NewStorage creates the client and makes sure the bucket exists.
func NewStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, log *logger.Logger) (*Storage, error) {
	log.Info("Initializing S3 MinIO Storage",
		zap.String("endpoint", endpoint), zap.String("bucket", bucket), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", bucket, err)
		}
		log.Info("S3Storage: bucket created", zap.String("bucket", bucket))
	}

	return &Storage{
		client:  client,
		baseURL: client.EndpointURL().String(),
		bucket:  bucket,
		logger:  log.Named("S3Storage"),
	}, nil
}

// Upload stores data under a random key that keeps the original extension.
func (s *Storage) Upload(ctx context.Context, fileName, contentType string, data io.Reader, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	objectKey := fmt.Sprintf("images/%s%s", uuid.NewString(), ext)

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, data, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(fileName)},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("key", objectKey), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	s.logger.Info("Image uploaded",
		zap.String("key", info.Key), zap.String("etag", info.ETag), zap.Int64("size", info.Size))
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.baseURL, "/"), s.bucket, objectKey), nil
}
