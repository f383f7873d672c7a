package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"realty-api/internal/core/config"
)

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}

// MinioStorage 房源图片存储（S3 兼容）
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
	log        *zap.Logger
}

func NewMinio(ctx context.Context, c config.Storage, l *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", c.Endpoint, err)
	}
	exists, err := client.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", c.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, c.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", c.Bucket, err)
		}
		l.Info("storage bucket created", zap.String("bucket", c.Bucket))
	}
	base := strings.TrimRight(c.PublicBaseURL, "/")
	if base == "" {
		base = client.EndpointURL().String() + "/" + c.Bucket
	}
	return &MinioStorage{client: client, bucket: c.Bucket, publicBase: base, log: l}, nil
}

func ObjectKey(filename string) string {
	return "listings/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func (s *MinioStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := ObjectKey(filename)
	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	s.log.Debug("image uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return s.publicBase + "/" + key, nil
}
