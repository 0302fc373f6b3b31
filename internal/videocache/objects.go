package videocache

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/config"
)

const objectScheme = "s3://"

// ObjectStore reads clips from S3-compatible storage. A missing object is
// reported with an error wrapping ErrNotFound.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
}

// ParseObjectLocator splits "s3://bucket/key/path.mp4" into bucket and key.
func ParseObjectLocator(locator string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(locator, objectScheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// MinioStore is an ObjectStore backed by a MinIO or S3 endpoint.
type MinioStore struct {
	client *minio.Client
}

var _ ObjectStore = (*MinioStore)(nil)

// NewMinioStore connects to the configured endpoint. Credentials are read
// from the environment variables named in cfg.
func NewMinioStore(cfg config.ObjectStoreConfig, logger *zap.Logger) (*MinioStore, error) {
	accessKey, secretKey := cfg.Credentials()
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("videocache: %s and %s must be set for object storage", cfg.AccessKeyEnv, cfg.SecretKeyEnv)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("videocache: initializing object store client: %w", err)
	}

	logger.Debug("Object store configured", zap.String("endpoint", cfg.Endpoint), zap.Bool("ssl", cfg.UseSSL))
	return &MinioStore{client: client}, nil
}

// GetObject opens bucket/key and returns its size.
func (m *MinioStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, fmt.Errorf("object %s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, 0, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	return obj, stat.Size, nil
}
