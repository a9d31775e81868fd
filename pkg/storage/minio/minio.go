package minio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"filedock/internal/config"
	"filedock/internal/provider/registry"
	"filedock/pkg/common"
	"filedock/pkg/storage"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Listings stop after this many entries, matching an S3 page
const listPageSize = 1000

func init() {
	registry.Register("minio", registry.Registration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		RequiredKeys: []string{"minio.endpoint", "minio.access_key", "minio.secret_key"},
	})
}

func isConfigured(cfg *config.Config) bool {
	return cfg.MinIO != nil && cfg.MinIO.Endpoint != ""
}

func initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("MinIO configuration missing or incomplete")
	}
	return NewMinIOStorage(Options{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		UseSSL:    cfg.MinIO.UseSSL,
		Region:    cfg.MinIO.Region,
	}, logger)
}

type Options struct {
	// host:port; an http:// or https:// prefix is stripped
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Setting a region skips the bucket location lookup
	Region string
}

type MinIOStorage struct {
	client *miniogo.Client
	logger *slog.Logger
}

var _ storage.Storage = (*MinIOStorage)(nil)

func NewMinIOStorage(opts Options, logger *slog.Logger) (*MinIOStorage, error) {
	// minio expects the endpoint without a scheme
	endpoint := strings.TrimPrefix(opts.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimRight(endpoint, "/")

	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MinIOStorage{
		client: client,
		logger: logger,
	}, nil
}

func (m *MinIOStorage) ProviderName() common.Provider {
	return common.MinIO
}

func (m *MinIOStorage) CheckCredentials(ctx context.Context) (int, error) {
	m.logger.Debug("Starting MinIO CheckCredentials operation")

	if _, err := m.client.ListBuckets(ctx); err != nil {
		return miniogo.ToErrorResponse(err).StatusCode, fmt.Errorf("error listing buckets: %w", err)
	}
	return http.StatusOK, nil
}

func (m *MinIOStorage) ListObjects(ctx context.Context, bucket, prefix string) (*storage.ObjectPage, error) {
	m.logger.Debug("Starting MinIO ListObjects operation", "bucket", bucket, "prefix", prefix)

	// Cancelling stops the listing goroutine once a page worth of entries has been read
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
		MaxKeys:   listPageSize,
	}

	page := &storage.ObjectPage{}
	for info := range m.client.ListObjects(ctx, bucket, opts) {
		if info.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", info.Err)
		}
		if len(page.Objects) == listPageSize {
			page.IsTruncated = true
			page.NextToken = page.Objects[listPageSize-1].Key
			break
		}
		page.Objects = append(page.Objects, mapObjectInfo(info))
	}

	return page, nil
}

func (m *MinIOStorage) HeadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	m.logger.Debug("Starting MinIO HeadObject operation", "bucket", bucket, "key", key)

	info, err := m.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return storage.Object{}, wrapNotFound(err, "error getting object metadata")
	}
	return mapObjectInfo(info), nil
}

func (m *MinIOStorage) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	m.logger.Debug("Starting MinIO GetObject operation", "bucket", bucket, "key", key)

	obj, err := m.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, wrapNotFound(err, "error getting object")
	}

	// GetObject is lazy; Stat issues the request so a missing key fails here rather than on first read
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, wrapNotFound(err, "error getting object")
	}
	return obj, nil
}

func (m *MinIOStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	m.logger.Debug("Starting MinIO PutObject operation", "bucket", bucket, "key", key, "size", size)

	_, err := m.client.PutObject(ctx, bucket, key, body, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("error uploading object: %w", err)
	}
	return nil
}

func (m *MinIOStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	m.logger.Debug("Starting MinIO DeleteObject operation", "bucket", bucket, "key", key)

	if err := m.client.RemoveObject(ctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("error deleting object: %w", err)
	}
	return nil
}

func (m *MinIOStorage) Close() error {
	return nil
}

func mapObjectInfo(info miniogo.ObjectInfo) storage.Object {
	return storage.Object{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		StorageClass: info.StorageClass,
		ContentType:  info.ContentType,
		ETag:         strings.Trim(info.ETag, `"`),
	}
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	resp := miniogo.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket")
}

func wrapNotFound(err error, msg string) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrObjectNotFound, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
