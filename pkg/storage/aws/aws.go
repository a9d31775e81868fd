package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"filedock/internal/config"
	"filedock/internal/provider/registry"
	"filedock/pkg/common"
	"filedock/pkg/storage"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func init() {
	registry.Register("aws", registry.Registration{
		ConfigCheck:  isConfigured,
		Initializer:  initialize,
		RequiredKeys: []string{"aws.region"},
	})
}

func isConfigured(cfg *config.Config) bool {
	return cfg.AWS != nil && cfg.AWS.Region != ""
}

func initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if !isConfigured(cfg) {
		return nil, fmt.Errorf("AWS configuration missing or incomplete")
	}
	return NewAWSStorage(ctx, Options{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
}

type Options struct {
	Region string
	// Static credentials; when empty the default AWS credential chain is used
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint of an S3-compatible service, empty for AWS
	Endpoint     string
	UsePathStyle bool
}

type AWSStorage struct {
	client *s3.Client
	logger *slog.Logger
}

var _ storage.Storage = (*AWSStorage)(nil)

func NewAWSStorage(ctx context.Context, opts Options, logger *slog.Logger) (*AWSStorage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = awssdk.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return newAWSStorage(client, logger), nil
}

func newAWSStorage(client *s3.Client, logger *slog.Logger) *AWSStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AWSStorage{
		client: client,
		logger: logger,
	}
}

func (s *AWSStorage) ProviderName() common.Provider {
	return common.AWS
}

func (s *AWSStorage) CheckCredentials(ctx context.Context) (int, error) {
	s.logger.Debug("Starting AWS CheckCredentials operation")

	out, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{
		MaxBuckets: awssdk.Int32(1),
	})
	if err != nil {
		return statusCode(err), fmt.Errorf("error listing buckets: %w", err)
	}

	if raw, ok := awsmiddleware.GetRawResponse(out.ResultMetadata).(*smithyhttp.Response); ok && raw.Response != nil {
		return raw.StatusCode, nil
	}
	return http.StatusOK, nil
}

func (s *AWSStorage) ListObjects(ctx context.Context, bucket, prefix string) (*storage.ObjectPage, error) {
	s.logger.Debug("Starting AWS ListObjects operation", "bucket", bucket, "prefix", prefix)

	input := &s3.ListObjectsV2Input{
		Bucket: awssdk.String(bucket),
	}
	if prefix != "" {
		input.Prefix = awssdk.String(prefix)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error listing objects: %w", err)
	}

	page := &storage.ObjectPage{
		IsTruncated: awssdk.ToBool(out.IsTruncated),
		NextToken:   awssdk.ToString(out.NextContinuationToken),
	}
	if out.Contents != nil {
		page.Objects = make([]storage.Object, 0, len(out.Contents))
		for _, obj := range out.Contents {
			page.Objects = append(page.Objects, mapObject(obj))
		}
	}
	return page, nil
}

func (s *AWSStorage) HeadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	s.logger.Debug("Starting AWS HeadObject operation", "bucket", bucket, "key", key)

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return storage.Object{}, wrapNotFound(err, "error getting object metadata")
	}

	return storage.Object{
		Key:          key,
		Size:         awssdk.ToInt64(out.ContentLength),
		LastModified: awssdk.ToTime(out.LastModified),
		StorageClass: string(out.StorageClass),
		ContentType:  awssdk.ToString(out.ContentType),
		ETag:         trimETag(awssdk.ToString(out.ETag)),
	}, nil
}

func (s *AWSStorage) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	s.logger.Debug("Starting AWS GetObject operation", "bucket", bucket, "key", key)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, wrapNotFound(err, "error getting object")
	}
	return out.Body, nil
}

func (s *AWSStorage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	s.logger.Debug("Starting AWS PutObject operation", "bucket", bucket, "key", key, "size", size)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(bucket),
		Key:           awssdk.String(key),
		Body:          body,
		ContentLength: awssdk.Int64(size),
		ContentType:   awssdk.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("error uploading object: %w", err)
	}
	return nil
}

func (s *AWSStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	s.logger.Debug("Starting AWS DeleteObject operation", "bucket", bucket, "key", key)

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awssdk.String(bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return fmt.Errorf("error deleting object: %w", err)
	}
	return nil
}

// The S3 client holds no resources that need releasing
func (s *AWSStorage) Close() error {
	return nil
}

func mapObject(obj types.Object) storage.Object {
	return storage.Object{
		Key:          awssdk.ToString(obj.Key),
		Size:         awssdk.ToInt64(obj.Size),
		LastModified: awssdk.ToTime(obj.LastModified),
		StorageClass: string(obj.StorageClass),
		ETag:         trimETag(awssdk.ToString(obj.ETag)),
	}
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}

func wrapNotFound(err error, msg string) error {
	if isNotFound(err) {
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrObjectNotFound, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// HEAD responses carry no body, so a missing key surfaces as types.NotFound or a bare 404
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}

	return statusCode(err) == http.StatusNotFound
}

func statusCode(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
