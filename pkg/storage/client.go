package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ClientConfig carries the provider-independent settings of a Client
type ClientConfig struct {
	// Base public URL; a file's URL is this URL with its path replaced by the file key
	PublicURL string
	// Optional default bucket
	Bucket string
}

// Client binds a provider connection, a bucket and a public URL template.
// A Client is never mutated after construction, WithBucket returns a copy,
// so one value may be shared between goroutines.
type Client struct {
	api      Storage
	urls     *URLBuilder
	bucket   string
	logger   *slog.Logger
	validate *validator.Validate
}

// NewClient parses the public URL once and wraps api. It fails only when the public URL is not absolute.
func NewClient(api Storage, cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if api == nil {
		return nil, newError("new", ErrConfiguration, "storage provider is required", nil)
	}

	urls, err := NewURLBuilder(cfg.PublicURL)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:      api,
		urls:     urls,
		bucket:   cfg.Bucket,
		logger:   logger.With("provider", string(api.ProviderName())),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// WithBucket returns a client bound to bucket. The bucket is not checked for existence.
func (c *Client) WithBucket(bucket string) *Client {
	clone := *c
	clone.bucket = bucket
	return &clone
}

func (c *Client) Bucket() string {
	return c.bucket
}

// URL builds the public URL of key: the base URL with its path replaced, query and fragment dropped
func (c *Client) URL(key string) string {
	return c.urls.URL(key)
}

func (c *Client) Close() error {
	return c.api.Close()
}

// List returns the files under opts.Path in provider order, skipping zero-byte directory markers.
// Only the first page of the provider listing is read.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]File, error) {
	c.logger.Debug("Starting List operation", "bucket", c.bucket, "prefix", opts.Path)

	files, err := c.list(ctx, opts)
	if err != nil {
		return nil, normalize("list", "failed to list files", err)
	}
	return files, nil
}

func (c *Client) list(ctx context.Context, opts ListOptions) ([]File, error) {
	const op = "list"

	if err := c.guard(ctx, op); err != nil {
		return nil, err
	}

	page, err := c.api.ListObjects(ctx, c.bucket, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("error listing objects in bucket %s: %w", c.bucket, err)
	}
	if page == nil || len(page.Objects) == 0 {
		return nil, newError(op, ErrNotFound, "no files found", nil)
	}
	if page.IsTruncated {
		c.logger.Debug("Listing holds more than one page, only the first page is returned", "bucket", c.bucket, "prefix", opts.Path)
	}

	files := make([]File, 0, len(page.Objects))
	for _, obj := range page.Objects {
		if obj.Size == 0 {
			continue
		}
		files = append(files, c.newFile(obj.Key, obj.Size, obj.LastModified, contentTypeOr(obj.Key, unknownContentType)))
	}
	if len(files) == 0 {
		return nil, newError(op, ErrNotFound, "no files found", nil)
	}

	return files, nil
}

// Upload stores opts.Path or opts.Buffer under opts.Destination and returns the resulting file
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (File, error) {
	c.logger.Debug("Starting Upload operation", "bucket", c.bucket, "key", opts.Destination, "path", opts.Path)

	file, err := c.upload(ctx, opts)
	if err != nil {
		return File{}, normalize("upload", "failed to upload file", err)
	}
	return file, nil
}

func (c *Client) upload(ctx context.Context, opts UploadOptions) (File, error) {
	const op = "upload"

	if err := c.guard(ctx, op); err != nil {
		return File{}, err
	}
	if err := c.validate.Struct(opts); err != nil {
		return File{}, newError(op, ErrInvalidArgument, "exactly one of path or buffer and a destination are required", err)
	}

	contentType := contentTypeOr(opts.Destination, contentTypeOr(opts.Path, defaultContentType))

	var body io.Reader
	var size int64
	if opts.Path != "" {
		f, err := os.Open(opts.Path)
		if err != nil {
			return File{}, fmt.Errorf("error opening %s: %w", opts.Path, err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return File{}, fmt.Errorf("error reading file info for %s: %w", opts.Path, err)
		}
		if info.IsDir() {
			return File{}, newError(op, ErrInvalidArgument, fmt.Sprintf("%s is a directory", opts.Path), nil)
		}
		body, size = f, info.Size()
	} else {
		body, size = bytes.NewReader(opts.Buffer), int64(len(opts.Buffer))
	}

	if err := c.api.PutObject(ctx, c.bucket, opts.Destination, body, size, contentType); err != nil {
		return File{}, fmt.Errorf("error putting object %s: %w", opts.Destination, err)
	}

	// The head call confirms the write landed and carries the authoritative timestamp
	head, err := c.api.HeadObject(ctx, c.bucket, opts.Destination)
	if err != nil {
		return File{}, fmt.Errorf("error reading metadata of uploaded object %s: %w", opts.Destination, err)
	}

	return c.newFile(opts.Destination, size, head.LastModified, contentType), nil
}

// Delete removes opts.File. Deleting a missing key fails with ErrNotFound.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) error {
	c.logger.Debug("Starting Delete operation", "bucket", c.bucket, "key", opts.File)

	return normalize("delete", "failed to delete file", c.delete(ctx, opts))
}

func (c *Client) delete(ctx context.Context, opts DeleteOptions) error {
	const op = "delete"

	if err := c.guard(ctx, op); err != nil {
		return err
	}
	if err := c.validate.Struct(opts); err != nil {
		return newError(op, ErrInvalidArgument, "a file key is required", err)
	}

	if err := c.exists(ctx, op, opts.File); err != nil {
		return err
	}

	if err := c.api.DeleteObject(ctx, c.bucket, opts.File); err != nil {
		return fmt.Errorf("error deleting object %s: %w", opts.File, err)
	}
	return nil
}

// Info returns the metadata of opts.File as reported by a head call
func (c *Client) Info(ctx context.Context, opts InfoOptions) (FileInfo, error) {
	c.logger.Debug("Starting Info operation", "bucket", c.bucket, "key", opts.File)

	info, err := c.info(ctx, opts)
	if err != nil {
		return FileInfo{}, normalize("info", "failed to read file metadata", err)
	}
	return info, nil
}

func (c *Client) info(ctx context.Context, opts InfoOptions) (FileInfo, error) {
	const op = "info"

	if err := c.guard(ctx, op); err != nil {
		return FileInfo{}, err
	}
	if err := c.validate.Struct(opts); err != nil {
		return FileInfo{}, newError(op, ErrInvalidArgument, "a file key is required", err)
	}

	head, err := c.api.HeadObject(ctx, c.bucket, opts.File)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return FileInfo{}, newError(op, ErrNotFound, "File does not exist!", err)
		}
		return FileInfo{}, fmt.Errorf("error reading metadata of %s: %w", opts.File, err)
	}

	contentType := head.ContentType
	if contentType == "" {
		contentType = contentTypeOr(opts.File, unknownContentType)
	}

	return FileInfo{
		File:         c.newFile(opts.File, head.Size, head.LastModified, contentType),
		Bucket:       c.bucket,
		StorageClass: head.StorageClass,
		ETag:         head.ETag,
	}, nil
}

// Download streams opts.File to opts.OutFile. An existing local file fails with ErrConflict before any remote call.
// The body is written to a temporary file next to OutFile and linked into place once complete,
// so a file created at OutFile in the meantime is never replaced and fails with ErrConflict.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) error {
	c.logger.Debug("Starting Download operation", "bucket", c.bucket, "key", opts.File, "out", opts.OutFile)

	return normalize("download", "failed to download file", c.download(ctx, opts))
}

func (c *Client) download(ctx context.Context, opts DownloadOptions) error {
	const op = "download"

	if err := c.requireBucket(op); err != nil {
		return err
	}
	if err := c.validate.Struct(opts); err != nil {
		return newError(op, ErrInvalidArgument, "a file key and an output path are required", err)
	}

	if _, err := os.Stat(opts.OutFile); err == nil {
		return newError(op, ErrConflict, "file already exists", nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error checking %s: %w", opts.OutFile, err)
	}

	if err := c.checkCredentials(ctx, op); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(opts.OutFile), 0o755); err != nil {
		return fmt.Errorf("error creating directory for %s: %w", opts.OutFile, err)
	}

	if err := c.exists(ctx, op, opts.File); err != nil {
		return err
	}

	body, err := c.api.GetObject(ctx, c.bucket, opts.File)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return newError(op, ErrNotFound, "File does not exist!", err)
		}
		return fmt.Errorf("error getting object %s: %w", opts.File, err)
	}
	if body == nil {
		return newError(op, ErrOperation, "response body is empty", nil)
	}
	defer body.Close()

	return writeExclusive(op, opts.OutFile, body)
}

// writeExclusive copies body to a temporary file in the directory of outFile, then hard links it to outFile.
// Linking fails when outFile exists, so concurrent writers to the same path cannot overwrite each other.
func writeExclusive(op, outFile string, body io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(outFile), "."+filepath.Base(outFile)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file for %s: %w", outFile, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", outFile, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("error flushing %s: %w", outFile, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file for %s: %w", outFile, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("error setting permissions on %s: %w", outFile, err)
	}

	if err := os.Link(tmpName, outFile); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return newError(op, ErrConflict, "file already exists", err)
		}
		return fmt.Errorf("error moving download into %s: %w", outFile, err)
	}
	return nil
}

// guard runs the checks shared by every data operation
func (c *Client) guard(ctx context.Context, op string) error {
	if err := c.requireBucket(op); err != nil {
		return err
	}
	return c.checkCredentials(ctx, op)
}

func (c *Client) requireBucket(op string) error {
	if c.bucket == "" {
		return newError(op, ErrConfiguration, "bucket is not set", nil)
	}
	return nil
}

func (c *Client) checkCredentials(ctx context.Context, op string) error {
	status, err := c.api.CheckCredentials(ctx)
	if err != nil {
		return newError(op, ErrAuthentication, "failed to verify credentials", err)
	}
	if status < 200 || status > 299 {
		return newError(op, ErrAuthentication, fmt.Sprintf("credential check returned status %d", status), nil)
	}
	return nil
}

func (c *Client) exists(ctx context.Context, op, key string) error {
	if _, err := c.api.HeadObject(ctx, c.bucket, key); err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return newError(op, ErrNotFound, "File does not exist!", err)
		}
		return fmt.Errorf("error checking object %s: %w", key, err)
	}
	return nil
}

func (c *Client) newFile(key string, size int64, modified time.Time, contentType string) File {
	return File{
		Name:         key[strings.LastIndex(key, "/")+1:],
		Key:          key,
		Byte:         size,
		Type:         contentType,
		URL:          c.URL(key),
		LastModified: modified,
	}
}
