package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"filedock/pkg/storage"

	gcpstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Matches the page size of an S3 listing
const listPageSize = 1000

// ListObjects reads a single page of the flat (non-delimited) listing under prefix
func (g *GCPStorage) ListObjects(ctx context.Context, bucketName string, prefix string) (*storage.ObjectPage, error) {
	g.logger.Debug("Starting GCP ListObjects operation", "bucket", bucketName, "prefix", prefix)

	it := g.client.Bucket(bucketName).Objects(ctx, &gcpstorage.Query{Prefix: prefix})

	var attrs []*gcpstorage.ObjectAttrs
	nextToken, err := iterator.NewPager(it, listPageSize, "").NextPage(&attrs)
	if err != nil {
		return nil, fmt.Errorf("error listing objects: %w", err)
	}

	page := &storage.ObjectPage{
		IsTruncated: nextToken != "",
		NextToken:   nextToken,
	}
	if attrs != nil {
		page.Objects = make([]storage.Object, 0, len(attrs))
		for _, a := range attrs {
			page.Objects = append(page.Objects, mapObjectAttributes(a))
		}
	}
	return page, nil
}

func (g *GCPStorage) HeadObject(ctx context.Context, bucketName string, objectKey string) (storage.Object, error) {
	g.logger.Debug("Starting GCP HeadObject operation", "bucket", bucketName, "object", objectKey)

	attrs, err := g.client.Bucket(bucketName).Object(objectKey).Attrs(ctx)
	if err != nil {
		return storage.Object{}, wrapNotFound(err, "error getting object attributes")
	}
	return mapObjectAttributes(attrs), nil
}

func (g *GCPStorage) GetObject(ctx context.Context, bucketName string, objectKey string) (io.ReadCloser, error) {
	g.logger.Debug("Starting GCP GetObject operation", "bucket", bucketName, "object", objectKey)

	reader, err := g.client.Bucket(bucketName).Object(objectKey).NewReader(ctx)
	if err != nil {
		return nil, wrapNotFound(err, "error opening object reader")
	}
	return reader, nil
}

func (g *GCPStorage) PutObject(ctx context.Context, bucketName string, objectKey string, body io.Reader, size int64, contentType string) error {
	g.logger.Debug("Starting GCP PutObject operation", "bucket", bucketName, "object", objectKey, "size", size)

	// Cancelling the context aborts the upload instead of committing a partial object
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.client.Bucket(bucketName).Object(objectKey).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("error writing object data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("error finalizing object upload: %w", err)
	}
	return nil
}

func (g *GCPStorage) DeleteObject(ctx context.Context, bucketName string, objectKey string) error {
	g.logger.Debug("Starting GCP DeleteObject operation", "bucket", bucketName, "object", objectKey)

	if err := g.client.Bucket(bucketName).Object(objectKey).Delete(ctx); err != nil {
		return wrapNotFound(err, "error deleting object")
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gcpstorage.ErrObjectNotExist) {
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrObjectNotFound, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
