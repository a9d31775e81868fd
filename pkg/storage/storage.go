package storage

import (
	"context"
	"errors"
	"io"

	"filedock/pkg/common"
)

// ErrObjectNotFound is returned by providers when a head or get targets a key that does not exist
var ErrObjectNotFound = errors.New("object not found")

// Storage is the set of remote primitives a provider exposes to the Client.
// Implementations translate their SDK's "missing object" failure into ErrObjectNotFound.
type Storage interface {
	ProviderName() common.Provider

	// Issues a lightweight authenticated call (list buckets) and reports the HTTP status it returned
	CheckCredentials(ctx context.Context) (int, error)

	// Returns only the first page of objects under prefix
	ListObjects(ctx context.Context, bucket, prefix string) (*ObjectPage, error)

	HeadObject(ctx context.Context, bucket, key string) (Object, error)

	// The returned body may be nil if the provider answered without one
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error

	DeleteObject(ctx context.Context, bucket, key string) error

	Close() error
}
