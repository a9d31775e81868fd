package mocks

import (
	"context"
	"io"

	"filedock/pkg/common"
	"filedock/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// Storage is a mock implementation of storage.Storage
type Storage struct {
	mock.Mock
}

var _ storage.Storage = (*Storage)(nil)

func (m *Storage) ProviderName() common.Provider {
	return common.AWS
}

func (m *Storage) CheckCredentials(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *Storage) ListObjects(ctx context.Context, bucket, prefix string) (*storage.ObjectPage, error) {
	args := m.Called(ctx, bucket, prefix)
	if page, ok := args.Get(0).(*storage.ObjectPage); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Storage) HeadObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(storage.Object), args.Error(1)
}

func (m *Storage) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	if body, ok := args.Get(0).(io.ReadCloser); ok {
		return body, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Storage) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, bucket, key, body, size, contentType)
	return args.Error(0)
}

func (m *Storage) DeleteObject(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

func (m *Storage) Close() error {
	args := m.Called()
	return args.Error(0)
}
