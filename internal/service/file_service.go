package service

import (
	"context"
	"log/slog"

	"filedock/pkg/storage"

	"golang.org/x/sync/errgroup"
)

// ClientProvider hands out file clients bound to the configured bucket and public URL
type ClientProvider interface {
	GetFileClient(ctx context.Context, providerName string) (*storage.Client, error)
	GetURLBuilder() (*storage.URLBuilder, error)
}

// UploadRequest uploads either the local file Source or Data to Destination
type UploadRequest struct {
	Source      string
	Data        []byte
	Destination string
}

type DownloadRequest struct {
	Key     string
	OutFile string
}

type FileService struct {
	clients ClientProvider
	logger  *slog.Logger
}

func NewFileService(clients ClientProvider, logger *slog.Logger) *FileService {
	return &FileService{
		clients: clients,
		logger:  logger.With("service", "FileService"),
	}
}

func (s *FileService) ListFiles(ctx context.Context, providerName, bucket, prefix string) ([]storage.File, error) {
	s.logger.Debug("Starting ListFiles operation", "provider", providerName, "bucket", bucket, "prefix", prefix)

	client, err := s.getClient(ctx, providerName, bucket)
	if err != nil {
		return nil, err
	}
	defer s.closeClient(client)

	files, err := client.List(ctx, storage.ListOptions{Path: prefix})
	if err != nil {
		s.logger.Error("Failed to list files", "bucket", client.Bucket(), "prefix", prefix, "error", err)
		return nil, err
	}
	return files, nil
}

// UploadFiles runs up to concurrency uploads at once. Results follow the order of reqs.
// The first failure cancels the uploads still pending and is returned.
func (s *FileService) UploadFiles(ctx context.Context, providerName, bucket string, reqs []UploadRequest, concurrency int) ([]storage.File, error) {
	s.logger.Debug("Starting UploadFiles operation", "provider", providerName, "bucket", bucket, "count", len(reqs))

	client, err := s.getClient(ctx, providerName, bucket)
	if err != nil {
		return nil, err
	}
	defer s.closeClient(client)

	files := make([]storage.File, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(concurrency))

	for i, req := range reqs {
		g.Go(func() error {
			file, err := client.Upload(gctx, storage.UploadOptions{
				Path:        req.Source,
				Buffer:      req.Data,
				Destination: req.Destination,
			})
			if err != nil {
				s.logger.Error("Failed to upload file", "source", req.Source, "destination", req.Destination, "error", err)
				return err
			}
			files[i] = file
			s.logger.Debug("Uploaded file", "key", file.Key, "bytes", file.Byte)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *FileService) DeleteFile(ctx context.Context, providerName, bucket, key string) error {
	s.logger.Debug("Starting DeleteFile operation", "provider", providerName, "bucket", bucket, "key", key)

	client, err := s.getClient(ctx, providerName, bucket)
	if err != nil {
		return err
	}
	defer s.closeClient(client)

	if err := client.Delete(ctx, storage.DeleteOptions{File: key}); err != nil {
		s.logger.Error("Failed to delete file", "bucket", client.Bucket(), "key", key, "error", err)
		return err
	}
	return nil
}

// DownloadFiles runs up to concurrency downloads at once and stops at the first failure
func (s *FileService) DownloadFiles(ctx context.Context, providerName, bucket string, reqs []DownloadRequest, concurrency int) error {
	s.logger.Debug("Starting DownloadFiles operation", "provider", providerName, "bucket", bucket, "count", len(reqs))

	client, err := s.getClient(ctx, providerName, bucket)
	if err != nil {
		return err
	}
	defer s.closeClient(client)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit(concurrency))

	for _, req := range reqs {
		g.Go(func() error {
			if err := client.Download(gctx, storage.DownloadOptions{File: req.Key, OutFile: req.OutFile}); err != nil {
				s.logger.Error("Failed to download file", "key", req.Key, "out", req.OutFile, "error", err)
				return err
			}
			s.logger.Debug("Downloaded file", "key", req.Key, "out", req.OutFile)
			return nil
		})
	}

	return g.Wait()
}

func (s *FileService) FileInfo(ctx context.Context, providerName, bucket, key string) (storage.FileInfo, error) {
	s.logger.Debug("Starting FileInfo operation", "provider", providerName, "bucket", bucket, "key", key)

	client, err := s.getClient(ctx, providerName, bucket)
	if err != nil {
		return storage.FileInfo{}, err
	}
	defer s.closeClient(client)

	info, err := client.Info(ctx, storage.InfoOptions{File: key})
	if err != nil {
		s.logger.Error("Failed to read file metadata", "bucket", client.Bucket(), "key", key, "error", err)
		return storage.FileInfo{}, err
	}
	return info, nil
}

// FileURLs builds the public URL of each key. No provider is initialized.
func (s *FileService) FileURLs(keys []string) ([]string, error) {
	urls, err := s.clients.GetURLBuilder()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, urls.URL(key))
	}
	return out, nil
}

// getClient binds bucket when given, otherwise the client keeps the configured default
func (s *FileService) getClient(ctx context.Context, providerName, bucket string) (*storage.Client, error) {
	client, err := s.clients.GetFileClient(ctx, providerName)
	if err != nil {
		s.logger.Error("Failed to initialize file client", "provider", providerName, "error", err)
		return nil, err
	}
	if bucket != "" {
		client = client.WithBucket(bucket)
	}
	return client, nil
}

func (s *FileService) closeClient(client *storage.Client) {
	if err := client.Close(); err != nil {
		s.logger.Warn("Failed to close file client", "error", err)
	}
}

func limit(concurrency int) int {
	if concurrency < 1 {
		return 1
	}
	return concurrency
}
