package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// CheckCredentials lists at most one bucket of the project
func (g *GCPStorage) CheckCredentials(ctx context.Context) (int, error) {
	g.logger.Debug("Starting GCP CheckCredentials operation", "project", g.projectID)

	it := g.client.Buckets(ctx, g.projectID)
	it.PageInfo().MaxSize = 1

	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return statusCode(err), fmt.Errorf("error listing buckets: %w", err)
	}
	return http.StatusOK, nil
}

func statusCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
