// Package gcs provides a destination store backed by Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// BlobStore writes artifacts to GCS buckets chosen per call.
type BlobStore struct {
	client *storage.Client
}

// New creates a GCS-backed store.
func New(client *storage.Client) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	return &BlobStore{client: client}, nil
}

// ExistsUnderPrefix lists at most one object under prefix.
func (s *BlobStore) ExistsUnderPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	query := &storage.Query{Prefix: prefix}
	if err := query.SetAttrSelection([]string{"Name"}); err != nil {
		return false, fmt.Errorf("select attrs: %w", err)
	}
	it := s.client.Bucket(bucket).Objects(ctx, query)
	_, err := it.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("list gs://%s/%s: %w", bucket, prefix, err)
	}
	return true, nil
}

// PutObject uploads data and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("bucket and key are required")
	}
	writer := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := writer.Write(data); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("write object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, key), nil
}
