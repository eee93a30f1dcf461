package storage

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock implementation of Store.
type MockStore struct {
	mock.Mock
}

// ExistsUnderPrefix is the mock implementation of the prefix check.
func (m *MockStore) ExistsUnderPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	args := m.Called(ctx, bucket, prefix)
	return args.Bool(0), args.Error(1) //nolint:wrapcheck
}

// PutObject is the mock implementation of the object write.
func (m *MockStore) PutObject(ctx context.Context, bucket, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, bucket, key, contentType, data)
	return args.String(0), args.Error(1) //nolint:wrapcheck
}
