package gcs_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/economic-index-etl/internal/storage/gcs"
)

// newTestStore creates a store whose client talks to a test server.
func newTestStore(t *testing.T, handler http.Handler) *gcs.BlobStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := gcs.New(client)
	require.NoError(t, err)
	return store
}

func TestNewRequiresClient(t *testing.T) {
	_, err := gcs.New(nil)
	assert.Error(t, err)
}

func TestPutObject(t *testing.T) {
	payload := []byte("ANO;01\n2024;1.00\n")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/b/raw/o")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), string(payload))
		fmt.Fprintln(w, `{"name": "ECONOMIC/IGPM/IGPM_Ref202402.csv", "bucket": "raw"}`)
	})
	store := newTestStore(t, handler)

	uri, err := store.PutObject(context.Background(), "raw", "ECONOMIC/IGPM/IGPM_Ref202402.csv", "text/csv", payload)
	require.NoError(t, err)
	assert.Equal(t, "gs://raw/ECONOMIC/IGPM/IGPM_Ref202402.csv", uri)
}

func TestPutObjectError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	store := newTestStore(t, handler)

	_, err := store.PutObject(context.Background(), "raw", "ECONOMIC/IGPM.csv", "text/csv", []byte("x"))
	assert.Error(t, err)
}

func TestPutObjectRequiresKey(t *testing.T) {
	store := newTestStore(t, http.NotFoundHandler())
	_, err := store.PutObject(context.Background(), "raw", "", "text/csv", nil)
	assert.Error(t, err)
}

func TestExistsUnderPrefix(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/b/raw/o")
		switch r.URL.Query().Get("prefix") {
		case "ECONOMIC/IGPM/":
			fmt.Fprintln(w, `{"kind": "storage#objects", "items": [{"name": "ECONOMIC/IGPM/IGPM_Ref202402.csv", "bucket": "raw"}]}`)
		default:
			fmt.Fprintln(w, `{"kind": "storage#objects"}`)
		}
	})
	store := newTestStore(t, handler)

	exists, err := store.ExistsUnderPrefix(context.Background(), "raw", "ECONOMIC/IGPM/")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsUnderPrefix(context.Background(), "raw", "ECONOMIC/IPCA/")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsUnderPrefixError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	store := newTestStore(t, handler)

	_, err := store.ExistsUnderPrefix(context.Background(), "raw", "ECONOMIC/IGPM/")
	assert.Error(t, err)
}
