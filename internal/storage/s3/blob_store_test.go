package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	objects map[string][]byte
	ctypes  map[string]string
	listIn  *s3.ListObjectsV2Input
	err     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: map[string][]byte{}, ctypes: map[string]string{}}
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listIn = in
	if f.err != nil {
		return nil, f.err
	}
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		bucketKey := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Prefix)
		if len(key) >= len(bucketKey) && key[:len(bucketKey)] == bucketKey {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
			break
		}
	}
	out.KeyCount = aws.Int32(int32(len(out.Contents)))
	return out, nil
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	id := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[id] = body
	f.ctypes[id] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestNewWithClientRequiresClient(t *testing.T) {
	_, err := NewWithClient(nil)
	assert.Error(t, err)
}

func TestPutObjectThenExists(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	store, err := NewWithClient(api)
	require.NoError(t, err)

	exists, err := store.ExistsUnderPrefix(ctx, "raw", "ECONOMIC/IGPM/")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, int32(1), aws.ToInt32(api.listIn.MaxKeys))

	uri, err := store.PutObject(ctx, "raw", "ECONOMIC/IGPM/IGPM_Ref202402.csv", "text/csv; charset=utf-8", []byte("ANO;01"))
	require.NoError(t, err)
	assert.Equal(t, "s3://raw/ECONOMIC/IGPM/IGPM_Ref202402.csv", uri)
	assert.Equal(t, "ANO;01", string(api.objects["raw/ECONOMIC/IGPM/IGPM_Ref202402.csv"]))
	assert.Equal(t, "text/csv; charset=utf-8", api.ctypes["raw/ECONOMIC/IGPM/IGPM_Ref202402.csv"])

	exists, err = store.ExistsUnderPrefix(ctx, "raw", "ECONOMIC/IGPM/")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsUnderPrefix(ctx, "curated", "ECONOMIC/IGPM/")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("access denied")
	api := newFakeAPI()
	api.err = boom
	store, err := NewWithClient(api)
	require.NoError(t, err)

	_, err = store.ExistsUnderPrefix(ctx, "raw", "ECONOMIC/IGPM/")
	assert.ErrorIs(t, err, boom)

	_, err = store.PutObject(ctx, "raw", "ECONOMIC/IGPM.csv", "", []byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestPutObjectRequiresBucketAndKey(t *testing.T) {
	store, err := NewWithClient(newFakeAPI())
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "", "key", "", nil)
	assert.Error(t, err)
	_, err = store.PutObject(context.Background(), "raw", "", "", nil)
	assert.Error(t, err)
}
