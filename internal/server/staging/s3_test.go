package staging

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagebridge/stagebridge/internal/common"
)

// fakeS3 is an in-memory object store implementing the s3API subset.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(params.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, obj := range params.Delete.Objects {
		delete(f.objects, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func newTestS3Repo(t *testing.T) (*S3Repository, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	return newS3Repository(fake, "staging", testLogger()), fake
}

func TestS3Repository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo, fake := newTestS3Repo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)
	assert.Equal(t, "comexample-0", key.RepositoryID())

	state, err := repo.GetState(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, state)

	require.NoError(t, repo.AddFile(ctx, nil, key, "a/b.txt", strings.NewReader("hello")))
	require.NoError(t, repo.AddFile(ctx, nil, key, "c.txt", strings.NewReader("world")))

	archive, err := repo.Finish(ctx, key)
	require.NoError(t, err)

	b, err := archive.Bytes()
	require.NoError(t, err)
	entries := readZip(t, b)
	assert.Equal(t, map[string]string{
		"a/b.txt": "hello",
		"c.txt":   "world",
	}, entries)

	// only the state marker survives the finish
	assert.Len(t, fake.objects, 1)
	assert.Equal(t, "closed", string(fake.objects["user/127.0.0.1/comexample-0/repository_state"]))

	state, err = repo.GetState(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, state)
}

func TestS3Repository_FinishTwiceFails(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestS3Repo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	_, err = repo.Finish(ctx, key)
	require.NoError(t, err)

	_, err = repo.Finish(ctx, key)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestS3Repository_Release(t *testing.T) {
	ctx := context.Background()
	repo, fake := newTestS3Repo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	require.NoError(t, repo.Release(ctx, key))
	assert.Equal(t, "released", string(fake.objects["user/127.0.0.1/comexample-0/repository_state"]))
}

func TestS3Repository_AddFileRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestS3Repo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	err = repo.AddFile(ctx, nil, key, "../../other/secret.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestS3Repository_OpenDefaultIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestS3Repo(t)

	first, err := repo.OpenDefault(ctx, "user", "127.0.0.1")
	require.NoError(t, err)

	second, err := repo.OpenDefault(ctx, "user", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestS3Repository_GetStateUnknownKey(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestS3Repo(t)

	state, err := repo.GetState(ctx, NewRepositoryKey("user", "127.0.0.1", "nope", 0))
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, state)
}
