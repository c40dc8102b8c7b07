package staging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagebridge/stagebridge/internal/common"
	"github.com/stagebridge/stagebridge/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRepo(t *testing.T) *LocalRepository {
	t.Helper()
	repo, err := NewLocalRepository(t.TempDir(), testLogger())
	require.NoError(t, err)
	return repo
}

func TestLocalRepository_StartAllocatesIncreasingIndexes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), first.Index)
	assert.Equal(t, "comexample-0", first.RepositoryID())

	second, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), second.Index)

	// a different triple gets its own sequence
	other, err := repo.Start(ctx, "user", "10.0.0.1", "comexample")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), other.Index)
}

func TestLocalRepository_StartConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	const n = 20
	var wg sync.WaitGroup
	keys := make([]RepositoryKey, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
			assert.NoError(t, err)
			keys[i] = key
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]bool)
	for _, key := range keys {
		assert.False(t, seen[key.Index], "index %d allocated twice", key.Index)
		seen[key.Index] = true
	}
	assert.Len(t, seen, n)
}

func TestLocalRepository_OpenDefaultIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.OpenDefault(ctx, "user", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), first.Index)
	assert.Equal(t, "no-profile-0", first.RepositoryID())

	second, err := repo.OpenDefault(ctx, "user", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLocalRepository_AddFile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	err = repo.AddFile(ctx, nil, key, "com/example/artifact-1.0.jar", strings.NewReader("jar bytes"))
	require.NoError(t, err)

	contents, err := repo.contentsDir(key)
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(contents, "com", "example", "artifact-1.0.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar bytes", string(b))
}

func TestLocalRepository_AddFileRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
	}{
		{name: "dotdot prefix", path: "../../other/secret.txt"},
		{name: "hidden traversal", path: "a/../../../secret.txt"},
		{name: "backslash traversal", path: `..\..\other\secret.txt`},
		{name: "absolute", path: "/etc/passwd"},
		{name: "bare dotdot", path: ".."},
		{name: "empty", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.AddFile(ctx, nil, key, tt.path, strings.NewReader("x"))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestLocalRepository_AddFileRejectsUnknownKey(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	forged := NewRepositoryKey("user", "127.0.0.1", "comexample", 5)
	err := repo.AddFile(ctx, nil, forged, "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLocalRepository_AddFileRejectsStaleIndex(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	stale := NewRepositoryKey("user", "127.0.0.1", "comexample", 9)
	err = repo.AddFile(ctx, nil, stale, "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLocalRepository_AddFileEnforcesNamespaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	err = repo.AddFile(ctx, []string{"orgother"}, key, "a.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)

	err = repo.AddFile(ctx, []string{"orgother", "comexample"}, key, "a.txt", strings.NewReader("x"))
	require.NoError(t, err)
}

func TestLocalRepository_Finish(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

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

	// the contents subtree is gone, the state marker remains
	contents, err := repo.contentsDir(key)
	require.NoError(t, err)
	_, statErr := os.Stat(contents)
	assert.True(t, os.IsNotExist(statErr))

	state, err := repo.GetState(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, state)
}

func TestLocalRepository_FinishTwiceFails(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	_, err = repo.Finish(ctx, key)
	require.NoError(t, err)

	_, err = repo.Finish(ctx, key)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLocalRepository_AddFileAfterFinishFails(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	_, err = repo.Finish(ctx, key)
	require.NoError(t, err)

	err = repo.AddFile(ctx, nil, key, "late.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestLocalRepository_Release(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	_, err = repo.Finish(ctx, key)
	require.NoError(t, err)

	require.NoError(t, repo.Release(ctx, key))

	state, err := repo.GetState(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateReleased, state)
}

func TestLocalRepository_GetStateUnknownKey(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	state, err := repo.GetState(ctx, NewRepositoryKey("user", "127.0.0.1", "nope", 0))
	require.NoError(t, err)
	assert.Equal(t, StateNotFound, state)
}

func TestLocalRepository_GetStateOpen(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	key, err := repo.Start(ctx, "user", "127.0.0.1", "comexample")
	require.NoError(t, err)

	state, err := repo.GetState(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateOpen, state)
}
