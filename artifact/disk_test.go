package artifact_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillstream/mediacore/artifact"
)

func newTestStore(t *testing.T) *artifact.DiskStore {
	t.Helper()
	store, err := artifact.NewDiskStore(t.TempDir(), "/files")
	assert.NoError(t, err)
	return store
}

func TestDiskStoreSaveOpen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path, err := store.Save(ctx, "abc/original.mp4", strings.NewReader("video bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "abc/original.mp4", path)

	f, size, err := store.Open(ctx, path)
	assert.NoError(t, err)
	defer f.Close()
	assert.Equal(t, int64(11), size)

	data, err := io.ReadAll(f)
	assert.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))
}

func TestDiskStoreOpenMissing(t *testing.T) {
	store := newTestStore(t)
	_, _, err := store.Open(context.Background(), "nope/missing.mp4")
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestDiskStoreExistsDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "abc/a.mp4", strings.NewReader("x"))
	assert.NoError(t, err)

	exists, err := store.Exists(ctx, "abc/a.mp4")
	assert.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, store.Delete(ctx, "abc/a.mp4"))

	exists, err = store.Exists(ctx, "abc/a.mp4")
	assert.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.Delete(ctx, "abc/a.mp4"), artifact.ErrNotFound)
}

func TestDiskStoreMoveCopy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "src.mp4", strings.NewReader("payload"))
	assert.NoError(t, err)

	assert.NoError(t, store.Copy(ctx, "src.mp4", "copy.mp4"))
	exists, _ := store.Exists(ctx, "src.mp4")
	assert.True(t, exists)
	exists, _ = store.Exists(ctx, "copy.mp4")
	assert.True(t, exists)

	assert.NoError(t, store.Move(ctx, "src.mp4", "moved/dst.mp4"))
	exists, _ = store.Exists(ctx, "src.mp4")
	assert.False(t, exists)

	f, size, err := store.Open(ctx, "moved/dst.mp4")
	assert.NoError(t, err)
	f.Close()
	assert.Equal(t, int64(7), size)
}

func TestDiskStoreURL(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "/files/abc/original.mp4", store.URL("abc/original.mp4"))
}
