package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledetect/internal/media"
)

func TestWalk_SkipsHiddenAndUnsupported(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".hidden.jpg"))
	touch(t, filepath.Join(root, ".cache", "inside.mp4"))
	touch(t, filepath.Join(root, "trip", "b.MP4"))
	touch(t, filepath.Join(root, "trip", "day2", "c.png"))

	got, err := Walk(root, DefaultOptions())
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "trip", "b.MP4"),
		filepath.Join(root, "trip", "day2", "c.png"),
	}
	assert.Equal(t, want, got)
}

func TestWalk_DeepTree(t *testing.T) {
	root := t.TempDir()

	dir := root
	for i := 0; i < 64; i++ {
		dir = filepath.Join(dir, "d")
	}
	touch(t, filepath.Join(dir, "deep.mkv"))

	got, err := Walk(root, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0], "deep.mkv"))
}

func TestWalk_KindFilterAppliesAtEveryDepth(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "top.jpg"))
	touch(t, filepath.Join(root, "top.mov"))
	touch(t, filepath.Join(root, "sub", "nested.jpeg"))
	touch(t, filepath.Join(root, "sub", "nested.avi"))

	imagesOnly, err := Walk(root, Options{IncludeImages: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "top.jpg"),
		filepath.Join(root, "sub", "nested.jpeg"),
	}, imagesOnly)

	videosOnly, err := Walk(root, Options{IncludeVideos: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "top.mov"),
		filepath.Join(root, "sub", "nested.avi"),
	}, videosOnly)
}

func TestWalk_Exclude(t *testing.T) {
	root := t.TempDir()

	touch(t, filepath.Join(root, "keep.jpg"))
	touch(t, filepath.Join(root, "_20260101-120000", "person", "keep.jpg.1.jpg"))

	opts := DefaultOptions()
	opts.Exclude = []string{filepath.Join(root, "_20260101-120000")}

	got, err := Walk(root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "keep.jpg")}, got)
}

func TestWalk_FindsEveryVisibleFile(t *testing.T) {
	root := t.TempDir()

	var want []string
	for _, rel := range []string{
		"1.jpg", "x/2.png", "x/y/3.mp4", "x/y/z/4.webp", "w/5.m4v", "w/v/6.gif",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		touch(t, p)
		want = append(want, p)
	}
	touch(t, filepath.Join(root, "x", ".git", "7.jpg"))
	touch(t, filepath.Join(root, "w", ".8.jpg"))

	got, err := Walk(root, DefaultOptions())
	require.NoError(t, err)

	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
	for _, p := range got {
		for _, part := range strings.Split(p[len(root):], string(filepath.Separator)) {
			assert.False(t, strings.HasPrefix(part, "."), "hidden entry returned: %s", p)
		}
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "nope"), DefaultOptions())
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.jpg"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.mp4"), make([]byte, 30), 0o644))

	files, err := Discover(root, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, media.Image, files[0].Kind)
	assert.Equal(t, int64(10), files[0].Size)
	assert.Equal(t, media.Video, files[1].Kind)
	assert.Equal(t, int64(30), files[1].Size)
}

func TestDiscover_SkipsDanglingSymlink(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "good.jpg"))
	dangling := filepath.Join(root, "dangling.jpg")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.jpg"), dangling))

	var failed []string
	opts := DefaultOptions()
	opts.OnError = func(path string, err error) {
		assert.Error(t, err)
		failed = append(failed, path)
	}

	files, err := Discover(root, opts)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "good.jpg"), files[0].Path)
	assert.Equal(t, []string{dangling}, failed)
}

func TestDiscover_NilOnError(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "good.jpg"))
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.mp4"), filepath.Join(root, "dangling.mp4")))

	files, err := Discover(root, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestWalk_SkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, "b.jpg"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var failed []string
	opts := DefaultOptions()
	opts.OnError = func(path string, _ error) { failed = append(failed, path) }

	got, err := Walk(root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.jpg")}, got)
	assert.Equal(t, []string{locked}, failed)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}
