package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "one")
	write(t, filepath.Join(root, "sub", "b.PDF"), "two")
	write(t, filepath.Join(root, "sub", "copy-of-a.pdf"), "one")
	write(t, filepath.Join(root, "notes.txt"), "three")
	write(t, filepath.Join(root, "image.png"), "four")
	write(t, filepath.Join(root, ".hidden.pdf"), "five")
	write(t, filepath.Join(root, ".cache", "c.pdf"), "six")

	results, stats, err := ScanDirectory(context.Background(), root, nil, true)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(4), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(0), stats.Failed)

	var dups []string
	for _, r := range results {
		assert.Len(t, r.HashHex, 64)
		if r.Deduplicated {
			dups = append(dups, filepath.Base(r.Path))
		}
	}
	assert.Equal(t, []string{"copy-of-a.pdf"}, dups)
	assert.Len(t, Unique(results), 3)
}

func TestScanDirectoryExtensionFilterAndHidden(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "one")
	write(t, filepath.Join(root, "b.txt"), "two")
	write(t, filepath.Join(root, ".c.pdf"), "three")

	_, stats, err := ScanDirectory(context.Background(), root, []string{".PDF"}, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), stats.Matched)
}

func TestScanDirectoryErrors(t *testing.T) {
	_, _, err := ScanDirectory(context.Background(), "  ", nil, true)
	assert.Error(t, err)

	_, _, err = ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, true)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = ScanDirectory(ctx, t.TempDir(), nil, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.txt")
	write(t, path, "abc")
	h, n, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.Equal(t, int64(3), n)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.b"))
	assert.False(t, IsHidden("/a/b.pdf"))
	assert.False(t, IsHidden("."))
	assert.True(t, AllowedExt(".PDF"))
	assert.False(t, AllowedExt("docx"))
}

func TestStartWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "one")
	write(t, filepath.Join(root, "skip.png"), "two")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "a.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial event")
	}

	_, _, err = StartWatcher(ctx, WatchConfig{})
	assert.Error(t, err)
}
