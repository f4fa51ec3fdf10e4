package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 5m"))
	assert.NoError(t, ValidateSchedule("*/10 * * * *"))
	assert.Error(t, ValidateSchedule("every now and then"))
	assert.Error(t, ValidateSchedule(""))
}

func TestInboxSchedulerSubmitsNewContentOnce(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "one")
	write(t, filepath.Join(root, "copy-of-a.pdf"), "one")
	write(t, filepath.Join(root, "notes.png"), "skip")

	var got []string
	s := NewInboxScheduler(root, nil, func(_ context.Context, path string) error {
		got = append(got, filepath.Base(path))
		return nil
	}, nil)

	n, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	write(t, filepath.Join(root, "b.txt"), "two")
	n, err = s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, got, 2)
	assert.Equal(t, "b.txt", got[1])
}

func TestInboxSchedulerRetriesFailedSubmits(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "one")
	write(t, filepath.Join(root, "b.pdf"), "two")

	fail := true
	var got []string
	s := NewInboxScheduler(root, nil, func(_ context.Context, path string) error {
		if fail && filepath.Base(path) == "b.pdf" {
			return errors.New("queue full")
		}
		got = append(got, filepath.Base(path))
		return nil
	}, nil)

	n, err := s.RunNow(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)

	fail = false
	n, err = s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sort.Strings(got)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, got)
}

func TestInboxSchedulerForget(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.pdf")
	write(t, path, "one")

	count := 0
	s := NewInboxScheduler(root, nil, func(context.Context, string) error {
		count++
		return nil
	}, nil)
	_, err := s.RunNow(context.Background())
	require.NoError(t, err)

	hash, _, err := HashFile(path)
	require.NoError(t, err)
	s.Forget(hash)

	_, err = s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInboxSchedulerStartRejectsBadSchedule(t *testing.T) {
	s := NewInboxScheduler(t.TempDir(), nil, func(context.Context, string) error { return nil }, nil)
	assert.Error(t, s.Start("not a schedule"))

	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}
