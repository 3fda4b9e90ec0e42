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

func TestStartWatcherCreatesMissingRoots(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}})
	require.NoError(t, err, "a fresh deployment must be able to start without a pre-made inbox")
	require.DirExists(t, root)
	assert.NotNil(t, events)
	assert.NotNil(t, errs)
}

func TestStartWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "job-1_ada.pdf")
	require.NoError(t, os.WriteFile(path, []byte("cv"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, path, p)
	case <-time.After(time.Second):
		t.Fatal("initial scan emitted no event for the existing file")
	}
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}
