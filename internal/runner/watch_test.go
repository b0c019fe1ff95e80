package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    fsnotify.Event
		onlyFile string
		want     bool
	}{
		{name: "yaml write", event: fsnotify.Event{Name: "/m/a.yaml", Op: fsnotify.Write}, want: true},
		{name: "yml create", event: fsnotify.Event{Name: "/m/a.yml", Op: fsnotify.Create}, want: true},
		{name: "yaml remove", event: fsnotify.Event{Name: "/m/a.yaml", Op: fsnotify.Remove}, want: true},
		{name: "rename counts", event: fsnotify.Event{Name: "/m/a.yaml", Op: fsnotify.Rename}, want: true},
		{name: "chmod is noise", event: fsnotify.Event{Name: "/m/a.yaml", Op: fsnotify.Chmod}, want: false},
		{name: "non-manifest file", event: fsnotify.Event{Name: "/m/notes.txt", Op: fsnotify.Write}, want: false},
		{
			name:     "single-file watch matches its file",
			event:    fsnotify.Event{Name: "/m/target.yaml", Op: fsnotify.Write},
			onlyFile: "target.yaml",
			want:     true,
		},
		{
			name:     "single-file watch ignores siblings",
			event:    fsnotify.Event{Name: "/m/other.yaml", Op: fsnotify.Write},
			onlyFile: "target.yaml",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantEvent(tt.event, tt.onlyFile))
		})
	}
}

func TestWatch_AppliesAfterChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(file, []byte("kind: environment\nname: dev\n"), 0o644))

	applied := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 20*time.Millisecond, func(context.Context) error {
			applied <- struct{}{}
			return nil
		})
	}()

	// Let the watcher establish before touching the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(file, []byte("kind: environment\nname: prod\n"), 0o644))

	select {
	case <-applied:
	case <-time.After(3 * time.Second):
		t.Fatal("apply was not triggered by the change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop on context cancel")
	}
}

func TestWatch_MissingPath(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), 0, func(context.Context) error { return nil })
	require.Error(t, err)
}
