package runner

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"ccloudctl/internal/manifest"
	"ccloudctl/pkg/logging"
)

// DefaultDebounce is how long the watcher waits for the file system to
// settle before re-applying. Editors tend to fire several events per
// save.
const DefaultDebounce = 500 * time.Millisecond

// Watch re-runs apply whenever the manifest path changes, until the
// context is cancelled. The path may be a single file or a directory;
// either way the containing directory is watched, since editors replace
// files rather than write them in place.
func Watch(ctx context.Context, path string, debounce time.Duration, apply func(context.Context) error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	watchDir := path
	onlyFile := ""
	if !info.IsDir() {
		watchDir = filepath.Dir(path)
		onlyFile = filepath.Base(path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(watchDir); err != nil {
		return err
	}
	logging.Info("Runner", "Watching %s for manifest changes", watchDir)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event, onlyFile) {
				continue
			}
			logging.Debug("Runner", "Change detected: %s %s", event.Op, event.Name)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Runner", err, "Manifest watcher error")

		case <-timer.C:
			if err := apply(ctx); err != nil {
				// Watch mode keeps going; the next change gets another
				// chance.
				logging.Error("Runner", err, "Apply after change failed")
			}
		}
	}
}

// relevantEvent filters watcher noise down to manifest changes.
func relevantEvent(event fsnotify.Event, onlyFile string) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if onlyFile != "" {
		return filepath.Base(event.Name) == onlyFile
	}
	return manifest.IsManifestFile(event.Name)
}
