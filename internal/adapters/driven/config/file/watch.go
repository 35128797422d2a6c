package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/polydb-cli/internal/logger"
)

// watchedOps are the events that change a file's content. Editors often
// replace a file by renaming, so the directory is watched rather than the file.
const watchedOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// watchFile calls reload, then onChange, after every change to path until
// ctx is done. Reload errors are logged and leave the previous state in place.
func watchFile(ctx context.Context, path string, reload func() error, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&watchedOps == 0 {
				continue
			}
			logger.Debug("%s changed (%s)", path, ev.Op)
			if err := reload(); err != nil {
				logger.Warn("Keeping previous %s: %v", filepath.Base(path), err)
				continue
			}
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watching %s: %v", path, err)
		}
	}
}
