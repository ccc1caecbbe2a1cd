// Package ruleswatch watches the safety rules file on disk and raises an
// event when its contents change. Rules are loaded once at startup and
// never hot-reloaded, so a change means the operator has to restart the
// server for it to take effect.
package ruleswatch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/prismhq/prism/internal/eventbus"
)

// debounceInterval is the delay after an fsnotify event before checking
// the checksum, letting a temp-write plus rename settle as one change.
const debounceInterval = 100 * time.Millisecond

// Watcher observes one rules file for content changes.
type Watcher struct {
	path     string
	bus      *eventbus.Bus
	lastHash [sha256.Size]byte
}

// New prepares a watcher for the rules file at path. A missing file is
// fine; the watcher records an empty hash and fires when it appears.
func New(path string, bus *eventbus.Bus) *Watcher {
	w := &Watcher{
		path: filepath.Clean(path),
		bus:  bus,
	}
	if h, err := hashFile(w.path); err == nil {
		w.lastHash = h
	}
	return w
}

// Run blocks watching the parent directory of the rules file until ctx
// is done. Editors and the storage layer replace the file via rename,
// which changes the inode, so the directory is watched rather than the
// file itself.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	watchDir := filepath.Dir(w.path)
	fileName := filepath.Base(w.path)
	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("watch directory %s: %w", watchDir, err)
	}
	slog.Info("watching rules file", "dir", watchDir, "file", fileName)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, w.checkChanged)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("rules watcher error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) checkChanged() {
	newHash, err := hashFile(w.path)
	if err != nil {
		slog.Warn("failed to hash rules file after change", "path", w.path, "error", err)
		return
	}
	if newHash == w.lastHash {
		return
	}
	w.lastHash = newHash

	slog.Warn("safety rules file changed on disk, restart required to apply",
		"path", w.path, "hash", fmt.Sprintf("%x", newHash[:8]))
	if w.bus != nil {
		w.bus.PublishNew(eventbus.EventTypeRulesChanged, w.path,
			"rules file changed, restart required", nil)
	}
}

func hashFile(path string) ([sha256.Size]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("hash %s: %w", path, err)
	}

	var result [sha256.Size]byte
	copy(result[:], h.Sum(nil))
	return result, nil
}
