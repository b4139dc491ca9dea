package dictionary

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// ReloadFunc is told about every reload attempt. On error the holder keeps
// the previous set.
type ReloadFunc func(set WordSet, err error)

// Watch reloads path into h whenever the file is written or replaced, until
// ctx is done. The parent directory is watched so that editors that save
// by rename are picked up too. Bursts of events are coalesced.
func Watch(ctx context.Context, path string, h *Holder, onReload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	target := filepath.Clean(path)
	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			set, err := LoadFile(path)
			if err == nil {
				h.Store(set)
			}
			if onReload != nil {
				onReload(set, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(WordSet{}, fmt.Errorf("watch %s: %w", path, err))
			}
		}
	}
}
