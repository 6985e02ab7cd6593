package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/cosmosql/pkg/parser"
)

// watchDebounce collapses bursts of file events into one check.
const watchDebounce = 100 * time.Millisecond

// watchCheck checks paths, then checks them again after every change until
// ctx is done.
func watchCheck(ctx context.Context, cc *CommandContext, paths []string, popts []parser.Option, jobs int) error {
	r := cc.Renderer
	styles := r.Styles()

	if _, err := checkPaths(ctx, cc, paths, popts, jobs); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs, err := watchDirs(paths)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	r.Println(styles.Muted.Render("Watching for changes. Press Ctrl+C to stop."))

	var debounce <-chan time.Time
	var changed string
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isQueryFile(event.Name) {
				continue
			}
			changed = event.Name
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watch error", "error", err)
		case <-debounce:
			debounce = nil
			r.Println(styles.Header.Render("Change detected: " + filepath.Base(changed)))
			if _, err := checkPaths(ctx, cc, paths, popts, jobs); err != nil {
				r.Errorf("Error: %v\n", err)
			}
		}
	}
}

// watchDirs returns the directories to watch for paths: directories and
// their subdirectories, and the parent of each file.
func watchDirs(paths []string) ([]string, error) {
	var dirs []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			dirs = append(dirs, filepath.Dir(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				dirs = append(dirs, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs), nil
}
