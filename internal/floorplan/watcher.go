package floorplan

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher rebuilds the obstacle map whenever the imported floor-plan file
// changes on disk and hands the fresh map to registered callbacks. The
// previous map stays current until a rebuild succeeds.
type Watcher struct {
	path  string
	build func(path string) (*ObstacleMap, error)

	mu       sync.RWMutex
	current  *ObstacleMap
	onChange []func(*ObstacleMap)
}

// NewWatcher performs the initial build of the floor-plan file at path.
// build is typically LoadImageMap with the project's raster options.
func NewWatcher(path string, build func(string) (*ObstacleMap, error)) (*Watcher, error) {
	w := &Watcher{path: path, build: build}
	m, err := build(path)
	if err != nil {
		return nil, err
	}
	w.current = m
	return w, nil
}

// Map returns the current (latest successfully built) obstacle map.
func (w *Watcher) Map() *ObstacleMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked whenever the map is rebuilt.
func (w *Watcher) OnChange(fn func(*ObstacleMap)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Watch starts a background goroutine that rebuilds the map on file
// changes. Call the returned stop function to clean up.
func (w *Watcher) Watch() (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("floorplan watcher: %w", err)
	}
	// Watch the directory, not the file: editors that save via a temp
	// file and rename replace the inode, and a watch on the file itself
	// dies with the old inode.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("floorplan watcher add %s: %w", dir, err)
	}
	target := filepath.Clean(w.path)

	done := make(chan struct{})
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					m, err := w.build(w.path)
					if err != nil {
						// Keep serving the old map.
						continue
					}
					w.mu.Lock()
					w.current = m
					callbacks := make([]func(*ObstacleMap), len(w.onChange))
					copy(callbacks, w.onChange)
					w.mu.Unlock()
					for _, fn := range callbacks {
						fn(m)
					}
				}
			case <-fw.Errors:
				// Watch errors are not fatal; the next event may succeed.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}
