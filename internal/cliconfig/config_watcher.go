package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ClusterPortList is a concurrency-safe holder for the live cluster port
// list. The config watcher updates it; the console reads it when a
// cluster-shutdown directive is issued, so the shutdown always uses the
// ports currently in the config file.
type ClusterPortList struct {
	mu    sync.RWMutex
	ports []int
}

// NewClusterPortList creates a holder seeded with the given ports.
func NewClusterPortList(ports []int) *ClusterPortList {
	l := &ClusterPortList{}
	l.Set(ports)
	return l
}

// Set replaces the port list.
func (l *ClusterPortList) Set(ports []int) {
	l.mu.Lock()
	l.ports = append(l.ports[:0:0], ports...)
	l.mu.Unlock()
}

// Get returns a copy of the current port list.
func (l *ClusterPortList) Get() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]int(nil), l.ports...)
}

// ConfigWatcher monitors the rconctl config file via fsnotify and reloads
// the cluster port list on change.
type ConfigWatcher struct {
	path  string
	ports *ClusterPortList
	log   zerolog.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewConfigWatcher creates a watcher for path that publishes reloaded
// cluster ports into ports.
func NewConfigWatcher(path string, ports *ClusterPortList) *ConfigWatcher {
	return &ConfigWatcher{path: path, ports: ports, log: Logger()}
}

// Run watches the config file's directory until ctx is cancelled. Editors
// replace files rather than writing in place, so the directory is watched
// and events are filtered by name; writes are debounced before reloading.
func (w *ConfigWatcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn().Err(err).Msg("config watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config watcher: failed to watch config directory")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watcher: error")
		}
	}
}

func (w *ConfigWatcher) debounceReload(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(delay, w.reload)
}

func (w *ConfigWatcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config watcher: reload failed")
		return
	}
	w.ports.Set(fc.ClusterPorts)
	w.log.Info().Ints("cluster_ports", fc.ClusterPorts).Msg("config watcher: cluster ports reloaded")
}
