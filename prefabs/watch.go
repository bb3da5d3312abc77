package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

type ChangeKind int

const (
	SpecChanged ChangeKind = iota
	ScriptChanged
)

// Change is one debounced file event.
type Change struct {
	Path string
	Kind ChangeKind
}

// Name is the base file name, the key scripts are cached under.
func (c Change) Name() string { return filepath.Base(c.Path) }

// Watcher reports spec and script edits under the prefab directories.
// The frame loop drains it with Pending.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan Change
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	lastErr error
}

// NewWatcher watches DiskDir and its scripts directory.
func NewWatcher() (*Watcher, error) {
	return WatchDirs(DiskDir, filepath.Join(DiskDir, "scripts"))
}

func WatchDirs(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fw,
		changes: make(chan Change, 16),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		err = w.fs.Close()
		<-w.done
	})
	return err
}

// Pending returns every queued change without blocking.
func (w *Watcher) Pending() []Change {
	var out []Change
	for {
		select {
		case c := <-w.changes:
			out = append(out, c)
		default:
			return out
		}
	}
}

// Err returns and clears the last watcher error.
func (w *Watcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.lastErr
	w.lastErr = nil
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			kind, ok := classify(ev.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, seen := last[ev.Name]; seen && now.Sub(t) < watchDebounce {
				continue
			}
			last[ev.Name] = now
			select {
			case w.changes <- Change{Path: ev.Name, Kind: kind}:
			case <-w.stop:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			w.lastErr = err
			w.mu.Unlock()
		case <-w.stop:
			return
		}
	}
}

func classify(name string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return SpecChanged, true
	case ".tengo":
		return ScriptChanged, true
	}
	return 0, false
}
