package ml

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reports changes to artifact files on disk. Loaded artifacts are
// never swapped; the process has to be restarted to serve a new model.
type ArtifactWatcher struct {
	dir            string
	names          map[string]struct{}
	watcher        *fsnotify.Watcher
	logger         *zap.SugaredLogger
	onChange       func(path string)
	debouncePeriod time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	started atomic.Bool
	done    chan struct{}
}

// NewArtifactWatcher watches dir for writes to any of files. onChange may be nil.
func NewArtifactWatcher(dir string, files ArtifactFiles, logger *zap.SugaredLogger, onChange func(path string)) (*ArtifactWatcher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch artifact directory %s", dir)
	}
	return &ArtifactWatcher{
		dir: dir,
		names: map[string]struct{}{
			files.Model:    {},
			files.Scaler:   {},
			files.Features: {},
		},
		watcher:        watcher,
		logger:         logger,
		onChange:       onChange,
		debouncePeriod: 500 * time.Millisecond,
		pending:        make(map[string]*time.Timer),
		done:           make(chan struct{}),
	}, nil
}

// Start begins watching in the background.
func (aw *ArtifactWatcher) Start() {
	if !aw.started.CompareAndSwap(false, true) {
		return
	}
	go aw.watchLoop()
}

func (aw *ArtifactWatcher) watchLoop() {
	defer close(aw.done)
	for {
		select {
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if _, tracked := aw.names[filepath.Base(event.Name)]; !tracked {
				continue
			}
			aw.schedule(event.Name)

		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			aw.logger.Warnw("Artifact watcher error", "error", err)
		}
	}
}

// schedule coalesces bursts of events on the same file into one notification.
func (aw *ArtifactWatcher) schedule(path string) {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if timer, ok := aw.pending[path]; ok {
		timer.Stop()
	}
	aw.pending[path] = time.AfterFunc(aw.debouncePeriod, func() {
		aw.mu.Lock()
		delete(aw.pending, path)
		aw.mu.Unlock()

		aw.logger.Warnw("Artifact changed on disk; restart to load it", "file", path)
		if aw.onChange != nil {
			aw.onChange(path)
		}
	})
}

// Stop closes the underlying watcher and cancels pending notifications.
func (aw *ArtifactWatcher) Stop() error {
	err := aw.watcher.Close()
	if aw.started.Load() {
		<-aw.done
	}

	aw.mu.Lock()
	for path, timer := range aw.pending {
		timer.Stop()
		delete(aw.pending, path)
	}
	aw.mu.Unlock()
	return err
}
