package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumizer/internal/errors"
)

// FileWatcher watches input files for changes and triggers a rerun callback.
// Events are debounced so editors that write in bursts cause one rerun.
type FileWatcher struct {
	mu sync.RWMutex

	paths       []string
	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewFileWatcher creates a watcher for the given paths. onChange runs on the
// watcher goroutine after the debounce window closes.
func NewFileWatcher(paths []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) (*FileWatcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}

	return &FileWatcher{
		paths:         slices.Clone(paths),
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1), // Buffered to prevent blocking
		onChange:      onChange,
		logger:        logger,
	}, nil
}

// Start begins watching the configured files for changes
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("file watcher is already running")
	}

	if err := fw.initializeWatcher(); err != nil {
		return err
	}

	for _, path := range fw.paths {
		if err := fw.addPathToWatcher(path); err != nil && fw.logger != nil {
			fw.logger.Warn("Failed to watch file", "file", path, "error", err)
		}
	}

	fw.running = true
	go fw.watchLoop()

	if fw.logger != nil {
		fw.logger.Info("File watcher started",
			"files", fw.paths,
			"debounce_delay", fw.debounceDelay)
	}
	return nil
}

// initializeWatcher creates and initializes the file system watcher
func (fw *FileWatcher) initializeWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.fsWatcher = watcher

	if err := fw.updateModTimes(); err != nil {
		fw.cleanupWatcher()
		return fmt.Errorf("failed to get initial file modification times: %w", err)
	}

	return nil
}

// cleanupWatcher closes the file watcher and logs any errors
func (fw *FileWatcher) cleanupWatcher() {
	if fw.fsWatcher != nil {
		if closeErr := fw.fsWatcher.Close(); closeErr != nil && fw.logger != nil {
			fw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
	}
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return nil
	}

	// Signal stop
	close(fw.stopChan)

	// Stop debounce timer if running
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	// Close file system watcher
	if fw.fsWatcher != nil {
		if err := fw.fsWatcher.Close(); err != nil {
			if fw.logger != nil {
				fw.logger.LogError(err, "Failed to close file system watcher")
			}
			return err
		}
	}

	fw.running = false

	if fw.logger != nil {
		fw.logger.Info("File watcher stopped")
	}

	return nil
}

// addPathToWatcher adds a file and its directory to the file system watcher
func (fw *FileWatcher) addPathToWatcher(file string) error {
	// Watch the file itself
	if err := fw.fsWatcher.Add(file); err != nil {
		// If the file doesn't exist, watch its directory instead
		if os.IsNotExist(err) {
			dir := filepath.Dir(file)
			if err := fw.fsWatcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			if fw.logger != nil {
				fw.logger.Info("Watching directory for file",
					"file", file, "directory", dir)
			}
		} else {
			return fmt.Errorf("failed to watch file %s: %w", file, err)
		}
	}

	// Also watch the directory to catch atomic writes (rename operations)
	dir := filepath.Dir(file)
	if err := fw.fsWatcher.Add(dir); err != nil {
		if fw.logger != nil {
			fw.logger.Warn("Failed to watch directory for atomic writes",
				"directory", dir, "error", err)
		}
	}

	return nil
}

// updateModTimes updates the stored modification times for all watched files
func (fw *FileWatcher) updateModTimes() error {
	for _, file := range fw.paths {
		if stat, err := os.Stat(file); err == nil {
			fw.lastModTime[file] = stat.ModTime()
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat file %s: %w", file, err)
		}
	}

	return nil
}

// hasFileChanged checks if a file has been modified since last check
func (fw *FileWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			// File was deleted
			if _, exists := fw.lastModTime[file]; exists {
				delete(fw.lastModTime, file)
				return true
			}
		}
		return false
	}

	lastMod, exists := fw.lastModTime[file]
	if !exists || stat.ModTime().After(lastMod) {
		fw.lastModTime[file] = stat.ModTime()
		return true
	}

	return false
}

// watchLoop is the main event loop for file watching
func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-fw.fsWatcher.Events:
			if !ok {
				return
			}

			if fw.shouldProcessEvent(event) {
				fw.scheduleReload()
			}

		case err, ok := <-fw.fsWatcher.Errors:
			if !ok {
				return
			}
			if fw.logger != nil {
				fw.logger.LogError(err, "File watcher error")
			}

		case <-fw.reloadChan:
			// Debounced reload trigger
			if fw.hasAnyFileChanged() {
				if fw.logger != nil {
					fw.logger.Info("Watched files changed, triggering rerun")
				}
				fw.onChange()
			}

		case <-fw.stopChan:
			return
		}
	}
}

// shouldProcessEvent determines if a file system event should trigger a rerun check
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	isWatchedFile := false
	for _, file := range fw.paths {
		if event.Name == file || filepath.Base(event.Name) == filepath.Base(file) {
			isWatchedFile = true
			break
		}
	}

	if !isWatchedFile {
		return false
	}

	// Process write, create, and rename events
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasAnyFileChanged checks if any of the watched files have changed
func (fw *FileWatcher) hasAnyFileChanged() bool {
	return slices.ContainsFunc(fw.paths, fw.hasFileChanged)
}

// scheduleReload schedules a debounced reload
func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	// Reset the debounce timer
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		select {
		case fw.reloadChan <- struct{}{}:
			// Rerun scheduled
		default:
			// Channel is full, rerun already scheduled
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

// WatchedPaths returns the list of files being watched
func (fw *FileWatcher) WatchedPaths() []string {
	return slices.Clone(fw.paths)
}
