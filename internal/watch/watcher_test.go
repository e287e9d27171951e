package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewFileWatcher(t *testing.T) {
	t.Run("rejects empty path list", func(t *testing.T) {
		if _, err := NewFileWatcher(nil, 0, func() {}, nil); err == nil {
			t.Error("expected error for empty path list")
		}
	})

	t.Run("applies default debounce delay", func(t *testing.T) {
		fw, err := NewFileWatcher([]string{"resume.md"}, 0, func() {}, nil)
		if err != nil {
			t.Fatalf("NewFileWatcher() error: %v", err)
		}
		if fw.debounceDelay != 500*time.Millisecond {
			t.Errorf("debounceDelay = %v, want %v", fw.debounceDelay, 500*time.Millisecond)
		}
	})

	t.Run("keeps configured debounce delay", func(t *testing.T) {
		fw, err := NewFileWatcher([]string{"resume.md"}, 50*time.Millisecond, func() {}, nil)
		if err != nil {
			t.Fatalf("NewFileWatcher() error: %v", err)
		}
		if fw.debounceDelay != 50*time.Millisecond {
			t.Errorf("debounceDelay = %v, want %v", fw.debounceDelay, 50*time.Millisecond)
		}
	})
}

func TestHasFileChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.md")
	if err := os.WriteFile(path, []byte("## Summary\n"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	fw, err := NewFileWatcher([]string{path}, time.Second, func() {}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}
	if err := fw.updateModTimes(); err != nil {
		t.Fatalf("updateModTimes() error: %v", err)
	}

	if fw.hasFileChanged(path) {
		t.Error("unchanged file reported as changed")
	}

	// Push the modification time forward to defeat coarse mtime resolution.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}
	if !fw.hasFileChanged(path) {
		t.Error("touched file not reported as changed")
	}
	if fw.hasFileChanged(path) {
		t.Error("file reported as changed twice for one touch")
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if !fw.hasFileChanged(path) {
		t.Error("deleted file not reported as changed")
	}
	if fw.hasFileChanged(path) {
		t.Error("deleted file reported as changed twice")
	}
}

func TestShouldProcessEvent(t *testing.T) {
	fw, err := NewFileWatcher([]string{"/tmp/resume.md"}, time.Second, func() {}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "write to watched file",
			event: fsnotify.Event{Name: "/tmp/resume.md", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "create with matching basename in another directory",
			event: fsnotify.Event{Name: "/other/resume.md", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "rename of watched file",
			event: fsnotify.Event{Name: "/tmp/resume.md", Op: fsnotify.Rename},
			want:  true,
		},
		{
			name:  "chmod is ignored",
			event: fsnotify.Event{Name: "/tmp/resume.md", Op: fsnotify.Chmod},
			want:  false,
		},
		{
			name:  "unrelated file is ignored",
			event: fsnotify.Event{Name: "/tmp/job.txt", Op: fsnotify.Write},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fw.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestWatcherDeliversDebouncedCallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.md")
	if err := os.WriteFile(path, []byte("## Summary\n"), 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	changed := make(chan struct{}, 4)
	fw, err := NewFileWatcher([]string{path}, 50*time.Millisecond, func() {
		changed <- struct{}{}
	}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}

	if err := fw.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer func() {
		if err := fw.Stop(); err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	}()

	if !fw.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if err := fw.Start(); err == nil {
		t.Error("second Start() should fail while running")
	}

	// Two writes inside one debounce window should coalesce into one rerun.
	if err := os.WriteFile(path, []byte("## Summary\nUpdated once.\n"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.WriteFile(path, []byte("## Summary\nUpdated twice.\n"), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("failed to bump mtime: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}

	select {
	case <-changed:
		t.Error("debounced writes triggered more than one callback")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStopWithoutStart(t *testing.T) {
	fw, err := NewFileWatcher([]string{"resume.md"}, time.Second, func() {}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("Stop() before Start error: %v", err)
	}
	if fw.IsRunning() {
		t.Error("IsRunning() = true without Start")
	}
}

func TestWatchedPathsIsACopy(t *testing.T) {
	fw, err := NewFileWatcher([]string{"a.md", "b.md"}, time.Second, func() {}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error: %v", err)
	}

	paths := fw.WatchedPaths()
	paths[0] = "mutated"
	if fw.paths[0] != "a.md" {
		t.Error("WatchedPaths() exposed internal slice")
	}
}
