package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	changed := make(chan string, 4)
	w.OnChange(func(p string) { changed <- p })

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case p := <-changed:
		if filepath.Clean(p) != filepath.Clean(path) {
			t.Errorf("callback path = %q, want %q", p, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification within deadline")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	changed := make(chan string, 4)
	w.OnChange(func(p string) { changed <- p })

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("scratch"), 0600); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case p := <-changed:
		t.Errorf("unexpected notification for %q", p)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_MultipleCallbacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)
	w.OnChange(func(string) { first <- struct{}{} })
	w.OnChange(func(string) { second <- struct{}{} })

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	w.StartAsync()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("a: 2\n"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	for _, ch := range []chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(3 * time.Second):
			t.Fatal("callback not invoked within deadline")
		}
	}
}

func TestWatcher_WatchMissingDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/dir/config.yaml"); err == nil {
		t.Error("Watch should fail when the parent directory does not exist")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("first Stop failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}
