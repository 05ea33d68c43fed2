package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the timeout passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_WriteTriggersChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faq.yaml")
	if err := writeFile(target, "categories: []"); err != nil {
		t.Fatal(err)
	}

	var changed []string
	var mu sync.Mutex
	w := NewWatcher(target, func(path string) {
		mu.Lock()
		changed = append(changed, path)
		mu.Unlock()
	}, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(target, "categories:\n  - name: A\n"); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changed) > 0
	})
	if !ok {
		t.Fatal("expected a change callback")
	}
	mu.Lock()
	defer mu.Unlock()
	if changed[0] != filepath.Clean(target) {
		t.Errorf("callback path = %q, want %q", changed[0], target)
	}
}

func TestWatcher_DebounceCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faq.yaml")
	if err := writeFile(target, "v0"); err != nil {
		t.Fatal(err)
	}

	var count int
	var mu sync.Mutex
	w := NewWatcher(target, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, WithDebounce(300*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := writeFile(target, "v"+string(rune('1'+i))); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(800 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("expected 1 debounced callback, got %d", count)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faq.yaml")
	if err := writeFile(target, "x"); err != nil {
		t.Fatal(err)
	}

	var count int
	var mu sync.Mutex
	w := NewWatcher(target, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := writeFile(filepath.Join(dir, "other.yaml"), "y"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("sibling write should not trigger, got %d callbacks", count)
	}
}

func TestWatcher_RenameOverTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "faq.yaml")
	if err := writeFile(target, "old"); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{}, 1)
	w := NewWatcher(target, func(string) {
		select {
		case done <- struct{}{}:
		default:
		}
	}, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tmp := filepath.Join(dir, ".faq.yaml.tmp")
	if err := writeFile(tmp, "new"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, target); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change callback after rename")
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing", "faq.yaml"), nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error when parent directory does not exist")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "faq.yaml")
	w := NewWatcher(target, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
	if w.Path() != target {
		t.Errorf("Path() = %q", w.Path())
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
