package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_RequiresFiles(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestWatcher_ReportsWrite(t *testing.T) {
	// Given: a watched tree file
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New([]string{path}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	// When: the file is rewritten
	if err := os.WriteFile(path, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Then: a change is reported
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	// Given: a watched file and a sibling
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New([]string{path}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	// When: only the sibling changes
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Then: nothing is reported
	select {
	case <-w.Changes():
		t.Fatal("unexpected change for an unwatched file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseClosesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("Changes should be closed")
	}
}
