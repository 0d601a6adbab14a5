package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/wbd2023/pyscope/internal/workspace"
)

type changeRecorder struct {
	mu   sync.Mutex
	uris []string
}

func (r *changeRecorder) record(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uris = append(r.uris, uri)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uris)
}

func testFolder(t *testing.T) workspace.Folder {
	t.Helper()
	dir := t.TempDir()
	return workspace.Folder{URI: "file://" + dir, Name: filepath.Base(dir), Path: dir}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestPythonFileCreationReported(t *testing.T) {
	rec := &changeRecorder{}
	m := NewManager(rec.record)
	defer m.Stop()

	folder := testFolder(t)
	if err := m.Watch(folder, nil); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(folder.Path, "app.py"), []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if !waitUntil(t, 2*time.Second, func() bool { return rec.count() > 0 }) {
		t.Fatal("expected a change report for a new Python file")
	}
}

func TestNonPythonWritesIgnored(t *testing.T) {
	rec := &changeRecorder{}
	m := NewManager(rec.record)
	defer m.Stop()

	folder := testFolder(t)
	if err := m.Watch(folder, nil); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(folder.Path, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("non-Python files must not trigger changes, got %d", rec.count())
	}
}

func TestExcludedDirectoryIgnored(t *testing.T) {
	rec := &changeRecorder{}
	m := NewManager(rec.record)
	defer m.Stop()

	folder := testFolder(t)
	venv := filepath.Join(folder.Path, ".venv")
	if err := os.MkdirAll(venv, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if err := m.Watch(folder, []string{".venv"}); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(venv, "mod.py"), []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("files under excluded directories must be ignored, got %d", rec.count())
	}
}

func TestRewatchWithSameExclusionsIsNoop(t *testing.T) {
	rec := &changeRecorder{}
	m := NewManager(rec.record)
	defer m.Stop()

	folder := testFolder(t)
	exclude := []string{".venv"}

	if err := m.Watch(folder, exclude); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	m.mu.Lock()
	first := m.watchers[folder.URI]
	m.mu.Unlock()

	if err := m.Watch(folder, exclude); err != nil {
		t.Fatalf("rewatch failed: %v", err)
	}

	m.mu.Lock()
	second := m.watchers[folder.URI]
	m.mu.Unlock()

	if first != second {
		t.Error("identical exclusions must keep the existing watcher")
	}
}

func TestUnwatchStopsReports(t *testing.T) {
	rec := &changeRecorder{}
	m := NewManager(rec.record)
	defer m.Stop()

	folder := testFolder(t)
	if err := m.Watch(folder, nil); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	m.Unwatch(folder.URI)

	if err := os.WriteFile(filepath.Join(folder.Path, "app.py"), []byte("pass\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("unwatched folder must not report, got %d", rec.count())
	}
}
