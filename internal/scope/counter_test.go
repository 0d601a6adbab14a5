package scope

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("pass\n"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
}

func TestCountFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.py", "notes.txt")
	writeFiles(t, filepath.Join(root, "src"), "c.py")
	writeFiles(t, filepath.Join(root, "src", "deep"), "d.py", "e.py")

	count := CountFiles(root, ".py", nil)
	if count != 5 {
		t.Errorf("count mismatch: got %d, want 5", count)
	}
}

func TestCountFilesPrunesExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.py", "b.py", "c.py", "d.py", "e.py")

	// The excluded tree holds far more matching files than the root; none
	// of them may leak into the count.
	venv := filepath.Join(root, ".venv", "lib")
	names := make([]string, 0, 40)
	for i := 0; i < 40; i++ {
		names = append(names, fmt.Sprintf("pkg%d.py", i))
	}
	writeFiles(t, venv, names...)

	excluded := ExclusionSet([]string{".venv", "node_modules"})
	count := CountFiles(root, ".py", excluded)
	if count != 5 {
		t.Errorf("count mismatch: got %d, want 5", count)
	}
}

func TestCountFilesMissingRoot(t *testing.T) {
	count := CountFiles(filepath.Join(t.TempDir(), "gone"), ".py", nil)
	if count != 0 {
		t.Errorf("missing root should count 0, got %d", count)
	}
}

func TestExclusionSetDropsBlanks(t *testing.T) {
	set := ExclusionSet([]string{" .git ", "", "  "})
	if len(set) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(set))
	}
	if _, ok := set[".git"]; !ok {
		t.Error("expected trimmed .git entry")
	}
}
