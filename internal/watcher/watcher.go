package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/wbd2023/pyscope/internal/logger"
	"github.com/wbd2023/pyscope/internal/workspace"
)

// Manager keeps one filesystem watcher per workspace folder and reports a
// folder URI whenever the set of Python files under it may have changed.
// The caller debounces; the manager only detects.
type Manager struct {
	mu       sync.Mutex
	watchers map[string]*folderWatcher
	onChange func(folderURI string)
	log      *slog.Logger
}

func NewManager(onChange func(folderURI string)) *Manager {
	return &Manager{
		watchers: make(map[string]*folderWatcher),
		onChange: onChange,
		log:      logger.ForComponent("watcher"),
	}
}

// Watch starts (or re-scopes) watching a folder, pruning the given directory
// names. A second call with identical exclusions is a no-op.
func (m *Manager) Watch(folder workspace.Folder, excludeDirs []string) error {
	m.mu.Lock()
	if existing, ok := m.watchers[folder.URI]; ok {
		if slices.Equal(existing.excludeDirs, excludeDirs) {
			m.mu.Unlock()
			return nil
		}
		existing.stop()
		delete(m.watchers, folder.URI)
	}
	m.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &folderWatcher{
		folder:      folder,
		fsw:         fsw,
		excludeDirs: slices.Clone(excludeDirs),
		ignore:      ignorePatterns(excludeDirs),
		onChange:    m.onChange,
		cancel:      cancel,
		log:         m.log,
	}

	if err := w.addTree(folder.Path); err != nil {
		m.log.Debug("initial watch walk incomplete", "folder", folder.Name, "error", err)
	}

	m.mu.Lock()
	m.watchers[folder.URI] = w
	m.mu.Unlock()

	go w.run(ctx)

	m.log.Info("watching folder", "folder", folder.Name, "path", folder.Path)
	return nil
}

func (m *Manager) Unwatch(folderURI string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w, ok := m.watchers[folderURI]; ok {
		w.stop()
		delete(m.watchers, folderURI)
	}
}

func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for uri, w := range m.watchers {
		w.stop()
		delete(m.watchers, uri)
	}
}

type folderWatcher struct {
	folder      workspace.Folder
	fsw         *fsnotify.Watcher
	excludeDirs []string
	ignore      []string
	onChange    func(folderURI string)
	cancel      context.CancelFunc
	log         *slog.Logger
}

func (w *folderWatcher) stop() {
	w.cancel()
	w.fsw.Close()
}

func (w *folderWatcher) addTree(root string) error {
	if err := w.fsw.Add(root); err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if w.shouldIgnore(path) {
			continue
		}
		if err := w.addTree(path); err != nil {
			w.log.Debug("failed to watch directory", "path", path, "error", err)
		}
	}
	return nil
}

func (w *folderWatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Debug("watch error", "folder", w.folder.Name, "error", err)
		}
	}
}

func (w *folderWatcher) handle(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err == nil {
				// A directory moved in can carry any number of Python files.
				w.onChange(w.folder.URI)
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".py") {
		return
	}

	// Writes do not change the count; only existence does.
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.onChange(w.folder.URI)
	}
}

func (w *folderWatcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.folder.Path, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.ignore {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
	}
	return false
}

// ignorePatterns mirrors the exclude-glob translation: each excluded name is
// pruned at any depth, along with everything beneath it.
func ignorePatterns(excludeDirs []string) []string {
	patterns := make([]string, 0, len(excludeDirs)*2)
	for _, name := range excludeDirs {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		patterns = append(patterns, "**/"+name, "**/"+name+"/**")
	}
	return patterns
}
