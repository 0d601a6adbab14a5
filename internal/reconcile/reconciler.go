package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/wbd2023/pyscope/internal/config"
	"github.com/wbd2023/pyscope/internal/host"
	"github.com/wbd2023/pyscope/internal/logger"
	"github.com/wbd2023/pyscope/internal/scope"
	"github.com/wbd2023/pyscope/internal/snapshot"
	"github.com/wbd2023/pyscope/internal/workspace"
)

const strictnessOff = "off"

// Settings is the folder-scoped settings boundary. Writes with a nil value
// remove the key; reads distinguish unset from empty.
type Settings interface {
	Analysis(ctx context.Context, folder workspace.Folder) (host.AnalysisSettings, error)
	Update(ctx context.Context, folder workspace.Folder, key string, value any) error
}

// Reconciler applies classification decisions to folder settings, writing
// only the keys that differ and snapshotting each folder's pre-change state
// exactly once per session.
type Reconciler struct {
	settings Settings
	store    *snapshot.Store
	log      *slog.Logger
}

func New(settings Settings, store *snapshot.Store) *Reconciler {
	return &Reconciler{
		settings: settings,
		store:    store,
		log:      logger.ForComponent("reconcile"),
	}
}

// Apply reconciles the folder's stored settings with the decision. It is an
// idempotent no-op when nothing differs. The snapshot is captured before any
// write so a failed write never leaves an unrestorable folder.
func (r *Reconciler) Apply(ctx context.Context, d scope.Decision, opts config.Options) (bool, error) {
	folder := d.Folder

	current, err := r.settings.Analysis(ctx, folder)
	if err != nil {
		return false, fmt.Errorf("read settings for %s: %w", folder.Name, err)
	}

	var wantInclude *[]string
	if d.Action == scope.ActionEnable {
		include := d.Include
		wantInclude = &include
	}
	exclude := d.Exclude
	wantExclude := &exclude

	// wantStrict non-nil means the strictness key must change; it is left
	// untouched on enable and when keepStrict is set.
	var wantStrict *string
	if d.Action == scope.ActionDisable && !opts.KeepStrict {
		if current.TypeCheckingMode == nil || *current.TypeCheckingMode != strictnessOff {
			off := strictnessOff
			wantStrict = &off
		}
	}

	includeDiff := !listsEqual(current.Include, wantInclude)
	excludeDiff := !listsEqual(current.Exclude, wantExclude)

	if !includeDiff && !excludeDiff && wantStrict == nil {
		return false, nil
	}

	if r.store != nil {
		captured, err := r.store.Capture(snapshot.Entry{
			FolderURI:  folder.URI,
			Include:    current.Include,
			Exclude:    current.Exclude,
			Strictness: current.TypeCheckingMode,
		})
		if err != nil {
			return false, fmt.Errorf("capture snapshot for %s: %w", folder.Name, err)
		}
		if captured {
			r.log.Debug("captured settings snapshot", "folder", folder.Name)
		}
	}

	if includeDiff {
		if err := r.settings.Update(ctx, folder, host.KeyInclude, listValue(wantInclude)); err != nil {
			return false, err
		}
	}
	if excludeDiff {
		if err := r.settings.Update(ctx, folder, host.KeyExclude, listValue(wantExclude)); err != nil {
			return false, err
		}
	}
	if wantStrict != nil {
		if err := r.settings.Update(ctx, folder, host.KeyTypeChecking, *wantStrict); err != nil {
			return false, err
		}
	}

	r.log.Info("reconciled folder settings",
		"folder", folder.Name,
		"action", d.Action.String(),
		"count", d.Count,
		"limit", d.Limit,
	)
	return true, nil
}

// Restore writes the folder's snapshotted settings back, including explicit
// removal of keys that were unset, then deletes the snapshot entry. Without
// a snapshot (or without a store) it is a no-op.
func (r *Reconciler) Restore(ctx context.Context, folder workspace.Folder) error {
	if r.store == nil {
		return nil
	}

	entry, err := r.store.Get(folder.URI)
	if err != nil {
		return fmt.Errorf("load snapshot for %s: %w", folder.Name, err)
	}
	if entry == nil {
		return nil
	}

	if err := r.settings.Update(ctx, folder, host.KeyInclude, listValue(entry.Include)); err != nil {
		return err
	}
	if err := r.settings.Update(ctx, folder, host.KeyExclude, listValue(entry.Exclude)); err != nil {
		return err
	}
	var strict any
	if entry.Strictness != nil {
		strict = *entry.Strictness
	}
	if err := r.settings.Update(ctx, folder, host.KeyTypeChecking, strict); err != nil {
		return err
	}

	if err := r.store.Delete(folder.URI); err != nil {
		return fmt.Errorf("drop snapshot for %s: %w", folder.Name, err)
	}

	r.log.Info("restored folder settings", "folder", folder.Name)
	return nil
}

// RestoreAll restores every snapshotted folder still present in the
// workspace. Folders that have left the workspace are skipped; their entries
// stay so a later session with the folder present can still restore them.
func (r *Reconciler) RestoreAll(ctx context.Context, folders *workspace.Set) error {
	if r.store == nil {
		return nil
	}

	entries, err := r.store.All()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	var firstErr error
	for _, entry := range entries {
		folder, ok := folders.Get(entry.FolderURI)
		if !ok {
			r.log.Debug("skipping snapshot for departed folder", "uri", entry.FolderURI)
			continue
		}
		if err := r.Restore(ctx, folder); err != nil {
			r.log.Warn("restore failed", "folder", folder.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// listsEqual is shallow order-sensitive equality with unset distinct from
// empty.
func listsEqual(a, b *[]string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return slices.Equal(*a, *b)
}

// listValue unwraps a pattern list for the wire; nil stays nil so the host
// removes the key.
func listValue(list *[]string) any {
	if list == nil {
		return nil
	}
	return *list
}
