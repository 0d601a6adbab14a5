package controller

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wbd2023/pyscope/internal/config"
	"github.com/wbd2023/pyscope/internal/logger"
	"github.com/wbd2023/pyscope/internal/notify"
	"github.com/wbd2023/pyscope/internal/reconcile"
	"github.com/wbd2023/pyscope/internal/scope"
	"github.com/wbd2023/pyscope/internal/watcher"
	"github.com/wbd2023/pyscope/internal/workspace"
)

const pythonExt = ".py"

// OptionsSource reads a folder's pyscope option block from the host.
type OptionsSource interface {
	FolderOptions(ctx context.Context, folder workspace.Folder) (config.Options, error)
}

// Controller wires host lifecycle events to classification passes. Every
// trigger goes through the per-folder debounce scheduler; teardown restores
// all snapshotted folders and clears notifier UI state.
type Controller struct {
	cfg      *config.Config
	folders  *workspace.Set
	options  OptionsSource
	rec      *reconcile.Reconciler
	notifier *notify.Notifier
	sched    *scheduler
	watchers *watcher.Manager
	log      *slog.Logger
}

func New(cfg *config.Config, options OptionsSource, rec *reconcile.Reconciler, notifier *notify.Notifier) *Controller {
	c := &Controller{
		cfg:      cfg,
		folders:  workspace.NewSet(),
		options:  options,
		rec:      rec,
		notifier: notifier,
		log:      logger.ForComponent("controller"),
	}

	c.sched = newScheduler(cfg.DebounceWindow.Std(), c.runScheduled)
	if cfg.WatcherEnabled {
		c.watchers = watcher.NewManager(c.sched.Trigger)
	}
	return c
}

func (c *Controller) runScheduled(folderURI string) {
	folder, ok := c.folders.Get(folderURI)
	if !ok {
		return
	}
	c.classify(context.Background(), folder)
}

// classify runs one pass for one folder: read options, count, decide,
// reconcile, notify. Any failure aborts this folder's pass only.
func (c *Controller) classify(ctx context.Context, folder workspace.Folder) {
	opts, err := c.options.FolderOptions(ctx, folder)
	if err != nil {
		c.log.Warn("options read failed, folder left unchanged", "folder", folder.Name, "error", err)
		return
	}

	if !opts.Enable {
		if err := c.rec.Restore(ctx, folder); err != nil {
			c.log.Warn("restore on disable failed", "folder", folder.Name, "error", err)
		}
		return
	}

	excluded := scope.ExclusionSet(opts.ExcludeDirs)
	count := scope.CountFiles(folder.Path, pythonExt, excluded)
	decision := scope.Classify(folder, count, opts.MaxFiles, opts.Include(), opts.ExcludeDirs)

	c.log.Debug("classified folder",
		"folder", folder.Name,
		"count", count,
		"limit", opts.MaxFiles,
		"action", decision.Action.String(),
	)

	if _, err := c.rec.Apply(ctx, decision, opts); err != nil {
		c.log.Warn("reconcile failed, folder left unchanged", "folder", folder.Name, "error", err)
		return
	}

	c.notifier.Notify(ctx, decision, opts)

	if c.watchers != nil {
		if err := c.watchers.Watch(folder, opts.ExcludeDirs); err != nil {
			c.log.Debug("folder watch unavailable", "folder", folder.Name, "error", err)
		}
	}
}

// Initialized classifies every folder known at startup.
func (c *Controller) Initialized(ctx context.Context, folders []workspace.Folder) {
	c.log.Info("workspace initialized", "folders", len(folders))
	for _, folder := range folders {
		c.folders.Add(folder)
		c.sched.Trigger(folder.URI)
	}
}

// FoldersChanged classifies added folders and restores removed ones
// immediately: a departing folder cannot be restored later.
func (c *Controller) FoldersChanged(ctx context.Context, added, removed []workspace.Folder) {
	for _, folder := range removed {
		c.sched.Cancel(folder.URI)
		if c.watchers != nil {
			c.watchers.Unwatch(folder.URI)
		}
		if err := c.rec.Restore(ctx, folder); err != nil {
			c.log.Warn("restore on folder removal failed", "folder", folder.Name, "error", err)
		}
		c.folders.Remove(folder.URI)
	}

	for _, folder := range added {
		c.folders.Add(folder)
		c.sched.Trigger(folder.URI)
	}
}

// ConfigurationChanged re-classifies every folder.
func (c *Controller) ConfigurationChanged(ctx context.Context) {
	for _, folder := range c.folders.All() {
		c.sched.Trigger(folder.URI)
	}
}

// DocumentOpened lazily re-checks the owning folder when a Python document
// becomes active.
func (c *Controller) DocumentOpened(ctx context.Context, uri string) {
	path := workspace.PathFromURI(uri)
	if !strings.HasSuffix(path, pythonExt) {
		return
	}
	if folder, ok := c.folders.Owner(path); ok {
		c.sched.Trigger(folder.URI)
	}
}

// Shutdown stops all scheduling and watching, restores every snapshotted
// folder still in the workspace, and clears notifier-owned UI state.
func (c *Controller) Shutdown(ctx context.Context) {
	c.log.Info("shutting down, restoring folder settings")

	c.sched.Stop()
	if c.watchers != nil {
		c.watchers.Stop()
	}

	if err := c.rec.RestoreAll(ctx, c.folders); err != nil {
		c.log.Warn("restore incomplete", "error", err)
	}

	c.notifier.Clear(ctx)
}
