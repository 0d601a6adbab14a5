package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wbd2023/pyscope/internal/config"
	"github.com/wbd2023/pyscope/internal/logger"
	"github.com/wbd2023/pyscope/internal/scope"
	"github.com/wbd2023/pyscope/internal/workspace"
)

// Presenter is one presentation channel for classification outcomes.
// Implementations must not surface failures to the user; the Notifier logs
// and swallows any error they return.
type Presenter interface {
	ShowEnabled(ctx context.Context, folder workspace.Folder, count, limit int) error
	ShowDisabled(ctx context.Context, folder workspace.Folder, count, limit int) error
	Clear(ctx context.Context) error
}

// Notifier reports classification outcomes through the configured mode.
// Toast throttling state is per folder, memory-only, and reset each session.
type Notifier struct {
	mu         sync.Mutex
	presenters map[config.NotificationMode]Presenter
	lastToast  map[string]time.Time
	now        func() time.Time
	log        *slog.Logger
}

func New(ui HostUI) *Notifier {
	return NewWithPresenters(map[config.NotificationMode]Presenter{
		config.NotifyToast:     &ToastPresenter{UI: ui},
		config.NotifyStatusBar: &StatusBarPresenter{UI: ui},
		config.NotifyProblems:  NewProblemsPresenter(ui),
	})
}

func NewWithPresenters(presenters map[config.NotificationMode]Presenter) *Notifier {
	return &Notifier{
		presenters: presenters,
		lastToast:  make(map[string]time.Time),
		now:        time.Now,
		log:        logger.ForComponent("notify"),
	}
}

// Notify reports the decision. It never returns an error: a notification
// that cannot be delivered must not fail the classification pass.
func (n *Notifier) Notify(ctx context.Context, d scope.Decision, opts config.Options) {
	mode := opts.NotificationMode
	if mode == config.NotifyNone {
		return
	}

	presenter, ok := n.presenters[mode]
	if !ok {
		return
	}

	if mode == config.NotifyToast && !n.admitToast(d, opts) {
		return
	}

	var err error
	if d.Action == scope.ActionEnable {
		err = presenter.ShowEnabled(ctx, d.Folder, d.Count, d.Limit)
	} else {
		err = presenter.ShowDisabled(ctx, d.Folder, d.Count, d.Limit)
	}
	if err != nil {
		n.log.Warn("notification delivery failed",
			"mode", string(mode),
			"folder", d.Folder.Name,
			"error", err,
		)
	}
}

// admitToast applies the per-action toggles and the per-folder suppression
// window, recording the show time only when the toast goes through.
func (n *Notifier) admitToast(d scope.Decision, opts config.Options) bool {
	if d.Action == scope.ActionEnable && !opts.ShowEnableToast {
		return false
	}
	if d.Action == scope.ActionDisable && !opts.ShowDisableToast {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if last, seen := n.lastToast[d.Folder.URI]; seen && now.Sub(last) < opts.ToastSuppress {
		return false
	}
	n.lastToast[d.Folder.URI] = now
	return true
}

// Clear tears down presenter-owned UI state and resets throttling.
func (n *Notifier) Clear(ctx context.Context) {
	n.mu.Lock()
	n.lastToast = make(map[string]time.Time)
	n.mu.Unlock()

	for mode, presenter := range n.presenters {
		if err := presenter.Clear(ctx); err != nil {
			n.log.Warn("presenter clear failed", "mode", string(mode), "error", err)
		}
	}
}
