package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/wbd2023/pyscope/internal/host"
	"github.com/wbd2023/pyscope/internal/workspace"
)

// HostUI is the slice of the host connection the presenters need.
type HostUI interface {
	ShowMessage(ctx context.Context, typ host.MessageType, message string) error
	PublishDiagnostics(ctx context.Context, uri string, diags []host.Diagnostic) error
	UpdateStatus(ctx context.Context, text, tooltip string) error
}

func enabledMessage(folder workspace.Folder, count, limit int) string {
	return fmt.Sprintf("Python analysis enabled for %q: %d Python files (limit %d).", folder.Name, count, limit)
}

func disabledMessage(folder workspace.Folder, count, limit int) string {
	return fmt.Sprintf("Python analysis disabled for %q: %d Python files exceeds the limit of %d.", folder.Name, count, limit)
}

// ToastPresenter shows transient dismissable messages.
type ToastPresenter struct {
	UI HostUI
}

func (p *ToastPresenter) ShowEnabled(ctx context.Context, folder workspace.Folder, count, limit int) error {
	return p.UI.ShowMessage(ctx, host.MessageInfo, enabledMessage(folder, count, limit))
}

func (p *ToastPresenter) ShowDisabled(ctx context.Context, folder workspace.Folder, count, limit int) error {
	return p.UI.ShowMessage(ctx, host.MessageWarning, disabledMessage(folder, count, limit))
}

func (p *ToastPresenter) Clear(ctx context.Context) error {
	return nil
}

// StatusBarPresenter drives the single shared indicator. The most recently
// classified folder wins; there is no per-folder state.
type StatusBarPresenter struct {
	UI HostUI
}

func (p *StatusBarPresenter) ShowEnabled(ctx context.Context, folder workspace.Folder, count, limit int) error {
	text := fmt.Sprintf("Py analysis: on (%d/%d)", count, limit)
	return p.UI.UpdateStatus(ctx, text, enabledMessage(folder, count, limit))
}

func (p *StatusBarPresenter) ShowDisabled(ctx context.Context, folder workspace.Folder, count, limit int) error {
	text := fmt.Sprintf("Py analysis: off (%d/%d)", count, limit)
	return p.UI.UpdateStatus(ctx, text, disabledMessage(folder, count, limit))
}

func (p *StatusBarPresenter) Clear(ctx context.Context) error {
	return p.UI.UpdateStatus(ctx, "", "")
}

// ProblemsPresenter attaches one diagnostic to each classified folder's
// settings location, overwriting the previous entry for that folder.
type ProblemsPresenter struct {
	UI        HostUI
	mu        sync.Mutex
	published map[string]struct{}
}

func NewProblemsPresenter(ui HostUI) *ProblemsPresenter {
	return &ProblemsPresenter{
		UI:        ui,
		published: make(map[string]struct{}),
	}
}

func (p *ProblemsPresenter) ShowEnabled(ctx context.Context, folder workspace.Folder, count, limit int) error {
	return p.publish(ctx, folder, host.SeverityInformation, enabledMessage(folder, count, limit))
}

func (p *ProblemsPresenter) ShowDisabled(ctx context.Context, folder workspace.Folder, count, limit int) error {
	return p.publish(ctx, folder, host.SeverityWarning, disabledMessage(folder, count, limit))
}

func (p *ProblemsPresenter) publish(ctx context.Context, folder workspace.Folder, severity host.DiagnosticSeverity, message string) error {
	uri := diagnosticURI(folder)

	p.mu.Lock()
	p.published[uri] = struct{}{}
	p.mu.Unlock()

	diag := host.Diagnostic{
		Severity: severity,
		Source:   "pyscope",
		Message:  message,
	}
	return p.UI.PublishDiagnostics(ctx, uri, []host.Diagnostic{diag})
}

// Clear retracts every diagnostic this presenter has published.
func (p *ProblemsPresenter) Clear(ctx context.Context) error {
	p.mu.Lock()
	uris := make([]string, 0, len(p.published))
	for uri := range p.published {
		uris = append(uris, uri)
	}
	p.published = make(map[string]struct{})
	p.mu.Unlock()

	var firstErr error
	for _, uri := range uris {
		if err := p.UI.PublishDiagnostics(ctx, uri, nil); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// diagnosticURI is the folder-scoped settings location the problem entry
// attaches to.
func diagnosticURI(folder workspace.Folder) string {
	return folder.URI + "/.vscode/settings.json"
}
