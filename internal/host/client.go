package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/wbd2023/pyscope/internal/config"
	"github.com/wbd2023/pyscope/internal/logger"
	"github.com/wbd2023/pyscope/internal/workspace"
)

var ErrNotConnected = errors.New("host connection not established")

// Events is what the host delivers to the rest of the daemon. The lifecycle
// controller implements it.
type Events interface {
	Initialized(ctx context.Context, folders []workspace.Folder)
	FoldersChanged(ctx context.Context, added, removed []workspace.Folder)
	ConfigurationChanged(ctx context.Context)
	DocumentOpened(ctx context.Context, uri string)
	Shutdown(ctx context.Context)
}

// Client is the JSON-RPC connection to the editor host. It serves the host's
// lifecycle notifications and issues settings reads/writes and UI calls back
// over the same connection.
type Client struct {
	mu       sync.RWMutex
	conn     *jsonrpc2.Conn
	events   Events
	folders  []workspace.Folder
	exit     chan struct{}
	exitOnce sync.Once
	log      *slog.Logger
}

func NewClient() *Client {
	return &Client{
		exit: make(chan struct{}),
		log:  logger.ForComponent("host"),
	}
}

// Run serves the connection until the host disconnects or sends exit.
func (c *Client) Run(ctx context.Context, rwc io.ReadWriteCloser, events Events) error {
	c.mu.Lock()
	c.events = events
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(&hostHandler{client: c}))
	c.conn = conn
	c.mu.Unlock()

	select {
	case <-conn.DisconnectNotify():
	case <-c.exit:
		conn.Close()
	case <-ctx.Done():
		conn.Close()
	}
	return nil
}

func (c *Client) connection() (*jsonrpc2.Conn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.conn, nil
}

// Configuration issues a workspace/configuration request. The response array
// is aligned with the request items; unset sections come back as JSON null.
func (c *Client) Configuration(ctx context.Context, items []ConfigurationItem) ([]json.RawMessage, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	var result []json.RawMessage
	if err := conn.Call(ctx, "workspace/configuration", ConfigurationParams{Items: items}, &result); err != nil {
		return nil, fmt.Errorf("workspace/configuration: %w", err)
	}
	if len(result) != len(items) {
		return nil, fmt.Errorf("workspace/configuration: got %d results for %d items", len(result), len(items))
	}
	return result, nil
}

// Analysis reads the folder's current analyzer scope settings, preserving
// the unset/empty distinction per key.
func (c *Client) Analysis(ctx context.Context, folder workspace.Folder) (AnalysisSettings, error) {
	results, err := c.Configuration(ctx, []ConfigurationItem{
		{ScopeURI: folder.URI, Section: SectionAnalysis},
	})
	if err != nil {
		return AnalysisSettings{}, err
	}

	var settings AnalysisSettings
	if isNull(results[0]) {
		return settings, nil
	}
	if err := json.Unmarshal(results[0], &settings); err != nil {
		return AnalysisSettings{}, fmt.Errorf("decode %s settings: %w", SectionAnalysis, err)
	}
	return settings, nil
}

// FolderOptions reads the daemon's own option block for a folder. Malformed
// values are coerced, never fatal.
func (c *Client) FolderOptions(ctx context.Context, folder workspace.Folder) (config.Options, error) {
	results, err := c.Configuration(ctx, []ConfigurationItem{
		{ScopeURI: folder.URI, Section: SectionOptions},
	})
	if err != nil {
		return config.Options{}, err
	}

	var raw map[string]any
	if !isNull(results[0]) {
		if err := json.Unmarshal(results[0], &raw); err != nil {
			c.log.Warn("malformed options section, using defaults", "folder", folder.Name, "error", err)
			raw = nil
		}
	}
	return config.OptionsFromMap(raw), nil
}

// Update writes one settings key at folder scope. A nil value removes the key.
func (c *Client) Update(ctx context.Context, folder workspace.Folder, key string, value any) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}

	params := UpdateSettingsParams{ScopeURI: folder.URI, Key: key, Value: value}
	var result json.RawMessage
	if err := conn.Call(ctx, "workspace/updateSettings", params, &result); err != nil {
		return fmt.Errorf("workspace/updateSettings %s: %w", key, err)
	}
	return nil
}

func (c *Client) ShowMessage(ctx context.Context, typ MessageType, message string) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	return conn.Notify(ctx, "window/showMessage", ShowMessageParams{Type: typ, Message: message})
}

func (c *Client) PublishDiagnostics(ctx context.Context, uri string, diags []Diagnostic) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	if diags == nil {
		diags = []Diagnostic{}
	}
	return conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: uri, Diagnostics: diags})
}

func (c *Client) UpdateStatus(ctx context.Context, text, tooltip string) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	return conn.Notify(ctx, "pyscope/status", StatusParams{Text: text, Tooltip: tooltip})
}

type hostHandler struct {
	client *Client
}

func (h *hostHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	c := h.client

	switch req.Method {
	case "initialize":
		var params InitializeParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				c.log.Warn("bad initialize params", "error", err)
			}
		}

		folders := toFolders(params.WorkspaceFolders)

		c.mu.Lock()
		c.folders = folders
		c.mu.Unlock()

		result := InitializeResult{
			Capabilities: ServerCapabilities{
				Workspace: WorkspaceCapabilities{
					WorkspaceFolders: WorkspaceFoldersCapabilities{
						Supported:           true,
						ChangeNotifications: true,
					},
				},
			},
			ServerInfo: ServerInfo{Name: "pyscoped"},
		}
		conn.Reply(ctx, req.ID, result)

	case "initialized":
		c.mu.RLock()
		folders := c.folders
		c.mu.RUnlock()
		c.events.Initialized(ctx, folders)

	case "workspace/didChangeWorkspaceFolders":
		var params DidChangeWorkspaceFoldersParams
		if req.Params == nil || json.Unmarshal(*req.Params, &params) != nil {
			return
		}
		c.events.FoldersChanged(ctx, toFolders(params.Event.Added), toFolders(params.Event.Removed))

	case "workspace/didChangeConfiguration":
		c.events.ConfigurationChanged(ctx)

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if req.Params == nil || json.Unmarshal(*req.Params, &params) != nil {
			return
		}
		c.events.DocumentOpened(ctx, params.TextDocument.URI)

	case "shutdown":
		c.events.Shutdown(ctx)
		conn.Reply(ctx, req.ID, nil)

	case "exit":
		c.exitOnce.Do(func() { close(c.exit) })

	default:
		if !req.Notif {
			conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: fmt.Sprintf("method not found: %s", req.Method),
			})
		}
	}
}

func toFolders(wfs []WorkspaceFolder) []workspace.Folder {
	folders := make([]workspace.Folder, 0, len(wfs))
	for _, wf := range wfs {
		folders = append(folders, workspace.Folder{
			URI:  wf.URI,
			Name: wf.Name,
			Path: workspace.PathFromURI(wf.URI),
		})
	}
	return folders
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
