package host

import "encoding/json"

const (
	// SectionAnalysis is the settings section holding the analyzer scope keys.
	SectionAnalysis = "python.analysis"
	// SectionOptions is the settings section holding this daemon's options.
	SectionOptions = "pyscope"
)

const (
	KeyInclude      = "python.analysis.include"
	KeyExclude      = "python.analysis.exclude"
	KeyTypeChecking = "python.analysis.typeCheckingMode"
)

// AnalysisSettings are the analyzer scope values currently stored for a
// folder. Nil pointers mean the key is unset, which the analyzer treats
// differently from an empty list.
type AnalysisSettings struct {
	Include          *[]string `json:"include"`
	Exclude          *[]string `json:"exclude"`
	TypeCheckingMode *string   `json:"typeCheckingMode"`
}

type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type InitializeParams struct {
	ProcessID        int               `json:"processId"`
	WorkspaceFolders []WorkspaceFolder `json:"workspaceFolders"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   ServerInfo         `json:"serverInfo"`
}

type ServerCapabilities struct {
	Workspace WorkspaceCapabilities `json:"workspace"`
}

type WorkspaceCapabilities struct {
	WorkspaceFolders WorkspaceFoldersCapabilities `json:"workspaceFolders"`
}

type WorkspaceFoldersCapabilities struct {
	Supported           bool `json:"supported"`
	ChangeNotifications bool `json:"changeNotifications"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type DidChangeWorkspaceFoldersParams struct {
	Event WorkspaceFoldersChangeEvent `json:"event"`
}

type WorkspaceFoldersChangeEvent struct {
	Added   []WorkspaceFolder `json:"added"`
	Removed []WorkspaceFolder `json:"removed"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId,omitempty"`
}

type DidChangeConfigurationParams struct {
	Settings json.RawMessage `json:"settings"`
}

type ConfigurationParams struct {
	Items []ConfigurationItem `json:"items"`
}

type ConfigurationItem struct {
	ScopeURI string `json:"scopeUri,omitempty"`
	Section  string `json:"section,omitempty"`
}

// UpdateSettingsParams asks the host to write one settings key at folder
// scope. A null Value removes the key rather than writing an empty value.
type UpdateSettingsParams struct {
	ScopeURI string `json:"scopeUri"`
	Key      string `json:"key"`
	Value    any    `json:"value"`
}

type MessageType int

const (
	MessageError   MessageType = 1
	MessageWarning MessageType = 2
	MessageInfo    MessageType = 3
)

type ShowMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type DiagnosticSeverity int

const (
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
)

type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity"`
	Source   string             `json:"source"`
	Message  string             `json:"message"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// StatusParams drives the host's shared status indicator (custom method).
type StatusParams struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip,omitempty"`
}
