package config

import (
	"time"
)

type NotificationMode string

const (
	NotifyToast     NotificationMode = "toast"
	NotifyStatusBar NotificationMode = "statusbar"
	NotifyProblems  NotificationMode = "problems"
	NotifyNone      NotificationMode = "none"
)

// Options are the per-folder settings read from the host editor under the
// "pyscope" section at the start of every classification pass.
type Options struct {
	Enable           bool
	MaxFiles         int
	IncludeDirs      []string
	IncludePatterns  []string
	ExcludeDirs      []string
	NotificationMode NotificationMode
	ShowEnableToast  bool
	ShowDisableToast bool
	ToastSuppress    time.Duration
	KeepStrict       bool
}

// DefaultExcludeDirs covers the directory names that routinely hold large
// numbers of Python files a user never wants analyzed.
func DefaultExcludeDirs() []string {
	return []string{
		".git",
		".hg",
		".venv",
		"venv",
		".env",
		"env",
		"node_modules",
		"__pycache__",
		".tox",
		".nox",
		".mypy_cache",
		".pytest_cache",
		"site-packages",
		"dist",
		"build",
	}
}

func DefaultOptions() Options {
	return Options{
		Enable:           true,
		MaxFiles:         200,
		ExcludeDirs:      DefaultExcludeDirs(),
		NotificationMode: NotifyToast,
		ShowEnableToast:  true,
		ShowDisableToast: true,
		ToastSuppress:    5 * time.Minute,
	}
}

// Include returns the configured include entries in option order:
// includeDirs first, then includePatterns.
func (o Options) Include() []string {
	if len(o.IncludeDirs) == 0 && len(o.IncludePatterns) == 0 {
		return nil
	}
	merged := make([]string, 0, len(o.IncludeDirs)+len(o.IncludePatterns))
	merged = append(merged, o.IncludeDirs...)
	merged = append(merged, o.IncludePatterns...)
	return merged
}

// OptionsFromMap coerces a raw settings object into Options. Malformed values
// degrade to the defaults rather than failing the classification pass.
func OptionsFromMap(raw map[string]any) Options {
	opts := DefaultOptions()
	if raw == nil {
		return opts
	}

	if v, ok := raw["enable"].(bool); ok {
		opts.Enable = v
	}
	if v, ok := asInt(raw["maxFiles"]); ok && v > 0 {
		opts.MaxFiles = v
	}
	if v, present := raw["includeDirs"]; present {
		opts.IncludeDirs = coerceStringList(v)
	}
	if v, present := raw["includePatterns"]; present {
		opts.IncludePatterns = coerceStringList(v)
	}
	if v, present := raw["excludeDirs"]; present {
		opts.ExcludeDirs = coerceStringList(v)
	}
	if v, ok := raw["notificationMode"].(string); ok {
		switch NotificationMode(v) {
		case NotifyToast, NotifyStatusBar, NotifyProblems, NotifyNone:
			opts.NotificationMode = NotificationMode(v)
		}
	}
	if v, ok := raw["showEnableToast"].(bool); ok {
		opts.ShowEnableToast = v
	}
	if v, ok := raw["showDisableToast"].(bool); ok {
		opts.ShowDisableToast = v
	}
	if v, ok := asFloat(raw["toastSuppressForMinutes"]); ok && v >= 0 {
		opts.ToastSuppress = time.Duration(v * float64(time.Minute))
	}
	if v, ok := raw["keepStrict"].(bool); ok {
		opts.KeepStrict = v
	}

	return opts
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// coerceStringList turns a settings value into a string list. Non-list values
// and non-string elements coerce to empty rather than aborting the pass.
func coerceStringList(v any) []string {
	if s, ok := v.([]string); ok {
		return s
	}

	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
