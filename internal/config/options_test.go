package config

import (
	"slices"
	"testing"
	"time"
)

func TestOptionsDefaults(t *testing.T) {
	opts := OptionsFromMap(nil)

	if !opts.Enable {
		t.Error("enable must default to true")
	}
	if opts.MaxFiles != 200 {
		t.Errorf("maxFiles must default to 200, got %d", opts.MaxFiles)
	}
	if opts.NotificationMode != NotifyToast {
		t.Errorf("notification mode must default to toast, got %q", opts.NotificationMode)
	}
	if opts.ToastSuppress != 5*time.Minute {
		t.Errorf("suppression window must default to 5m, got %v", opts.ToastSuppress)
	}
	if len(opts.ExcludeDirs) == 0 {
		t.Error("excludeDirs must have sensible defaults")
	}
}

func TestOptionsFromMap(t *testing.T) {
	opts := OptionsFromMap(map[string]any{
		"enable":                  false,
		"maxFiles":                float64(500),
		"includeDirs":             []any{"src", "tools"},
		"includePatterns":         []any{"scripts/*.py"},
		"excludeDirs":             []any{".venv"},
		"notificationMode":        "problems",
		"showEnableToast":         false,
		"toastSuppressForMinutes": 2.5,
		"keepStrict":              true,
	})

	if opts.Enable {
		t.Error("enable not applied")
	}
	if opts.MaxFiles != 500 {
		t.Errorf("maxFiles not applied: got %d", opts.MaxFiles)
	}
	if !slices.Equal(opts.Include(), []string{"src", "tools", "scripts/*.py"}) {
		t.Errorf("include entries must merge dirs then patterns: got %v", opts.Include())
	}
	if !slices.Equal(opts.ExcludeDirs, []string{".venv"}) {
		t.Errorf("excludeDirs not applied: got %v", opts.ExcludeDirs)
	}
	if opts.NotificationMode != NotifyProblems {
		t.Errorf("notification mode not applied: got %q", opts.NotificationMode)
	}
	if opts.ShowEnableToast {
		t.Error("showEnableToast not applied")
	}
	if !opts.ShowDisableToast {
		t.Error("showDisableToast must keep its default")
	}
	if opts.ToastSuppress != 150*time.Second {
		t.Errorf("fractional minutes must work: got %v", opts.ToastSuppress)
	}
	if !opts.KeepStrict {
		t.Error("keepStrict not applied")
	}
}

func TestOptionsCoercesMalformedValues(t *testing.T) {
	opts := OptionsFromMap(map[string]any{
		"maxFiles":                "lots",
		"includeDirs":             "src",
		"excludeDirs":             []any{".venv", 42, "dist"},
		"notificationMode":        "carrier-pigeon",
		"toastSuppressForMinutes": float64(-1),
	})

	if opts.MaxFiles != 200 {
		t.Errorf("malformed maxFiles must keep the default, got %d", opts.MaxFiles)
	}
	if len(opts.IncludeDirs) != 0 {
		t.Errorf("non-list includeDirs must coerce to empty, got %v", opts.IncludeDirs)
	}
	if !slices.Equal(opts.ExcludeDirs, []string{".venv", "dist"}) {
		t.Errorf("non-string elements must be dropped, got %v", opts.ExcludeDirs)
	}
	if opts.NotificationMode != NotifyToast {
		t.Errorf("unknown mode must keep the default, got %q", opts.NotificationMode)
	}
	if opts.ToastSuppress != 5*time.Minute {
		t.Errorf("negative suppression must keep the default, got %v", opts.ToastSuppress)
	}
}

func TestOptionsZeroMaxFilesRejected(t *testing.T) {
	opts := OptionsFromMap(map[string]any{"maxFiles": float64(0)})
	if opts.MaxFiles != 200 {
		t.Errorf("maxFiles must stay positive, got %d", opts.MaxFiles)
	}
}

func TestIncludeEmpty(t *testing.T) {
	opts := DefaultOptions()
	if opts.Include() != nil {
		t.Errorf("no configured entries must yield nil, got %v", opts.Include())
	}
}
