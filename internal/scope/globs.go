package scope

import (
	"strings"
)

const (
	// PythonSuffix is the recursive pattern appended to bare directory entries.
	PythonSuffix = "/**/*.py"

	// CatchAllInclude covers the whole folder tree when no include entries
	// are configured.
	CatchAllInclude = "./**/*.py"

	// CatchAllExclude removes the whole folder from analysis when a folder
	// is classified as disabled.
	CatchAllExclude = "**"
)

// IncludeGlobs translates configured include entries into analyzer include
// patterns. Entries already ending in .py pass through (after prefix
// normalization); everything else, wildcards included, gets the recursive
// Python suffix. The output preserves input order, and an input that yields
// nothing usable falls back to the catch-all.
func IncludeGlobs(entries []string) []string {
	globs := make([]string, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if !strings.HasPrefix(entry, "./") && entry != "." {
			entry = "./" + entry
		}

		if strings.HasSuffix(entry, ".py") || strings.HasSuffix(entry, PythonSuffix) {
			globs = append(globs, entry)
			continue
		}

		entry = strings.TrimSuffix(entry, "/")
		globs = append(globs, entry+PythonSuffix)
	}

	if len(globs) == 0 {
		return []string{CatchAllInclude}
	}
	return globs
}

// ExcludeGlobs translates excluded directory names into analyzer exclude
// patterns: the name at any depth plus everything beneath it. Duplicate
// names yield duplicate patterns; the analyzer treats them as harmless.
func ExcludeGlobs(names []string) []string {
	globs := make([]string, 0, len(names)*2)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		globs = append(globs, "**/"+name, "**/"+name+"/**")
	}

	return globs
}
