package scope

import (
	"os"
	"path/filepath"
	"strings"
)

// CountFiles walks the tree under root and counts files whose name ends with
// ext. Directories whose base name appears in excluded are pruned without
// being descended into. The walk is iterative so deeply nested trees cannot
// exhaust the call stack, and unreadable directories contribute zero.
func CountFiles(root, ext string, excluded map[string]struct{}) int {
	count := 0
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				if _, skip := excluded[name]; skip {
					continue
				}
				stack = append(stack, filepath.Join(dir, name))
				continue
			}
			if entry.Type().IsRegular() && strings.HasSuffix(name, ext) {
				count++
			}
		}
	}

	return count
}

// ExclusionSet builds the membership set CountFiles prunes against. Blank
// names are dropped so a sloppy settings value cannot prune everything.
func ExclusionSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}
