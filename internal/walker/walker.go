package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ignoredDirs are directory base names that are never descended into:
// version control, build output, dependency caches, and editor metadata.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	".svn":         {},
	".hg":          {},
	"target":       {},
	"node_modules": {},
	".next":        {},
	"dist":         {},
	"build":        {},
	".idea":        {},
	".vscode":      {},
	".cache":       {},
	".codesage":    {},
	"venv":         {},
	"__pycache__":  {},
}

// allowedExts is the file-extension allow-list for indexing.
var allowedExts = map[string]struct{}{
	"rs": {}, "go": {}, "js": {}, "ts": {}, "py": {}, "java": {},
	"md": {}, "toml": {}, "json": {}, "yaml": {}, "yml": {}, "graphql": {},
}

// IsIgnoredDir reports whether a directory base name is never descended
// into.
func IsIgnoredDir(name string) bool {
	_, ok := ignoredDirs[name]
	return ok
}

// CollectFiles recursively enumerates eligible files under root. Unreadable
// subdirectories are skipped so discovery stays best-effort; an unreadable
// root fails the whole walk.
func CollectFiles(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return fmt.Errorf("walk %s: %w", absRoot, err)
			}
			return nil // skip unreadable entries, keep walking
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if _, ignored := ignoredDirs[d.Name()]; ignored {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if _, ok := allowedExts[ext]; !ok {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// DirectoryOverview renders a bounded textual tree of the directories under
// root, one indented line per directory, relative to root. Traversal stops
// once maxDepth or maxEntries is hit; unreadable directories are skipped.
func DirectoryOverview(root string, maxDepth, maxEntries int) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ""
	}

	var lines []string
	seen := 0
	walkOverview(absRoot, absRoot, 0, maxDepth, maxEntries, &lines, &seen)
	return strings.Join(lines, "\n")
}

func walkOverview(root, dir string, depth, maxDepth, maxEntries int, lines *[]string, seen *int) {
	if depth > maxDepth || *seen >= maxEntries {
		return
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	if rel == "" {
		rel = "."
	}
	*lines = append(*lines, strings.Repeat("  ", depth)+rel)
	*seen++
	if *seen >= maxEntries {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return // best-effort overview
	}
	// The overview is hashed to detect layout changes, so rendering order
	// must be stable. os.ReadDir already sorts, keep it explicit anyway.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, ignored := ignoredDirs[e.Name()]; ignored {
			continue
		}
		walkOverview(root, filepath.Join(dir, e.Name()), depth+1, maxDepth, maxEntries, lines, seen)
		if *seen >= maxEntries {
			return
		}
	}
}
