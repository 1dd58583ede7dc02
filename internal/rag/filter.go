package rag

import "strings"

// MatchPattern reports whether path matches a glob-like pattern. Three forms
// are recognized: "dir/**" matches any path under that directory, "*.ext"
// matches the file extension, and anything else is a substring match.
func MatchPattern(path, pattern string) bool {
	switch {
	case strings.Contains(pattern, "**"):
		prefix := strings.TrimSuffix(pattern, "/**")
		prefix = strings.TrimSuffix(prefix, "**")
		if prefix == "" {
			return true
		}
		return strings.Contains(path, "/"+prefix) || strings.HasPrefix(path, prefix)
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(path, pattern[1:])
	default:
		return strings.Contains(path, pattern)
	}
}

// FilterByPatterns applies include/exclude pattern lists to a path set.
// Exclusion wins over inclusion; an empty include list includes everything
// not excluded.
func FilterByPatterns(paths, include, exclude []string) []string {
	var out []string
pathLoop:
	for _, path := range paths {
		for _, pattern := range exclude {
			if MatchPattern(path, pattern) {
				continue pathLoop
			}
		}
		if len(include) == 0 {
			out = append(out, path)
			continue
		}
		for _, pattern := range include {
			if MatchPattern(path, pattern) {
				out = append(out, path)
				continue pathLoop
			}
		}
	}
	return out
}
