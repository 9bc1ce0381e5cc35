package scanner

import (
	"path/filepath"
	"strings"
)

// fileTypes maps a file suffix to its language tag.
var fileTypes = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".jsx":  "javascript",
	".html": "html",
	".css":  "css",
}

// FileType returns the language tag for path, or "unknown" when its suffix
// is not recognized. A dot-file such as ".py" has no suffix.
func FileType(path string) string {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == name {
		ext = ""
	}
	if t, ok := fileTypes[ext]; ok {
		return t
	}
	return "unknown"
}

// IsTestFile reports whether relPath (relative to the scan root) names a
// test file: some path segment is exactly "test", or the base name starts
// with "test_". Segments of the root itself are not considered, so a root
// located under a "test" directory does not make every file a test.
func IsTestFile(relPath string) bool {
	if strings.HasPrefix(filepath.Base(relPath), "test_") {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(relPath), "/") {
		if seg == "test" {
			return true
		}
	}
	return false
}

// matchesExtension reports whether name ends with any of the extensions.
// Matching is literal and case-sensitive.
func matchesExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// excluded reports whether path contains any of the patterns.
func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}
