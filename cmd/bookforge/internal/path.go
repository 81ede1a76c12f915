package internal

import (
	"path/filepath"
	"strings"
)

// ResolveBookRoot resolves the absolute path of the book project
// directory. Empty or "." means the current directory.
func ResolveBookRoot(bookPath string) (string, error) {
	root := bookPath
	if root == "" {
		root = "."
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}

	return absPath, nil
}

// SanitizeName replaces filesystem-hostile characters so a book title
// or directory name can be used in log file names
func SanitizeName(name string) string {
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "book"
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	if b.Len() == 0 {
		return "book"
	}
	return b.String()
}
