package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside scan root")
	ErrTraversal      = errors.New("path traversal detected")
	ErrSymlinkEscape  = errors.New("symlink escape detected")
)

// Validator enforces the safety contract for all delete operations: a
// candidate may only be removed when it resolves to a real path under the
// scan root and never touches a protected system location.
type Validator struct {
	Roots     []string
	Protected []string
}

// NewValidator creates a validator for the given scan roots plus optional
// additional protected paths.
func NewValidator(roots []string, extraProtected []string) *Validator {
	return &Validator{
		Roots:     normalizeRoots(roots),
		Protected: defaultProtected(extraProtected),
	}
}

// ValidateDeleteTarget is the single source of truth for delete
// authorization. Returns a typed error on violation.
func (v *Validator) ValidateDeleteTarget(path string) error {
	p, err := normalize(path)
	if err != nil {
		return err
	}

	if isProtected(p, v.Protected) {
		return ErrProtectedPath
	}

	if !withinRoots(p, v.Roots) {
		return ErrOutsideAllowed
	}

	if hasDotDot(path) {
		return ErrTraversal
	}

	escaped, err := symlinkEscapes(p, v.Roots)
	if err != nil {
		// A vanished candidate is not a safety problem; the delete itself
		// will surface the missing file.
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if escaped {
		return ErrSymlinkEscape
	}

	return nil
}

func normalize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// hasDotDot blocks any ".." segment in the raw input
func hasDotDot(raw string) bool {
	for _, part := range strings.Split(filepath.ToSlash(raw), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

func withinRoots(path string, roots []string) bool {
	p := filepath.Clean(path)
	for _, r := range roots {
		if hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// symlinkEscapes resolves symlinks and reports whether the resolved path
// leaves the scan roots.
func symlinkEscapes(cleanAbs string, roots []string) (bool, error) {
	resolved, err := filepath.EvalSymlinks(cleanAbs)
	if err != nil {
		return false, err
	}
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return false, err
	}
	return !withinRoots(filepath.Clean(resolvedAbs), roots), nil
}

func isProtected(path string, protected []string) bool {
	p := filepath.Clean(path)
	if p == string(os.PathSeparator) {
		return true
	}
	for _, prot := range protected {
		prot = filepath.Clean(prot)
		if p == prot || hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if prefix == string(os.PathSeparator) {
		return path == prefix
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}

func defaultProtected(extra []string) []string {
	base := []string{
		"/",
		"/etc",
		"/bin",
		"/usr",
		"/boot",
		"/lib",
		"/lib64",
		"/sbin",
	}
	return append(base, extra...)
}
