package walk

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"dupesweep/internal/dedupe"
)

// Config defines the enumeration rules.
type Config struct {
	Excludes []string // directory basenames skipped as whole subtrees
	MinSize  int64    // files smaller than this are not candidates
}

// Walker enumerates regular files under a root. Symlinks are opaque: they
// are never followed into, so a link cycle cannot recurse. Directories whose
// basename matches an exclusion (exact, case-sensitive) are skipped with
// their whole subtree. Traversal errors are warnings, not aborts.
type Walker struct {
	cfg        Config
	excludeSet map[string]struct{}
	logger     *log.Logger
}

func New(cfg Config, logger *log.Logger) *Walker {
	if logger == nil {
		logger = log.Default()
	}
	set := make(map[string]struct{}, len(cfg.Excludes))
	for _, e := range cfg.Excludes {
		set[e] = struct{}{}
	}
	return &Walker{cfg: cfg, excludeSet: set, logger: logger}
}

// Walk returns one FileRecord per reachable regular file, in traversal
// order, each tagged with its enumeration index. The error count covers
// unreadable directories and files that vanished mid-walk. Only an invalid
// root is fatal.
func (w *Walker) Walk(root string) ([]dedupe.FileRecord, int64, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("scan root %s is not a directory", root)
	}

	var records []dedupe.FileRecord
	var walkErrors int64

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Printf("WARN: traversal error at %s: %v", path, err)
			walkErrors++
			return nil
		}

		if d.IsDir() {
			if _, skip := w.excludeSet[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		// WalkDir does not follow symlinks; anything that is not a plain
		// regular file (links, sockets, devices) is not a candidate.
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			w.logger.Printf("WARN: stat failed for %s: %v", path, err)
			walkErrors++
			return nil
		}

		if fi.Size() < w.cfg.MinSize {
			return nil
		}

		records = append(records, dedupe.FileRecord{
			Path:    path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			Index:   len(records),
		})
		return nil
	})
	if walkErr != nil {
		// The callback never returns an error other than SkipDir, so this
		// only fires if the root disappears mid-walk.
		return records, walkErrors, walkErr
	}

	return records, walkErrors, nil
}
