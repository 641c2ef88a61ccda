package hash

import (
	"log"

	"dupesweep/internal/dedupe"
)

// Prefilter narrows the candidate set before full hashing. A file can only
// be a duplicate of another file with the same size, and among same-size
// files only of one with the same first 4 KiB. Both checks are cheap, so
// the expensive full digest runs only on files that still collide.
//
// Enumeration order is preserved in the output. A read failure during the
// first-block check keeps the file in the candidate set; the full hasher
// decides whether it is a real failure.
func Prefilter(records []dedupe.FileRecord, logger *log.Logger) []dedupe.FileRecord {
	if logger == nil {
		logger = log.Default()
	}

	bySize := make(map[int64]int, len(records))
	for _, rec := range records {
		bySize[rec.Size]++
	}

	type sizeBlock struct {
		size  int64
		block uint64
	}
	byBlock := make(map[sizeBlock]int)
	blocks := make(map[int]uint64, len(records))
	for _, rec := range records {
		if bySize[rec.Size] < 2 {
			continue
		}
		b, err := FirstBlock(rec.Path)
		if err != nil {
			logger.Printf("WARN: prefilter read failed for %s: %v", rec.Path, err)
			continue
		}
		blocks[rec.Index] = b
		byBlock[sizeBlock{rec.Size, b}]++
	}

	out := make([]dedupe.FileRecord, 0, len(records))
	for _, rec := range records {
		if bySize[rec.Size] < 2 {
			continue
		}
		b, ok := blocks[rec.Index]
		if !ok {
			// First-block read failed; let the full hasher classify it.
			out = append(out, rec)
			continue
		}
		if byBlock[sizeBlock{rec.Size, b}] >= 2 {
			out = append(out, rec)
		}
	}
	return out
}
