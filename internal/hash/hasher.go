package hash

import (
	"crypto/sha256"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	"dupesweep/internal/dedupe"
)

// ChunkSize bounds every read; files are streamed, never loaded whole.
const ChunkSize = 32 * 1024

// preHashSize is how much of a file the quick prefilter reads.
const preHashSize = 4 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, ChunkSize)
		return &b
	},
}

// Sum streams the full contents of path through SHA-256 in ChunkSize reads.
// The file handle is held only for the duration of the read and released on
// every exit path. Output depends only on byte content: no salt, no per-run
// state.
func Sum(path string) (dedupe.Digest, error) {
	var digest dedupe.Digest

	f, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer f.Close()

	h := sha256.New()

	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)

	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return digest, err
	}

	copy(digest[:], h.Sum(nil))
	return digest, nil
}

// FirstBlock hashes the first 4 KiB of path with xxhash64. It is the cheap
// prefilter signal only; it never stands in for the full digest.
func FirstBlock(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, preHashSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	return xxhash.Sum64(buf[:n]), nil
}
