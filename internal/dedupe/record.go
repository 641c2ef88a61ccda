package dedupe

import (
	"encoding/hex"
	"time"
)

// DigestSize is the byte length of a content digest (SHA-256).
const DigestSize = 32

// Digest is the SHA-256 of a file's full byte content. Digest equality is
// the content-equality proxy for the whole pipeline: two files with the same
// digest are treated as duplicates without a byte-for-byte recheck. That is
// a documented policy, not a mathematical guarantee.
type Digest [DigestSize]byte

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters, enough to identify a group in
// reports and audit rows.
func (d Digest) Short() string {
	return d.Hex()[:12]
}

// FileRecord is an immutable snapshot of one regular file taken during
// enumeration. Index is the position in enumeration order and drives the
// first-seen survivor policy; it is assigned once by the walker and survives
// parallel hashing. Digest is populated by the hasher and never mutated
// afterward.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
	Index   int
	Digest  Digest
}

// DuplicateGroup is a digest paired with the files that share it, in
// enumeration order. A group is only reported when it has at least two
// members.
type DuplicateGroup struct {
	Digest Digest
	Files  []FileRecord
}

// DeletionPlan is the read-only keep/delete partition derived from one
// duplicate group: one survivor, the rest deletion candidates, and the sum
// of candidate sizes at plan time.
type DeletionPlan struct {
	Digest           Digest
	Survivor         FileRecord
	Candidates       []FileRecord
	ReclaimableBytes int64
}

// NewDeletionPlan partitions a group using the given survivor policy.
// The candidate list preserves the group's member order minus the survivor.
func NewDeletionPlan(g DuplicateGroup, policy SurvivorPolicy) DeletionPlan {
	keep := policy.Pick(g.Files)
	plan := DeletionPlan{
		Digest:     g.Digest,
		Survivor:   g.Files[keep],
		Candidates: make([]FileRecord, 0, len(g.Files)-1),
	}
	for i, f := range g.Files {
		if i == keep {
			continue
		}
		plan.Candidates = append(plan.Candidates, f)
		plan.ReclaimableBytes += f.Size
	}
	return plan
}

// RunSummary accumulates counters across one run and is emitted once at the
// end, whatever branch the run took.
type RunSummary struct {
	FilesScanned     int64
	FilesHashed      int64
	HashFailures     int64
	WalkErrors       int64
	DuplicateGroups  int64
	BytesReclaimable int64
	BytesReclaimed   int64
	FilesDeleted     int64
	DeleteFailures   int64
}
