package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"dupesweep/internal/dedupe"
)

// Console renders resolver events as a human-readable report. It is the only
// place in the program that formats for a terminal.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) GroupFound(plan dedupe.DeletionPlan) {
	fmt.Fprintf(c.w, "\nGroup %s (%d duplicates, %s each)\n",
		plan.Digest.Short(),
		len(plan.Candidates),
		humanize.IBytes(uint64(plan.Survivor.Size)),
	)
	fmt.Fprintf(c.w, "  KEEP    %s\n", plan.Survivor.Path)
	for _, cand := range plan.Candidates {
		fmt.Fprintf(c.w, "  DELETE  %s\n", cand.Path)
	}
}

func (c *Console) NoDuplicates() {
	fmt.Fprintln(c.w, "No duplicates found.")
}

func (c *Console) PlanReady(groups, candidates int, reclaimable int64) {
	fmt.Fprintf(c.w, "\n%d duplicate group(s), %d file(s) to delete, %s reclaimable\n",
		groups, candidates, humanize.IBytes(uint64(reclaimable)))
}

func (c *Console) FileDeleted(rec dedupe.FileRecord) {
	fmt.Fprintf(c.w, "deleted %s (%s)\n", rec.Path, humanize.IBytes(uint64(rec.Size)))
}

func (c *Console) DeleteFailed(rec dedupe.FileRecord, err error) {
	fmt.Fprintf(c.w, "WARN: could not delete %s: %v\n", rec.Path, err)
}

func (c *Console) Declined() {
	fmt.Fprintln(c.w, "Declined. No files were deleted.")
}

func (c *Console) Summary(s dedupe.RunSummary) {
	fmt.Fprintln(c.w, "\n--- Summary ---")
	fmt.Fprintf(c.w, "Files scanned:     %d\n", s.FilesScanned)
	fmt.Fprintf(c.w, "Files hashed:      %d (failures: %d)\n", s.FilesHashed, s.HashFailures)
	if s.WalkErrors > 0 {
		fmt.Fprintf(c.w, "Traversal errors:  %d\n", s.WalkErrors)
	}
	fmt.Fprintf(c.w, "Duplicate groups:  %d\n", s.DuplicateGroups)
	fmt.Fprintf(c.w, "Files deleted:     %d (failures: %d)\n", s.FilesDeleted, s.DeleteFailures)
	fmt.Fprintf(c.w, "Reclaimable:       %s\n", MBGB(s.BytesReclaimable))
	fmt.Fprintf(c.w, "Reclaimed:         %s\n", MBGB(s.BytesReclaimed))
}

// MBGB renders a byte count in both megabytes and gigabytes, the two units
// the final report always shows.
func MBGB(b int64) string {
	return fmt.Sprintf("%.2f MB (%.3f GB)", float64(b)/1e6, float64(b)/1e9)
}
