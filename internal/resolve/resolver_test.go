package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dupesweep/internal/dedupe"
	"dupesweep/internal/fsops"
	"dupesweep/internal/metrics"
	"dupesweep/internal/safety"
)

func init() {
	// Initialize metrics once for all tests
	metrics.Init()
}

// nopReporter discards events but records which ones fired.
type nopReporter struct {
	groupsFound  int
	noDuplicates bool
	declined     bool
	deleted      []string
	failed       []string
}

func (r *nopReporter) GroupFound(plan dedupe.DeletionPlan)                 { r.groupsFound++ }
func (r *nopReporter) NoDuplicates()                                      { r.noDuplicates = true }
func (r *nopReporter) PlanReady(groups, candidates int, reclaimable int64) {}
func (r *nopReporter) FileDeleted(rec dedupe.FileRecord)                  { r.deleted = append(r.deleted, rec.Path) }
func (r *nopReporter) DeleteFailed(rec dedupe.FileRecord, err error) {
	r.failed = append(r.failed, rec.Path)
}
func (r *nopReporter) Declined()                      { r.declined = true }
func (r *nopReporter) Summary(s dedupe.RunSummary)    {}

func groupOf(digest byte, paths ...string) dedupe.DuplicateGroup {
	var d dedupe.Digest
	d[0] = digest
	g := dedupe.DuplicateGroup{Digest: d}
	for i, p := range paths {
		g.Files = append(g.Files, dedupe.FileRecord{
			Path: p, Size: 100, Index: i, Digest: d,
		})
	}
	return g
}

// TestDeclineNeverDeletes proves the negative-confirmation contract:
// a declined run performs ZERO delete calls and reclaims nothing.
func TestDeclineNeverDeletes(t *testing.T) {
	tmpDir := t.TempDir()
	fake := &fsops.FakeDeleter{}
	reporter := &nopReporter{}
	var summary dedupe.RunSummary

	r := NewResolver(dedupe.PolicyFirstSeen, reporter, AutoConfirmer{Answer: false}, false, nil)
	r.SetDeleter(fake)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	groups := []dedupe.DuplicateGroup{
		groupOf(1, filepath.Join(tmpDir, "a"), filepath.Join(tmpDir, "b")),
	}
	r.Resolve(context.Background(), groups, &summary)

	if len(fake.Calls) != 0 {
		t.Errorf("DECLINE VIOLATION: expected 0 delete calls, got %d: %v", len(fake.Calls), fake.Calls)
	}
	if !reporter.declined {
		t.Error("expected Declined event")
	}
	if summary.BytesReclaimed != 0 || summary.FilesDeleted != 0 {
		t.Errorf("declined run must reclaim nothing: %+v", summary)
	}
	if summary.BytesReclaimable != 100 {
		t.Errorf("reclaimable should still be reported: got %d", summary.BytesReclaimable)
	}
}

// TestDryRunNeverDeletes proves the dry-run contract: dryRun=true means zero
// delete syscalls even with an affirmative confirmer.
func TestDryRunNeverDeletes(t *testing.T) {
	tmpDir := t.TempDir()
	fake := &fsops.FakeDeleter{}
	var summary dedupe.RunSummary

	r := NewResolver(dedupe.PolicyFirstSeen, &nopReporter{}, AutoConfirmer{Answer: true}, true, nil)
	r.SetDeleter(fake)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	groups := []dedupe.DuplicateGroup{
		groupOf(1, filepath.Join(tmpDir, "a"), filepath.Join(tmpDir, "b")),
	}
	r.Resolve(context.Background(), groups, &summary)

	if len(fake.Calls) != 0 {
		t.Errorf("DRY-RUN VIOLATION: expected 0 delete calls, got %d: %v", len(fake.Calls), fake.Calls)
	}
}

func TestAcceptDeletesExactlyCandidates(t *testing.T) {
	tmpDir := t.TempDir()
	fake := &fsops.FakeDeleter{}
	reporter := &nopReporter{}
	var summary dedupe.RunSummary

	r := NewResolver(dedupe.PolicyFirstSeen, reporter, AutoConfirmer{Answer: true}, false, nil)
	r.SetDeleter(fake)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	survivor := filepath.Join(tmpDir, "a")
	cand1 := filepath.Join(tmpDir, "b")
	cand2 := filepath.Join(tmpDir, "c")
	groups := []dedupe.DuplicateGroup{groupOf(1, survivor, cand1, cand2)}
	r.Resolve(context.Background(), groups, &summary)

	if len(fake.Calls) != 2 {
		t.Fatalf("expected 2 delete calls, got %d: %v", len(fake.Calls), fake.Calls)
	}
	for _, call := range fake.Calls {
		if call == survivor {
			t.Fatalf("survivor %s was deleted", survivor)
		}
	}
	if summary.FilesDeleted != 2 || summary.BytesReclaimed != 200 {
		t.Errorf("summary mismatch: %+v", summary)
	}
	if summary.BytesReclaimed != summary.BytesReclaimable {
		t.Errorf("reclaimed %d != planned %d", summary.BytesReclaimed, summary.BytesReclaimable)
	}
}

// TestDeleteFailureDoesNotBlockRemaining proves each deletion is attempted
// independently.
func TestDeleteFailureDoesNotBlockRemaining(t *testing.T) {
	tmpDir := t.TempDir()
	cand1 := filepath.Join(tmpDir, "b")
	cand2 := filepath.Join(tmpDir, "c")
	fake := &fsops.FakeDeleter{
		Fail: map[string]error{cand1: errors.New("device or resource busy")},
	}
	reporter := &nopReporter{}
	var summary dedupe.RunSummary

	r := NewResolver(dedupe.PolicyFirstSeen, reporter, AutoConfirmer{Answer: true}, false, nil)
	r.SetDeleter(fake)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	groups := []dedupe.DuplicateGroup{groupOf(1, filepath.Join(tmpDir, "a"), cand1, cand2)}
	r.Resolve(context.Background(), groups, &summary)

	if len(fake.Calls) != 2 {
		t.Fatalf("expected both candidates attempted, got %v", fake.Calls)
	}
	if summary.FilesDeleted != 1 || summary.DeleteFailures != 1 {
		t.Errorf("expected 1 success + 1 failure, got %+v", summary)
	}
	if summary.BytesReclaimed != 100 {
		t.Errorf("only the successful deletion counts: got %d", summary.BytesReclaimed)
	}
}

// TestValidatorBlocksOutsideRoot proves safety integration: a candidate
// outside the scan root is skipped without a delete call.
func TestValidatorBlocksOutsideRoot(t *testing.T) {
	tmpDir := t.TempDir()
	fake := &fsops.FakeDeleter{}
	var summary dedupe.RunSummary

	r := NewResolver(dedupe.PolicyFirstSeen, &nopReporter{}, AutoConfirmer{Answer: true}, false, nil)
	r.SetDeleter(fake)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	groups := []dedupe.DuplicateGroup{
		groupOf(1, filepath.Join(tmpDir, "a"), "/etc/passwd"),
	}
	r.Resolve(context.Background(), groups, &summary)

	if len(fake.Calls) != 0 {
		t.Errorf("SAFETY VIOLATION: validator should have blocked, got calls %v", fake.Calls)
	}
	if summary.DeleteFailures != 1 {
		t.Errorf("blocked candidate must count as a failure: %+v", summary)
	}
}

func TestNoDuplicatesEvent(t *testing.T) {
	reporter := &nopReporter{}
	var summary dedupe.RunSummary

	r := NewResolver(dedupe.PolicyFirstSeen, reporter, AutoConfirmer{Answer: true}, false, nil)
	r.Resolve(context.Background(), nil, &summary)

	if !reporter.noDuplicates {
		t.Error("expected NoDuplicates event for empty group set")
	}
	if summary.DuplicateGroups != 0 {
		t.Errorf("expected zero groups, got %d", summary.DuplicateGroups)
	}
}

// TestCancellationStopsDeletion proves interruption mid-deletion leaves an
// accurate partial summary rather than silently dropping outcomes.
func TestCancellationStopsDeletion(t *testing.T) {
	tmpDir := t.TempDir()
	fake := &fsops.FakeDeleter{}
	var summary dedupe.RunSummary

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before deletion starts

	r := NewResolver(dedupe.PolicyFirstSeen, &nopReporter{}, AutoConfirmer{Answer: true}, false, nil)
	r.SetDeleter(fake)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	groups := []dedupe.DuplicateGroup{
		groupOf(1, filepath.Join(tmpDir, "a"), filepath.Join(tmpDir, "b")),
	}
	r.Resolve(ctx, groups, &summary)

	if len(fake.Calls) != 0 {
		t.Errorf("cancelled run must not delete, got %v", fake.Calls)
	}
	if summary.FilesDeleted != 0 {
		t.Errorf("summary must reflect zero deletions: %+v", summary)
	}
}

// TestRealDeleterRemovesFile exercises OSDeleter end to end on one file.
func TestRealDeleterRemovesFile(t *testing.T) {
	tmpDir := t.TempDir()
	survivor := filepath.Join(tmpDir, "keep")
	victim := filepath.Join(tmpDir, "victim")
	for _, p := range []string{survivor, victim} {
		if err := os.WriteFile(p, []byte("same"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var summary dedupe.RunSummary
	r := NewResolver(dedupe.PolicyFirstSeen, &nopReporter{}, AutoConfirmer{Answer: true}, false, nil)
	r.SetValidator(safety.NewValidator([]string{tmpDir}, nil))

	r.Resolve(context.Background(), []dedupe.DuplicateGroup{groupOf(1, survivor, victim)}, &summary)

	if _, err := os.Stat(victim); !os.IsNotExist(err) {
		t.Error("victim should have been removed")
	}
	if _, err := os.Stat(survivor); err != nil {
		t.Error("survivor should be untouched")
	}
}
