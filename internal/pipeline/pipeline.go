package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"dupesweep/internal/config"
	"dupesweep/internal/database"
	"dupesweep/internal/dedupe"
	"dupesweep/internal/disk"
	"dupesweep/internal/fsops"
	"dupesweep/internal/hash"
	"dupesweep/internal/limiter"
	"dupesweep/internal/metrics"
	"dupesweep/internal/resolve"
	"dupesweep/internal/safety"
	"dupesweep/internal/walk"
)

// Options carries the per-run collaborators the CLI wires in. Tests swap in
// fakes for the deleter and confirmer.
type Options struct {
	DryRun    bool
	AssumeYes bool
	Reporter  resolve.Reporter
	Confirmer resolve.Confirmer
	Deleter   fsops.Deleter
}

// Run executes one full pass: enumerate, hash, group, confirm, delete.
// Enumeration and hashing are read-only; nothing is removed before the whole
// plan is computed and confirmed. The summary is emitted through the
// reporter whatever branch the run takes; only an invalid root is fatal.
func Run(ctx context.Context, cfg *config.Config, opts Options, logger *log.Logger, db *database.AuditDB) (dedupe.RunSummary, error) {
	var summary dedupe.RunSummary

	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return summary, errors.New("nil config")
	}
	if opts.Reporter == nil {
		return summary, errors.New("nil reporter")
	}

	root, err := cfg.ResolveRoot()
	if err != nil {
		return summary, err
	}

	start := time.Now()
	recordFreeSpace(root, "before", logger)

	// Enumerate
	walker := walk.New(walk.Config{
		Excludes: cfg.Excludes,
		MinSize:  cfg.MinSizeBytes,
	}, logger)
	records, walkErrors, err := walker.Walk(root)
	if err != nil {
		return summary, err
	}
	summary.FilesScanned = int64(len(records))
	summary.WalkErrors = walkErrors
	metrics.FilesScannedTotal.Add(float64(len(records)))
	metrics.WalkErrorsTotal.Add(float64(walkErrors))
	logger.Printf("enumerated %d file(s) under %s (%d traversal errors)", len(records), root, walkErrors)

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	// Hash: cheap prefilter first, then full digests on a bounded pool.
	candidates := hash.Prefilter(records, logger)
	logger.Printf("%d candidate(s) after size and first-block prefilter", len(candidates))

	var throttle *limiter.CPULimiter
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		throttle = limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent)
	}
	pool := hash.NewPool(cfg.HashWorkers, throttle, logger)
	hashed, hashFailures := pool.Run(ctx, candidates)
	summary.FilesHashed = int64(len(hashed))
	summary.HashFailures = hashFailures
	metrics.FilesHashedTotal.Add(float64(len(hashed)))
	metrics.HashFailuresTotal.Add(float64(hashFailures))

	if err := ctx.Err(); err != nil {
		opts.Reporter.Summary(summary)
		return summary, err
	}

	// Group
	grouper := dedupe.NewGrouper()
	for _, rec := range hashed {
		grouper.Add(rec)
	}
	groups := grouper.Duplicates()

	// Resolve
	confirmer := opts.Confirmer
	if opts.AssumeYes {
		confirmer = resolve.AutoConfirmer{Answer: true}
	}
	if confirmer == nil {
		confirmer = resolve.AutoConfirmer{Answer: false}
	}
	resolver := resolve.NewResolver(cfg.Policy(), opts.Reporter, confirmer, opts.DryRun, logger)
	if opts.Deleter != nil {
		resolver.SetDeleter(opts.Deleter)
	}
	resolver.SetValidator(safety.NewValidator([]string{root}, nil))
	resolver.SetAuditDB(db)
	resolver.Resolve(ctx, groups, &summary)

	recordFreeSpace(root, "after", logger)
	elapsed := time.Since(start).Seconds()
	metrics.RunDuration.Observe(elapsed)
	logger.Printf("run complete: scanned=%d hashed=%d groups=%d deleted=%d reclaimed=%d bytes duration=%.3fs",
		summary.FilesScanned, summary.FilesHashed, summary.DuplicateGroups,
		summary.FilesDeleted, summary.BytesReclaimed, elapsed)

	opts.Reporter.Summary(summary)
	return summary, nil
}

func recordFreeSpace(root, phase string, logger *log.Logger) {
	free, err := disk.GetFreePercent(root)
	if err != nil {
		logger.Printf("WARN: failed to read free space for %s: %v", root, err)
		return
	}
	metrics.FreeSpacePercent.WithLabelValues(phase).Set(free)
}
