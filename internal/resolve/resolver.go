package resolve

import (
	"context"
	"log"

	"dupesweep/internal/database"
	"dupesweep/internal/dedupe"
	"dupesweep/internal/fsops"
	"dupesweep/internal/metrics"
	"dupesweep/internal/safety"
)

// Reporter receives structured events from the resolver. The resolver has no
// console-formatting dependency; a presentation layer renders these.
type Reporter interface {
	GroupFound(plan dedupe.DeletionPlan)
	NoDuplicates()
	PlanReady(groups, candidates int, reclaimable int64)
	FileDeleted(rec dedupe.FileRecord)
	DeleteFailed(rec dedupe.FileRecord, err error)
	Declined()
	Summary(s dedupe.RunSummary)
}

// Confirmer obtains the single yes/no decision for the whole batch. There is
// no per-file prompting and no retry: a negative answer is terminal.
type Confirmer interface {
	Confirm(groups, candidates int, reclaimable int64) bool
}

// AutoConfirmer answers every confirmation with a fixed decision. Used for
// the -yes flag and in tests.
type AutoConfirmer struct {
	Answer bool
}

func (a AutoConfirmer) Confirm(groups, candidates int, reclaimable int64) bool {
	return a.Answer
}

// Resolver turns duplicate groups into deletion plans, obtains bulk
// confirmation, and performs the deletions. Every candidate is validated and
// attempted independently; one failure never blocks the rest.
type Resolver struct {
	policy    dedupe.SurvivorPolicy
	reporter  Reporter
	confirmer Confirmer
	deleter   fsops.Deleter
	validator *safety.Validator
	db        *database.AuditDB
	logger    *log.Logger
	dryRun    bool
}

func NewResolver(policy dedupe.SurvivorPolicy, reporter Reporter, confirmer Confirmer, dryRun bool, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		policy:    policy,
		reporter:  reporter,
		confirmer: confirmer,
		deleter:   fsops.OSDeleter{},
		logger:    logger,
		dryRun:    dryRun,
	}
}

// SetDeleter replaces the filesystem deleter (tests use fsops.FakeDeleter).
func (r *Resolver) SetDeleter(d fsops.Deleter) {
	r.deleter = d
}

// SetValidator installs the safety validator consulted before every removal.
func (r *Resolver) SetValidator(v *safety.Validator) {
	r.validator = v
}

// SetAuditDB installs the audit log. Nil disables auditing.
func (r *Resolver) SetAuditDB(db *database.AuditDB) {
	r.db = db
}

// Resolve builds one plan per group, reports the whole batch, asks once for
// confirmation, and deletes on consent. Summary counters are accumulated in
// place. Cancellation during deletion leaves the counters accurate for the
// deletions that did happen.
func (r *Resolver) Resolve(ctx context.Context, groups []dedupe.DuplicateGroup, summary *dedupe.RunSummary) {
	if len(groups) == 0 {
		r.reporter.NoDuplicates()
		return
	}

	plans := make([]dedupe.DeletionPlan, 0, len(groups))
	candidates := 0
	for _, g := range groups {
		plan := dedupe.NewDeletionPlan(g, r.policy)
		plans = append(plans, plan)
		candidates += len(plan.Candidates)

		summary.DuplicateGroups++
		summary.BytesReclaimable += plan.ReclaimableBytes
		metrics.DuplicateGroupsTotal.Inc()

		r.reporter.GroupFound(plan)
	}
	metrics.BytesReclaimableGauge.Set(float64(summary.BytesReclaimable))

	r.reporter.PlanReady(len(plans), candidates, summary.BytesReclaimable)

	if r.dryRun {
		r.record(database.ActionDryRun, plans, "")
		return
	}

	if !r.confirmer.Confirm(len(plans), candidates, summary.BytesReclaimable) {
		r.reporter.Declined()
		r.record(database.ActionDeclined, plans, "")
		return
	}

	for _, plan := range plans {
		for _, cand := range plan.Candidates {
			select {
			case <-ctx.Done():
				r.logger.Printf("WARN: deletion interrupted: %v", ctx.Err())
				return
			default:
			}
			r.deleteOne(cand, plan, summary)
		}
	}
}

func (r *Resolver) deleteOne(cand dedupe.FileRecord, plan dedupe.DeletionPlan, summary *dedupe.RunSummary) {
	if r.validator != nil {
		if err := r.validator.ValidateDeleteTarget(cand.Path); err != nil {
			r.logger.Printf("WARN: refusing to delete %s: %v", cand.Path, err)
			r.reporter.DeleteFailed(cand, err)
			r.audit(database.ActionSkip, cand, plan, err.Error())
			summary.DeleteFailures++
			metrics.DeleteFailuresTotal.Inc()
			return
		}
	}

	if err := r.deleter.Remove(cand.Path); err != nil {
		r.logger.Printf("WARN: failed to delete %s: %v", cand.Path, err)
		r.reporter.DeleteFailed(cand, err)
		r.audit(database.ActionError, cand, plan, err.Error())
		summary.DeleteFailures++
		metrics.DeleteFailuresTotal.Inc()
		return
	}

	r.reporter.FileDeleted(cand)
	r.audit(database.ActionDelete, cand, plan, "")
	summary.FilesDeleted++
	summary.BytesReclaimed += cand.Size
	metrics.FilesDeletedTotal.Inc()
	metrics.BytesReclaimedTotal.Add(float64(cand.Size))
}

// record writes one audit row per candidate across all plans.
func (r *Resolver) record(action string, plans []dedupe.DeletionPlan, errMsg string) {
	if r.db == nil {
		return
	}
	for _, plan := range plans {
		for _, cand := range plan.Candidates {
			if err := r.db.RecordOutcome(action, cand, plan, r.policy, errMsg); err != nil {
				r.logger.Printf("WARN: audit write failed for %s: %v", cand.Path, err)
			}
		}
	}
}

func (r *Resolver) audit(action string, cand dedupe.FileRecord, plan dedupe.DeletionPlan, errMsg string) {
	if r.db == nil {
		return
	}
	if err := r.db.RecordOutcome(action, cand, plan, r.policy, errMsg); err != nil {
		r.logger.Printf("WARN: audit write failed for %s: %v", cand.Path, err)
	}
}
