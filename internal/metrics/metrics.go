package metrics

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce    sync.Once
	serverMutex sync.Mutex
	currentSrv  *http.Server
)

// Run metrics
var (
	// FilesScannedTotal counts files enumerated across all runs
	FilesScannedTotal prometheus.Counter

	// FilesHashedTotal counts files fully hashed
	FilesHashedTotal prometheus.Counter

	// HashFailuresTotal counts files that could not be read for hashing
	HashFailuresTotal prometheus.Counter

	// WalkErrorsTotal counts traversal errors survived during enumeration
	WalkErrorsTotal prometheus.Counter

	// DuplicateGroupsTotal counts duplicate groups found
	DuplicateGroupsTotal prometheus.Counter

	// BytesReclaimableGauge holds the reclaimable bytes of the last plan
	BytesReclaimableGauge prometheus.Gauge

	// BytesReclaimedTotal counts bytes actually freed by deletion
	BytesReclaimedTotal prometheus.Counter

	// FilesDeletedTotal counts files removed
	FilesDeletedTotal prometheus.Counter

	// DeleteFailuresTotal counts candidates that could not be removed
	DeleteFailuresTotal prometheus.Counter

	// RunDuration tracks how long full runs take
	RunDuration prometheus.Histogram

	// FreeSpacePercent tracks free space of the scan root before and after
	FreeSpacePercent *prometheus.GaugeVec
)

// Init initializes and registers all metrics with Prometheus
// Safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		FilesScannedTotal = NewCounter(
			"dupesweep_files_scanned_total",
			"Total number of files enumerated.",
		)
		FilesHashedTotal = NewCounter(
			"dupesweep_files_hashed_total",
			"Total number of files fully hashed.",
		)
		HashFailuresTotal = NewCounter(
			"dupesweep_hash_failures_total",
			"Total number of files that could not be hashed.",
		)
		WalkErrorsTotal = NewCounter(
			"dupesweep_walk_errors_total",
			"Total number of traversal errors survived.",
		)
		DuplicateGroupsTotal = NewCounter(
			"dupesweep_duplicate_groups_total",
			"Total number of duplicate groups found.",
		)
		BytesReclaimableGauge = NewGauge(
			"dupesweep_bytes_reclaimable",
			"Reclaimable bytes in the most recent deletion plan.",
		)
		BytesReclaimedTotal = NewBytesCounter(
			"dupesweep_bytes_reclaimed_total",
			"Total bytes freed by deletion.",
		)
		FilesDeletedTotal = NewCounter(
			"dupesweep_files_deleted_total",
			"Total number of duplicate files deleted.",
		)
		DeleteFailuresTotal = NewCounter(
			"dupesweep_delete_failures_total",
			"Total number of deletion candidates that could not be removed.",
		)
		RunDuration = NewDurationHistogram(
			"dupesweep_run_duration_seconds",
			"Duration of full dupesweep runs in seconds.",
		)
		FreeSpacePercent = NewGaugeVec(
			"dupesweep_free_space_percent",
			"Free space percentage of the scan root.",
			[]string{"phase"},
		)

		prometheus.MustRegister(
			FilesScannedTotal,
			FilesHashedTotal,
			HashFailuresTotal,
			WalkErrorsTotal,
			DuplicateGroupsTotal,
			BytesReclaimableGauge,
			BytesReclaimedTotal,
			FilesDeletedTotal,
			DeleteFailuresTotal,
			RunDuration,
			FreeSpacePercent,
		)
	})
}

// StartServer starts the metrics HTTP server on the specified address
// Exposes /metrics (Prometheus) and /health
func StartServer(addr string, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv != nil {
		logger.Printf("metrics server already running on %s", currentSrv.Addr)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	currentSrv = srv

	go func() {
		logger.Printf("metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server error: %v", err)
		}
	}()

	// Give server 100ms to start
	time.Sleep(100 * time.Millisecond)
}

// Shutdown gracefully shuts down the metrics server
func Shutdown(ctx context.Context, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv == nil {
		return
	}
	if err := currentSrv.Shutdown(ctx); err != nil {
		logger.Printf("metrics server shutdown error: %v", err)
	}
	currentSrv = nil
}
