package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"dupesweep/internal/database"
	"dupesweep/internal/exitcodes"
)

func main() {
	dbPath := flag.String("db", "dupesweep.db", "Path to audit database")
	recent := flag.Int("recent", 0, "Show N most recent audit rows")
	stats := flag.Bool("stats", false, "Show deletion statistics")
	action := flag.String("action", "", "Filter by action (DELETE, SKIP, ERROR, DRY_RUN, DECLINED)")
	digest := flag.String("digest", "", "Filter by content digest (hex)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	largest := flag.Int("largest", 0, "Show N largest deletions")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	db, err := database.NewAuditDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		showRecent(db, *recent, *jsonOutput)
	case *action != "":
		showByAction(db, *action, *jsonOutput)
	case *digest != "":
		showByDigest(db, *digest, *jsonOutput)
	case *pathPattern != "":
		showByPath(db, *pathPattern, *jsonOutput)
	case *largest > 0:
		showLargest(db, *largest, *jsonOutput)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  dupesweep-query --recent 10          # Show 10 most recent audit rows")
		fmt.Println("  dupesweep-query --stats              # Show deletion statistics")
		fmt.Println("  dupesweep-query --action DELETE      # Show only deletions")
		fmt.Println("  dupesweep-query --digest 3f2a91...   # Show outcomes for one digest")
		fmt.Println("  dupesweep-query --path '/data/%'     # Show rows from /data")
		fmt.Println("  dupesweep-query --largest 10         # Show 10 largest deletions")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.AuditDB, days int, jsonOutput bool) {
	stats, err := db.GetStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Deletion Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Total Deletions:  %d\n", stats.TotalDeleted)
	fmt.Printf("Total Errors:     %d\n", stats.TotalErrors)
	fmt.Printf("Space Reclaimed:  %s\n\n", humanize.IBytes(uint64(stats.BytesReclaimed)))

	if len(stats.ByAction) > 0 {
		fmt.Println("By Action:")
		for action, count := range stats.ByAction {
			fmt.Printf("  %-15s %d\n", action, count)
		}
	}
}

func showRecent(db *database.AuditDB, limit int, jsonOutput bool) {
	records, err := db.GetRecent(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get recent rows: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	printRecords(records)
}

func showByAction(db *database.AuditDB, action string, jsonOutput bool) {
	records, err := db.GetByAction(action)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by action: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	fmt.Printf("Records with action: %s\n\n", action)
	printRecords(records)
}

func showByDigest(db *database.AuditDB, digest string, jsonOutput bool) {
	records, err := db.GetByDigest(digest)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by digest: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	fmt.Printf("Records for digest: %s\n\n", digest)
	printRecords(records)
}

func showByPath(db *database.AuditDB, pathPattern string, jsonOutput bool) {
	records, err := db.GetByPath(pathPattern)
	if err != nil {
		log.Fatalf("ERROR: Failed to query by path: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	fmt.Printf("Records matching path pattern: %s\n\n", pathPattern)
	printRecords(records)
}

func showLargest(db *database.AuditDB, limit int, jsonOutput bool) {
	records, err := db.GetLargest(limit)
	if err != nil {
		log.Fatalf("ERROR: Failed to get largest deletions: %v", err)
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	fmt.Printf("Largest %d deletions:\n\n", limit)
	printRecords(records)
}

func printJSON(records []database.AuditRecord) {
	data, _ := json.MarshalIndent(records, "", "  ")
	fmt.Println(string(data))
}

func printRecords(records []database.AuditRecord) {
	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tAction\tDigest\tSize\tPath")
	_, _ = fmt.Fprintln(w, "--\t---------\t------\t------\t----\t----")

	for _, r := range records {
		shortDigest := r.Digest
		if len(shortDigest) > 12 {
			shortDigest = shortDigest[:12]
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Action,
			shortDigest,
			humanize.IBytes(uint64(r.Size)),
			r.Path,
		)
	}
	_ = w.Flush()
}
