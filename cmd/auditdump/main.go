// Command auditdump prints the audit trail from the configured snapshot
// sink, most recent first. Offline operational tool; it never writes.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"field-service-compliance/internal/config"
	"field-service-compliance/internal/persist"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sink, err := persist.NewSink(ctx, cfg)
	if err != nil {
		log.Fatalf("init snapshot sink: %v", err)
	}

	snap, found, err := sink.Load(ctx)
	if err != nil {
		log.Fatalf("load snapshot: %v", err)
	}
	if !found {
		log.Printf("no snapshot found (backend=%s)", cfg.SnapshotBackend)
		return
	}

	logs := snap.AuditLogs
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Timestamp.After(logs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tJOB\tACTOR\tACTION")
	for _, entry := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.Timestamp.Format(time.RFC3339), entry.JobID, entry.UserID, entry.Action)
	}
	_ = w.Flush()
}
