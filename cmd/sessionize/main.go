package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/flowtrack/flowtrack/internal/batch"
	"github.com/flowtrack/flowtrack/internal/config"
	"github.com/flowtrack/flowtrack/internal/naming"
	"github.com/flowtrack/flowtrack/internal/store"
)

// sessionize runs one incremental batch pass over the activity store
// and exits. Safe to run from cron alongside the daemon.
func main() {
	configPath := flag.String("config", "flowtrack.yaml", "path to config file")
	recompute := flag.Bool("recompute", false, "also recompute today's session scores")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	runner := batch.NewRunner(st, naming.NewOverlapMatcher(st), cfg.BatchConfig())
	report, err := runner.Run()
	if err != nil {
		log.Fatalf("Batch pass failed: %v", err)
	}

	if *recompute {
		if err := st.RecomputeScoresForDay(time.Now().UTC()); err != nil {
			log.Fatalf("Score recompute failed: %v", err)
		}
	}

	fmt.Printf("ranges processed:    %d\n", report.Ranges)
	fmt.Printf("sessions created:    %d\n", report.SessionsCreated)
	fmt.Printf("activities assigned: %d\n", report.ActivitiesAssigned)
	if report.OverlapViolations > 0 {
		fmt.Printf("ranges skipped (overlap): %d\n", report.OverlapViolations)
		os.Exit(1)
	}
}
