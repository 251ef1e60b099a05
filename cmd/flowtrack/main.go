package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flowtrack/flowtrack/internal/activity"
	"github.com/flowtrack/flowtrack/internal/batch"
	"github.com/flowtrack/flowtrack/internal/classify"
	"github.com/flowtrack/flowtrack/internal/config"
	"github.com/flowtrack/flowtrack/internal/naming"
	"github.com/flowtrack/flowtrack/internal/notify"
	"github.com/flowtrack/flowtrack/internal/realtime"
	"github.com/flowtrack/flowtrack/internal/senses"
	"github.com/flowtrack/flowtrack/internal/session"
	"github.com/flowtrack/flowtrack/internal/store"
)

func main() {
	log.Println("flowtrack - activity sessionization daemon")

	configPath := flag.String("config", "flowtrack.yaml", "path to config file")
	flag.Parse()

	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err == nil {
		log.Println("[config] Loaded .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	classifier := classify.NewKeywordClassifier()

	// Notification sinks: always the log, Discord when configured.
	sinks := notify.Fanout{notify.LogNotifier{}}
	if cfg.Discord.Token != "" {
		discord, err := notify.NewDiscordNotifier(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			log.Printf("Warning: discord notifier disabled: %v", err)
		} else {
			defer discord.Close()
			sinks = append(sinks, discord)
		}
	}

	onClose := func(s session.Session, records []activity.Record) {
		ids := make([]int64, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		if _, _, err := st.SaveSession(s, ids); err != nil {
			log.Printf("[main] Failed to save realtime session: %v", err)
			return
		}
		sinks.Notify(notify.NewClosedEvent(s))
	}
	onTransition := func(t realtime.Transition) {
		sinks.Notify(notify.NewTransitionEvent(t))
	}

	var sessionizer realtime.Sessionizer
	switch cfg.Realtime.Strategy {
	case config.StrategySwitch:
		sessionizer = realtime.NewGrouper(realtime.NewEngine(cfg.EngineConfig()), nil, onClose, onTransition)
	default:
		sessionizer = realtime.NewMachine(cfg.MachineConfig(), onClose, onTransition)
	}
	worker := realtime.NewWorker(sessionizer, 0)
	worker.Start()

	// Every incoming activity is classified, persisted, then handed to
	// the realtime worker with its store ID attached.
	ingest := func(r activity.Record) {
		if r.Score == nil {
			if res, err := classifier.Classify(context.Background(), r.Details); err == nil {
				r.Score = &res.Score
				r.Confidence = &res.Confidence
			}
		}
		id, err := st.InsertActivity(r)
		if err != nil {
			log.Printf("[main] Failed to persist activity: %v", err)
			return
		}
		r.ID = id
		worker.Submit(r)
	}

	// Activity source: external feed when configured, else sample the
	// host's active process.
	var source interface{ Stop() error }
	if cfg.FeedPath != "" {
		feed := senses.NewFeedSense(senses.FeedConfig{Path: cfg.FeedPath}, ingest)
		if err := feed.Start(); err != nil {
			log.Fatalf("Failed to start feed sense: %v", err)
		}
		source = feed
	} else {
		proc := senses.NewProcSense(time.Duration(cfg.Poller.IntervalSec)*time.Second, ingest)
		if err := proc.Start(); err != nil {
			log.Fatalf("Failed to start proc sense: %v", err)
		}
		source = proc
	}

	// Periodic batch pass sweeps up whatever the realtime path missed
	// and refreshes scores after late classification.
	runner := batch.NewRunner(st, naming.NewOverlapMatcher(st), cfg.BatchConfig())
	batchStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Batch.IntervalSec) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-batchStop:
				return
			case <-ticker.C:
				if _, err := runner.Run(); err != nil {
					log.Printf("[main] Batch pass failed: %v", err)
				}
				if err := st.RecomputeScoresForDay(time.Now().UTC()); err != nil {
					log.Printf("[main] Score recompute failed: %v", err)
				}
			}
		}
	}()

	log.Printf("[main] Running (strategy=%s, db=%s)", cfg.Realtime.Strategy, cfg.DBPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[main] Shutting down...")
	close(batchStop)
	if err := source.Stop(); err != nil {
		log.Printf("[main] Source stop: %v", err)
	}
	worker.Stop()
	log.Println("[main] Goodbye")
}
