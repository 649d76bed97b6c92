package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/DaraMoh/solo-gym-app/internal/catalog"
	"github.com/DaraMoh/solo-gym-app/internal/config"
	"github.com/DaraMoh/solo-gym-app/internal/ingest"
	"github.com/DaraMoh/solo-gym-app/internal/ingest/alpha"
	"github.com/DaraMoh/solo-gym-app/internal/storage"
	"github.com/DaraMoh/solo-gym-app/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	file := flag.String("file", "", "path to an Alpha Progression CSV export (required)")
	userID := flag.String("user", "local", "user the sessions are recorded for")
	dryRun := flag.Bool("dry-run", false, "report what would be imported without recording it")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Usage: sologym-import -config config.yaml -file export.csv [-user local] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Error("cannot open export", "path", *file, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be recorded")
		workouts, err := alpha.Preview(*userID, f)
		if err != nil {
			log.Error("parse failed", "error", err)
			os.Exit(1)
		}
		for _, w := range workouts {
			log.Info("session",
				"date", w.StartTime.Format("2006-01-02 15:04"),
				"title", w.Title,
				"exercises", len(w.Exercises),
				"sets", w.CompletedSets(),
				"duration_min", w.Duration,
				"volume_lbs", w.TotalVolume,
			)
		}
		log.Info("dry run complete", "sessions", len(workouts))
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	cat, err := catalog.Load()
	if err != nil {
		log.Error("failed to load exercise catalog", "error", err)
		os.Exit(1)
	}

	tr := tracker.New(store, cat, log, nil)
	if _, err := tr.Initialize(ctx, *userID, ""); err != nil {
		log.Error("failed to initialize profile", "user", *userID, "error", err)
		os.Exit(1)
	}

	// Run import
	result, err := alpha.NewProvider(tr, log, nil).Ingest(ctx, *userID, f)
	if err != nil {
		log.Error("import failed", "error", err)
		if result != nil {
			printResult(log, result)
		}
		os.Exit(1)
	}

	printResult(log, result)
	log.Info("import complete")
}

func printResult(log *slog.Logger, r *ingest.Result) {
	log.Info("import stats",
		"sessions_received", r.SessionsReceived,
		"workouts_imported", r.WorkoutsImported,
		"workouts_skipped", r.WorkoutsSkipped,
		"sets_imported", r.SetsImported,
		"warmups_skipped", r.WarmupsSkipped,
		"xp_earned", r.XPEarned,
		"level_ups", r.LevelUps,
		"missions_completed", r.MissionsCompleted,
	)
}
