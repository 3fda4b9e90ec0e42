// Command runpipeline runs one pipeline invocation for a job and prints the
// terminal state as JSON. Useful for cron-style re-triggers and debugging.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/llm/groq"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
	"github.com/quantumtech/hiredroid/internal/worker"
)

func main() {
	var (
		jobID   = flag.String("job", "", "job id to run (required)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	if *jobID == "" {
		fmt.Fprintln(os.Stderr, "usage: runpipeline -job <job-id> [-v]")
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		Path:            cfg.Database.Path,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	jobs := repository.NewJobRepository(db, logger)
	candidates := repository.NewCandidateRepository(db, logger)
	store := repository.NewArtifactStore(db, logger)

	llmClient := groq.NewClient(groq.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	}, logger)

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		loc = time.UTC
	}

	// The one-shot runner never books calendars or sends mail; it only moves
	// the job as far as the store allows.
	engine := pipeline.NewEngine(
		logger, jobs, candidates, store,
		pipeline.Workers{
			Shortlist: worker.NewShortlister(llmClient, store, cfg.Policy.ShortlistCap, logger),
			Screening: worker.NewScreener(llmClient, candidates, store, nil, worker.ScreenerConfig{}, logger),
			Calls:     worker.NewCallTracker(store, logger),
			FinalPicks: worker.NewPicker(llmClient, candidates, store, nil, nil, worker.PickerConfig{
				Cap:      cfg.Policy.FinalPickCap,
				Location: loc,
			}, logger),
		},
		pipeline.Policy{MinPoolSize: cfg.Policy.MinPoolSize},
	)

	st := engine.Run(ctx, *jobID)

	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Error("failed to encode state", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if st.Failed() {
		os.Exit(1)
	}
}
