package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/export"
	"github.com/quantumtech/hiredroid/internal/extract"
	"github.com/quantumtech/hiredroid/internal/ingest"
	"github.com/quantumtech/hiredroid/internal/llm/groq"
	"github.com/quantumtech/hiredroid/internal/notify"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
	"github.com/quantumtech/hiredroid/internal/schedule"
	"github.com/quantumtech/hiredroid/internal/server"
	"github.com/quantumtech/hiredroid/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
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
		logger.Warn("unknown timezone, falling back to UTC", "tz", cfg.Schedule.Timezone, "error", err)
		loc = time.UTC
	}

	// Google integrations are optional: without a token file the pipeline
	// still runs, it just skips booking and HR mail.
	credentialsPath := envOr("GOOGLE_CREDENTIALS_PATH", "credentials.json")
	var mailer notify.Mailer
	if gm, err := notify.NewGmailMailer(ctx, credentialsPath, cfg.Notify.TokenPath, cfg.Notify.SenderEmail, logger); err != nil {
		logger.Warn("gmail disabled", "error", err)
	} else {
		mailer = gm
	}
	var booker worker.Booker
	if cal, err := schedule.NewGoogleCalendar(ctx, credentialsPath, cfg.Schedule.TokenPath, cfg.Schedule.CalendarID, logger); err != nil {
		logger.Warn("calendar booking disabled", "error", err)
	} else {
		booker = schedule.NewScheduler(cal, schedule.Config{
			Location:     loc,
			DayStartHour: cfg.Schedule.DayStartHour,
			DayEndHour:   cfg.Schedule.DayEndHour,
			SlotDuration: cfg.Schedule.SlotDuration,
			SlotGap:      cfg.Schedule.SlotGap,
			MaxAttempts:  cfg.Schedule.MaxAttempts,
		}, logger)
	}

	cvBaseURL := envOr("CV_BASE_URL", "http://localhost:8080/cvs")

	engine := pipeline.NewEngine(
		logger, jobs, candidates, store,
		pipeline.Workers{
			Shortlist: worker.NewShortlister(llmClient, store, cfg.Policy.ShortlistCap, logger),
			Screening: worker.NewScreener(llmClient, candidates, store, mailer, worker.ScreenerConfig{
				HREmail:   cfg.Notify.HREmail,
				CVBaseURL: cvBaseURL,
			}, logger),
			Calls: worker.NewCallTracker(store, logger),
			FinalPicks: worker.NewPicker(llmClient, candidates, store, booker, mailer, worker.PickerConfig{
				Cap:       cfg.Policy.FinalPickCap,
				HREmail:   cfg.Notify.HREmail,
				CVBaseURL: cvBaseURL,
				Location:  loc,
			}, logger),
		},
		pipeline.Policy{MinPoolSize: cfg.Policy.MinPoolSize},
	)

	extractor := extract.NewService(extract.NewPDFExtractor(extract.PDFConfig{}, logger), candidates, logger)
	transcriber := extract.NewExecTranscriber(extract.AudioConfig{
		Model: os.Getenv("WHISPER_MODEL_PATH"),
	}, logger)
	intake := ingest.NewIntake(extractor, transcriber, store, engine, logger)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    cfg.Ingest.InboxDirs,
		Debounce: cfg.Ingest.Debounce,
	})
	if err != nil {
		logger.Error("failed to start inbox watcher", "roots", cfg.Ingest.InboxDirs, "error", err)
		os.Exit(1)
	}
	go intake.Consume(ctx, events, watchErrs)

	exporter := export.NewService(jobs, candidates, store, logger)
	srv := server.New(logger, engine, jobs, candidates, store, exporter, intake, server.Config{
		InboxDir: firstOr(cfg.Ingest.InboxDirs, "./data/inbox"),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("hiredroidd starting",
		"addr", cfg.Server.Addr,
		"min_pool", cfg.Policy.MinPoolSize,
		"shortlist_cap", cfg.Policy.ShortlistCap,
		"final_pick_cap", cfg.Policy.FinalPickCap,
		"cv_ext", constants.CVExtension,
	)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstOr(list []string, def string) string {
	if len(list) > 0 {
		return list[0]
	}
	return def
}
