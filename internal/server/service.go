package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/export"
	"github.com/quantumtech/hiredroid/internal/ingest"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// Server wires the HTTP surface: job management, pipeline triggers, transcript
// intake, and report export.
type Server struct {
	e          *echo.Echo
	log        *slog.Logger
	engine     *pipeline.Engine
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	store      repository.ArtifactStore
	exporter   *export.Service
	intake     *ingest.Intake
	inboxDir   string
}

type Config struct {
	InboxDir string // where uploaded CVs are spooled for intake
}

func New(
	logger *slog.Logger,
	engine *pipeline.Engine,
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	store repository.ArtifactStore,
	exporter *export.Service,
	intake *ingest.Intake,
	cfg Config,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		e:          echo.New(),
		log:        logger,
		engine:     engine,
		jobs:       jobs,
		candidates: candidates,
		store:      store,
		exporter:   exporter,
		intake:     intake,
		inboxDir:   cfg.InboxDir,
	}
	s.e.HideBanner = true
	s.e.Use(middleware.Recover())
	s.e.Use(middleware.RequestID())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/health", s.handleHealth)

	api := s.e.Group("/api")
	api.GET("/jobs", s.handleListJobs)
	api.POST("/jobs", s.handleUpsertJob)
	api.GET("/jobs/:id", s.handleGetJob)
	api.POST("/jobs/:id/run", s.handleRunPipeline)
	api.GET("/jobs/:id/state", s.handleJobState)
	api.POST("/jobs/:id/cvs", s.handleUploadCV)
	api.GET("/jobs/:id/candidates", s.handleListCandidates)
	api.POST("/jobs/:id/calls/:filename/transcript", s.handleTranscript)
	api.GET("/jobs/:id/report", s.handleReport)
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("server.start", "addr", addr)
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// httpError maps the failure taxonomy onto status codes.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, common.ErrWorkerUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
