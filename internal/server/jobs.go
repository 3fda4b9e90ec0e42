package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/entity"
)

func (s *Server) handleListJobs(c echo.Context) error {
	jobs, err := s.jobs.List(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, jobs)
}

func (s *Server) handleGetJob(c echo.Context) error {
	job, err := s.jobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleUpsertJob(c echo.Context) error {
	var job entity.Job
	if err := c.Bind(&job); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}
	if job.ID == "" || job.Title == "" || job.Description == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "id, title and description are required"})
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if err := s.jobs.Upsert(c.Request().Context(), job); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, job)
}

func (s *Server) handleListCandidates(c echo.Context) error {
	pool, err := s.candidates.ListForJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pool)
}

// handleUploadCV spools one CV into the inbox under the {jobID}_{filename}
// convention and hands it straight to intake, which extracts the record and
// triggers a pipeline run.
func (s *Server) handleUploadCV(c echo.Context) error {
	ctx := c.Request().Context()
	jobID := c.Param("id")
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return httpError(c, err)
	}

	fh, err := c.FormFile("cv")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "multipart field 'cv' is required"})
	}
	filename := constants.NormalizeCVFilename(filepath.Base(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return httpError(c, err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.inboxDir, 0o755); err != nil {
		return httpError(c, err)
	}
	dstPath := filepath.Join(s.inboxDir, fmt.Sprintf("%s_%s", jobID, filename))
	dst, err := os.Create(dstPath)
	if err != nil {
		return httpError(c, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return httpError(c, err)
	}
	if err := dst.Close(); err != nil {
		return httpError(c, err)
	}

	if err := s.intake.Handle(ctx, dstPath); err != nil {
		return httpError(c, fmt.Errorf("%w: process upload: %v", common.ErrInvalidInput, err))
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"job_id":   jobID,
		"filename": filename,
	})
}
