package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
)

// handleRunPipeline executes one synchronous invocation and returns the
// terminal state. Failures are reported in the body, not as HTTP errors, so
// callers can always inspect how far the job got.
func (s *Server) handleRunPipeline(c echo.Context) error {
	st := s.engine.Run(c.Request().Context(), c.Param("id"))
	code := http.StatusOK
	if st.Failed() {
		code = http.StatusUnprocessableEntity
	}
	return c.JSON(code, runResponse(st.JobID, string(st.Status), string(st.LastStatus), st.ErrorMessage()))
}

// handleJobState reconstructs the durable view of a job from the store without
// running anything.
func (s *Server) handleJobState(c echo.Context) error {
	ctx := c.Request().Context()
	jobID := c.Param("id")
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return httpError(c, err)
	}

	type stageView struct {
		Present bool `json:"present"`
		Count   int  `json:"count,omitempty"`
	}
	out := struct {
		JobID      string              `json:"job_id"`
		Candidates int                 `json:"candidates"`
		Shortlist  stageView           `json:"shortlist"`
		Screening  stageView           `json:"screening"`
		Calls      []entity.CallRecord `json:"calls,omitempty"`
		FinalPicks stageView           `json:"final_picks"`
	}{JobID: jobID}

	pool, err := s.candidates.ListForJob(ctx, jobID)
	if err != nil {
		return httpError(c, err)
	}
	out.Candidates = len(pool)

	if entries, found, err := s.store.Shortlist(ctx, jobID); err != nil {
		return httpError(c, err)
	} else if found {
		out.Shortlist = stageView{Present: true, Count: len(entries)}
	}
	if sets, found, err := s.store.Screening(ctx, jobID); err != nil {
		return httpError(c, err)
	} else if found {
		out.Screening = stageView{Present: true, Count: len(sets)}
	}
	if calls, found, err := s.store.Calls(ctx, jobID); err != nil {
		return httpError(c, err)
	} else if found {
		// Transcripts stay server-side; the view only exposes statuses.
		for _, call := range calls {
			out.Calls = append(out.Calls, entity.CallRecord{Filename: call.Filename, CallStatus: call.CallStatus})
		}
	}
	if picks, found, err := s.store.FinalPicks(ctx, jobID); err != nil {
		return httpError(c, err)
	} else if found {
		out.FinalPicks = stageView{Present: true, Count: len(picks)}
	}

	return c.JSON(http.StatusOK, out)
}

type runView struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	LastStatus string `json:"last_status,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runResponse(jobID, status, lastStatus, errMsg string) runView {
	if status == string(constants.StatusError) && errMsg == "" {
		errMsg = "pipeline failed"
	}
	return runView{JobID: jobID, Status: status, LastStatus: lastStatus, Error: errMsg}
}
