package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quantumtech/hiredroid/constants"
)

// handleTranscript records a finished screening call. The store enforces the
// exactly-once transition; a repeat upload is acknowledged but ignored.
func (s *Server) handleTranscript(c echo.Context) error {
	ctx := c.Request().Context()
	jobID := c.Param("id")
	filename := constants.NormalizeCVFilename(c.Param("filename"))

	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}

	if err := s.store.MarkCallDone(ctx, jobID, filename, req.Transcript); err != nil {
		return httpError(c, err)
	}

	// Progress may now be possible; run the pipeline and report how far it got.
	st := s.engine.Run(ctx, jobID)
	return c.JSON(http.StatusOK, runResponse(st.JobID, string(st.Status), string(st.LastStatus), st.ErrorMessage()))
}
