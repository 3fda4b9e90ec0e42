package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleReport streams the per-job XLSX recruitment report.
func (s *Server) handleReport(c echo.Context) error {
	jobID := c.Param("id")
	data, err := s.exporter.ExportJobReportXLSX(c.Request().Context(), jobID)
	if err != nil {
		return httpError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="recruitment_%s.xlsx"`, jobID))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
