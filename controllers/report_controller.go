package controllers

import (
	"net/http"

	"ember_server/middleware"
	"ember_server/services"
)

// ReportController handles HTTP requests for abuse reports
type ReportController struct {
	ReportService *services.ReportService
}

// NewReportController creates a new ReportController instance
func NewReportController(reportService *services.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// FileReport stores one abuse report
func (rc *ReportController) FileReport(w http.ResponseWriter, r *http.Request) {
	var in services.ReportInput
	if !decodeBody(w, r, &in) {
		return
	}
	report, err := rc.ReportService.File(r.Context(), middleware.Identity(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
