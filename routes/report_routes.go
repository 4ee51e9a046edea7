package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterReportRoutes sets up routes for moderation under /api/reports
func RegisterReportRoutes(r *mux.Router, reportService *services.ReportService) {
	controller := controllers.NewReportController(reportService)

	reportRouter := r.PathPrefix("/api/reports").Subrouter()
	reportRouter.HandleFunc("", controller.FileReport).Methods("POST")
}
