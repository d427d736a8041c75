package api

import (
	"go-stats-dashboard/internal/api/handler"
	"go-stats-dashboard/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"
)

func RegisterRoutes(r *router.Router, h *handler.DashboardHandler) {
	r.POST("/api/v1/sessions", h.CreateSession)
	r.GET("/api/v1/sessions", h.ListSessions)
	r.GET("/api/v1/sessions/*/options", h.GetOptions)
	r.GET("/api/v1/sessions/*/dashboard", h.GetDashboard)
	r.GET("/api/v1/sessions/*/charts/bar", h.GetBarChart)
	r.GET("/api/v1/sessions/*/charts/map", h.GetMapChart)
	r.GET("/api/v1/sessions/*/table.xlsx", h.GetWorkbook)
	r.GET("/api/v1/sessions/*/report", h.GetReport)
	r.GET("/api/v1/sessions/*", h.GetSession)
	r.DELETE("/api/v1/sessions/*", h.DeleteSession)

	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/*/errors", h.GetRunErrors)
	r.GET("/api/v1/runs/*/logs", h.GetRunLogs)
	r.GET("/api/v1/runs/*", h.GetRun)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
