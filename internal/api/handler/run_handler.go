package handler

import (
	"net/http"
)

const runsPrefix = "/api/v1/runs/"

// ListRuns lists recorded dashboard runs
// @Summary List runs
// @Description Get all dashboard runs, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} store.Run "List of runs"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /runs [get]
func (h *DashboardHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListRuns()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves a recorded run
// @Summary Get run
// @Description Retrieve a run with its selection, status and stage metrics
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} store.Run "Run details"
// @Failure 404 {object} ErrorResponse "Run not found"
// @Router /runs/{id} [get]
func (h *DashboardHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, runsPrefix, "")
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := h.store.GetRun(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetRunErrors retrieves the errors of a run
// @Summary Get run errors
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {array} store.RunError "List of errors"
// @Failure 404 {object} ErrorResponse "Run not found"
// @Router /runs/{id}/errors [get]
func (h *DashboardHandler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	id, err := h.existingRun(r, "/errors")
	if err != nil {
		writeError(w, err)
		return
	}
	errs, err := h.store.GetRunErrors(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errs)
}

// GetRunLogs retrieves the stage logs of a run
// @Summary Get run logs
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {array} store.RunLog "List of stage logs"
// @Failure 404 {object} ErrorResponse "Run not found"
// @Router /runs/{id}/logs [get]
func (h *DashboardHandler) GetRunLogs(w http.ResponseWriter, r *http.Request) {
	id, err := h.existingRun(r, "/logs")
	if err != nil {
		writeError(w, err)
		return
	}
	logs, err := h.store.GetRunLogs(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *DashboardHandler) existingRun(r *http.Request, suffix string) (string, error) {
	id, err := pathID(r.URL.Path, runsPrefix, suffix)
	if err != nil {
		return "", err
	}
	if _, err := h.store.GetRun(id); err != nil {
		return "", err
	}
	return id, nil
}
