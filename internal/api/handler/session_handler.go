package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/internal/pipeline"
	"go-stats-dashboard/internal/render"
	"go-stats-dashboard/internal/session"
	"go-stats-dashboard/internal/store"
	"go-stats-dashboard/pkg/utils"

	"github.com/google/uuid"
)

const sessionsPrefix = "/api/v1/sessions/"

// CreateSessionRequest selects the dataset of a new session
type CreateSessionRequest struct {
	Dataset model.DatasetKind `json:"dataset" example:"livestock"`
}

// OptionsResponse lists the control choices of a session
type OptionsResponse struct {
	Dataset        model.DatasetKind `json:"dataset"`
	CategoryColumn string            `json:"categoryColumn"`
	Categories     []string          `json:"categories"`
	Metrics        []string          `json:"metrics"`
	Reducers       []model.Reducer   `json:"reducers"`
	DefaultReducer model.Reducer     `json:"defaultReducer"`
}

// DashboardResponse is the payload of one dashboard run
type DashboardResponse struct {
	RunID     string                 `json:"runId"`
	SessionID string                 `json:"sessionId"`
	Dataset   model.DatasetKind      `json:"dataset"`
	Livestock *model.DashboardResult `json:"livestock,omitempty"`
	Penguins  *model.PenguinResult   `json:"penguins,omitempty"`
}

// CreateSession loads a dataset into a new session
// @Summary Create a session
// @Description Load the livestock or penguin tables into a new session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest true "Dataset to load"
// @Success 201 {object} session.Session "Session created"
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 502 {object} ErrorResponse "Data source unavailable"
// @Router /sessions [post]
func (h *DashboardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput("invalid JSON payload"))
		return
	}

	s, err := h.sessions.Create(r.Context(), req.Dataset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// ListSessions lists live sessions
// @Summary List sessions
// @Description Get all live sessions, oldest first
// @Tags sessions
// @Produce json
// @Success 200 {array} session.Session "List of sessions"
// @Router /sessions [get]
func (h *DashboardHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.List())
}

// GetSession retrieves a session
// @Summary Get session
// @Description Retrieve one session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Session "Session details"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (h *DashboardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// DeleteSession drops a session and its tables
// @Summary Delete session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204 "Session deleted"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /sessions/{id} [delete]
func (h *DashboardHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, sessionsPrefix, "")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOptions lists the filter and metric choices of a session
// @Summary Get dashboard options
// @Description Sorted distinct categories, metric columns and reducers for the session's dataset
// @Tags dashboard
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} OptionsResponse "Control choices"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /sessions/{id}/options [get]
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "/options")
	if err != nil {
		writeError(w, err)
		return
	}

	resp := OptionsResponse{Dataset: s.Dataset}
	switch s.Dataset {
	case model.DatasetLivestock:
		resp.CategoryColumn = h.defaults.CategoryColumn
		resp.Categories, err = pipeline.Options(s.Livestock.Records, h.defaults.CategoryColumn)
		resp.Metrics = h.defaults.MetricColumns
		resp.Reducers = model.Reducers
		resp.DefaultReducer = h.defaults.Reducer
	case model.DatasetPenguins:
		resp.CategoryColumn = pipeline.SexColumn
		resp.Categories, err = pipeline.Options(s.Penguins, pipeline.SexColumn)
		resp.Metrics = []string{pipeline.MassColumn, pipeline.FlipperColumn}
		resp.Reducers = []model.Reducer{model.ReducerMean}
		resp.DefaultReducer = model.ReducerMean
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDashboard runs the dashboard for the requested selection
// @Summary Run dashboard
// @Description Filter, aggregate, join and present the session's tables. Livestock sessions read categories, metrics, reducer and top5; penguin sessions read sex.
// @Tags dashboard
// @Produce json
// @Param id path string true "Session ID"
// @Param categories query []string false "Selected provinces (empty selects all)" collectionFormat(multi)
// @Param metrics query []string false "Metric columns" collectionFormat(multi)
// @Param reducer query string false "sum, mean or median" Enums(sum, mean, median)
// @Param top5 query bool false "Keep only the top 5 provinces"
// @Param sex query []string false "Selected sexes (penguins)" collectionFormat(multi)
// @Success 200 {object} DashboardResponse "Dashboard payload"
// @Failure 400 {object} ErrorResponse "Invalid selection"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Failure 422 {object} ErrorResponse "Malformed metric value"
// @Router /sessions/{id}/dashboard [get]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "/dashboard")
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.compute(r, s)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBarChart renders a metric's bar chart
// @Summary Bar chart PNG
// @Tags artifacts
// @Produce png
// @Param id path string true "Session ID"
// @Param metric query string false "Metric column, the first selected metric by default"
// @Success 200 {file} binary "PNG image"
// @Failure 404 {object} ErrorResponse "Session or metric not found"
// @Router /sessions/{id}/charts/bar [get]
func (h *DashboardHandler) GetBarChart(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "/charts/bar")
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.compute(r, s)
	if err != nil {
		writeError(w, err)
		return
	}

	var chart model.BarChart
	metric := r.URL.Query().Get("metric")
	if resp.Livestock != nil {
		panel, err := pickPanel(resp.Livestock, metric)
		if err != nil {
			writeError(w, err)
			return
		}
		chart = panel.Bar
	} else {
		if metric == "" {
			metric = pipeline.MassColumn
		}
		c := resp.Penguins.Chart(metric)
		if c == nil {
			writeError(w, errors.NotFound(fmt.Sprintf("chart %s", metric)))
			return
		}
		chart = *c
	}

	data, err := render.BarChartPNG(chart, render.DefaultWidth, render.DefaultHeight)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "image/png", data)
}

// GetMapChart renders a metric's point map
// @Summary Map PNG
// @Description Points at province coordinates, sized by the reduced value
// @Tags artifacts
// @Produce png
// @Param id path string true "Session ID"
// @Param metric query string false "Metric column, the first selected metric by default"
// @Success 200 {file} binary "PNG image"
// @Failure 400 {object} ErrorResponse "Session has no map"
// @Failure 404 {object} ErrorResponse "Session or metric not found"
// @Router /sessions/{id}/charts/map [get]
func (h *DashboardHandler) GetMapChart(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "/charts/map")
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Dataset != model.DatasetLivestock {
		writeError(w, errors.InvalidInput("map is only available for livestock sessions"))
		return
	}
	resp, err := h.compute(r, s)
	if err != nil {
		writeError(w, err)
		return
	}
	panel, err := pickPanel(resp.Livestock, r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := render.MapPNG(panel.Map, panel.Metric, render.DefaultWidth, render.DefaultHeight)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBytes(w, "image/png", data)
}

// GetWorkbook exports the dashboard tables as XLSX
// @Summary Table workbook
// @Tags artifacts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Success 200 {file} binary "XLSX workbook"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /sessions/{id}/table.xlsx [get]
func (h *DashboardHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "/table.xlsx")
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.compute(r, s)
	if err != nil {
		writeError(w, err)
		return
	}

	var sheets []render.Sheet
	if resp.Livestock != nil {
		sheets = render.DashboardSheets(resp.Livestock)
	} else {
		sheets = render.PenguinSheets(resp.Penguins)
	}
	data, err := render.WorkbookXLSX(sheets)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s.xlsx"`, s.Dataset, resp.RunID[:8]))
	writeBytes(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetReport renders the dashboard as an HTML page
// @Summary HTML report
// @Tags artifacts
// @Produce html
// @Param id path string true "Session ID"
// @Success 200 {string} string "HTML page"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /sessions/{id}/report [get]
func (h *DashboardHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessionFromPath(r, "/report")
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.compute(r, s)
	if err != nil {
		writeError(w, err)
		return
	}

	chartURL := chartURLs(s.ID, r.URL.Query())
	var page []byte
	if resp.Livestock != nil {
		page = render.ReportHTML(resp.Livestock, chartURL)
	} else {
		page = render.PenguinReportHTML(resp.Penguins, chartURL)
	}
	writeBytes(w, "text/html; charset=utf-8", page)
}

// ------------------- helpers -------------------

func (h *DashboardHandler) sessionFromPath(r *http.Request, suffix string) (*session.Session, error) {
	id, err := pathID(r.URL.Path, sessionsPrefix, suffix)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(id)
}

// compute runs the session's dashboard and records the run in the ledger
func (h *DashboardHandler) compute(r *http.Request, s *session.Session) (*DashboardResponse, error) {
	resp := &DashboardResponse{
		RunID:     uuid.New().String(),
		SessionID: s.ID,
		Dataset:   s.Dataset,
	}

	var selection interface{}
	var sel model.Selection
	var sexes []string
	if s.Dataset == model.DatasetLivestock {
		var err error
		if sel, err = h.parseSelection(r.URL.Query()); err != nil {
			return nil, err
		}
		selection = sel
	} else {
		sexes = utils.SplitList(r.URL.Query()["sex"])
		selection = map[string][]string{"sex": sexes}
	}

	if err := h.store.SaveRun(resp.RunID, s.ID, s.Dataset, selection); err != nil {
		return nil, err
	}
	if err := h.store.UpdateRunStatus(resp.RunID, store.StatusRunning); err != nil {
		return nil, err
	}
	tracker := pipeline.NewTracker(resp.RunID, h.store.Logger(resp.RunID))

	var err error
	switch s.Dataset {
	case model.DatasetLivestock:
		resp.Livestock, err = pipeline.Run(s.Livestock, sel, pipeline.DashboardOptions{
			CategoryColumn: h.defaults.CategoryColumn,
			Separators:     h.defaults.Separators,
			Recorder:       tracker,
		})
	case model.DatasetPenguins:
		resp.Penguins, err = pipeline.RunPenguins(s.Penguins, sexes)
		if err == nil {
			tracker.RecordStage("penguins", "info", "Penguin run completed", map[string]interface{}{
				"rows": len(resp.Penguins.Raw.Rows),
			})
		} else {
			tracker.RecordStage("penguins", "error", err.Error(), nil)
		}
	}

	if err != nil {
		if e := h.store.SaveRunError(resp.RunID, err); e != nil {
			return nil, e
		}
		if e := h.store.FinishRun(resp.RunID, store.StatusFailed, tracker.Fail()); e != nil {
			return nil, e
		}
		return nil, err
	}
	if err := h.store.FinishRun(resp.RunID, store.StatusCompleted, tracker.Complete()); err != nil {
		return nil, err
	}
	return resp, nil
}

func pickPanel(result *model.DashboardResult, metric string) (*model.MetricPanel, error) {
	if metric == "" {
		if len(result.Panels) == 0 {
			return nil, errors.InvalidInput("no metric selected")
		}
		return &result.Panels[0], nil
	}
	panel := result.Panel(metric)
	if panel == nil {
		return nil, errors.NotFound(fmt.Sprintf("metric %s", metric))
	}
	return panel, nil
}

// chartURLs points report images at the chart endpoints with the same selection
func chartURLs(sessionID string, query url.Values) render.ChartURL {
	return func(kind, metric string) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = append([]string(nil), v...)
		}
		q.Set("metric", metric)
		return fmt.Sprintf("%s%s/charts/%s?%s", sessionsPrefix, url.PathEscape(sessionID), kind, q.Encode())
	}
}
