package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/internal/session"
	"go-stats-dashboard/internal/store"
	"go-stats-dashboard/pkg/utils"
)

// Defaults are the dashboard settings a request may leave out
type Defaults struct {
	CategoryColumn string
	MetricColumns  []string
	Reducer        model.Reducer
	Separators     string
}

// DashboardHandler serves sessions, dashboard runs, artifacts and the run ledger
type DashboardHandler struct {
	sessions *session.Manager
	store    *store.Store
	defaults Defaults
}

// NewDashboardHandler creates the handler set
func NewDashboardHandler(sessions *session.Manager, st *store.Store, defaults Defaults) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, store: st, defaults: defaults}
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error code to its HTTP status
func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeMalformedMetric:
		return http.StatusUnprocessableEntity
	case errors.CodeSourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		log.Printf("❌ %s: %v\n", code, err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Failed to encode response: %v\n", err)
	}
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("⚠️ Failed to write response: %v\n", err)
	}
}

// pathID extracts the ID between prefix and suffix of a request path
func pathID(path, prefix, suffix string) (string, error) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) || len(path) < len(prefix)+len(suffix) {
		return "", errors.InvalidInput("invalid path")
	}
	id := path[len(prefix) : len(path)-len(suffix)]
	if id == "" {
		return "", errors.InvalidInput("ID is required")
	}
	if strings.Contains(id, "/") {
		return "", errors.NotFound(fmt.Sprintf("resource %s", id))
	}
	return id, nil
}

// parseSelection reads the dashboard controls from query parameters:
// repeated categories and metrics, reducer and top5.
func (h *DashboardHandler) parseSelection(q url.Values) (model.Selection, error) {
	sel := model.Selection{
		Categories: utils.SplitList(q["categories"]),
		Metrics:    utils.SplitList(q["metrics"]),
	}

	if raw := q.Get("reducer"); raw != "" {
		r, err := model.ParseReducer(raw)
		if err != nil {
			return sel, errors.WithCode(errors.CodeInvalidInput, err)
		}
		sel.Reducer = r
	}
	if raw := q.Get("top5"); raw != "" {
		top5, err := strconv.ParseBool(raw)
		if err != nil {
			return sel, errors.InvalidInput(fmt.Sprintf("top5 must be a boolean, got %q", raw))
		}
		sel.Top5 = top5
	}

	return sel.WithDefaults(h.defaults.MetricColumns, h.defaults.Reducer), nil
}
