package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go-stats-dashboard/internal/api"
	"go-stats-dashboard/internal/api/handler"
	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/internal/pipeline"
	"go-stats-dashboard/internal/session"
	"go-stats-dashboard/internal/store"
	"go-stats-dashboard/pkg/router"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const cows = "cows (ตัว)"

type fakeLoader struct {
	records [][]string
	err     error
}

func (f *fakeLoader) LoadLivestock(ctx context.Context) (*pipeline.Tables, error) {
	if f.err != nil {
		return nil, f.err
	}
	records, err := pipeline.FrameFromRecords(f.records, nil)
	if err != nil {
		return nil, err
	}
	ref, err := pipeline.FrameFromRecords([][]string{
		{pipeline.ReferenceNameColumn, pipeline.ReferenceLatColumn, pipeline.ReferenceLonColumn},
		{"A", "13.75", "100.5"},
		{"B", "18.79", "98.98"},
	}, map[string]series.Type{pipeline.ReferenceLatColumn: series.Float, pipeline.ReferenceLonColumn: series.Float})
	if err != nil {
		return nil, err
	}
	return &pipeline.Tables{Records: records, Reference: ref}, nil
}

func (f *fakeLoader) LoadPenguins(ctx context.Context) (dataframe.DataFrame, error) {
	if f.err != nil {
		return dataframe.DataFrame{}, f.err
	}
	return pipeline.FrameFromRecords([][]string{
		{"species", "flipper_length_mm", "body_mass_g", "sex"},
		{"Adelie", "181", "3750", "Male"},
		{"Adelie", "186", "3800", "Female"},
		{"Gentoo", "211", "4500", "Female"},
		{"Gentoo", "230", "5700", "Male"},
	}, nil)
}

type testServer struct {
	router *router.Router
	store  *store.Store
}

func newServer(t *testing.T, loader session.Loader) *testServer {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := handler.NewDashboardHandler(session.NewManager(loader), st, handler.Defaults{
		CategoryColumn: "province",
		MetricColumns:  []string{cows},
		Reducer:        model.ReducerMean,
		Separators:     ",",
	})
	r := router.New()
	api.RegisterRoutes(r, h)
	return &testServer{router: r, store: st}
}

func goodLoader() *fakeLoader {
	return &fakeLoader{records: [][]string{
		{"province", cows},
		{"A", "1,000"},
		{"A", "500"},
		{"B", "200"},
		{"C", "50"},
	}}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func (s *testServer) createSession(t *testing.T, dataset model.DatasetKind) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/sessions", handler.CreateSessionRequest{Dataset: dataset})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)
	return sess.ID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// ------------------- Sessions -------------------

func TestSessionLifecycle(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows":4`)

	rec = s.do(t, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.CodeNotFound, decodeError(t, rec).Code)
}

func TestCreateSessionErrors(t *testing.T) {
	s := newServer(t, goodLoader())

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/sessions", handler.CreateSessionRequest{Dataset: "cars"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	down := newServer(t, &fakeLoader{err: errors.SourceUnavailable("reference", stderrors.New("connection refused"))})
	rec = down.do(t, http.MethodPost, "/api/v1/sessions", handler.CreateSessionRequest{Dataset: model.DatasetLivestock})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, errors.CodeSourceUnavailable, decodeError(t, rec).Code)
}

func TestGetOptions(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var opts handler.OptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"A", "B", "C"}, opts.Categories)
	assert.Equal(t, []string{cows}, opts.Metrics)
	assert.Equal(t, model.Reducers, opts.Reducers)
	assert.Equal(t, model.ReducerMean, opts.DefaultReducer)

	pid := s.createSession(t, model.DatasetPenguins)
	rec = s.do(t, http.MethodGet, "/api/v1/sessions/"+pid+"/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, "sex", opts.CategoryColumn)
	assert.Equal(t, []string{"Female", "Male"}, opts.Categories)
}

// ------------------- Dashboard -------------------

func TestGetDashboardLivestock(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard?categories=A&categories=B&reducer=sum", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Livestock)
	require.Len(t, resp.Livestock.Panels, 1)

	panel := resp.Livestock.Panels[0]
	require.Len(t, panel.Bar.Points, 2)
	assert.Equal(t, "A", panel.Bar.Points[0].Label)
	assert.InDelta(t, 1500.0, panel.Bar.Points[0].Value, 1e-9)
	assert.Equal(t, [][]string{{"A", "1500"}, {"B", "200"}}, panel.Table.Rows)
	assert.Len(t, panel.Map.Points, 2)

	run, err := s.store.GetRun(resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, run.Status)
	assert.Equal(t, id, run.SessionID)

	logs, err := s.store.GetRunLogs(resp.RunID)
	require.NoError(t, err)
	assert.NotEmpty(t, logs)
}

func TestGetDashboardPenguins(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetPenguins)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard?sex=Female", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handler.DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Penguins)
	assert.Nil(t, resp.Livestock)
	require.Len(t, resp.Penguins.MassBySex.Points, 1)
	assert.InDelta(t, 4150.0, resp.Penguins.MassBySex.Points[0].Value, 1e-9)
}

func TestGetDashboardErrors(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard?reducer=max", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard?top5=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard?metrics=goats", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/sessions/missing/dashboard", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDashboardMalformedMetricRecordsFailedRun(t *testing.T) {
	loader := &fakeLoader{records: [][]string{{"province", cows}, {"A", "12abc"}}}
	s := newServer(t, loader)
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, errors.CodeMalformedMetric, decodeError(t, rec).Code)

	runs, err := s.store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)

	rec = s.do(t, http.MethodGet, "/api/v1/runs/"+runs[0].ID+"/errors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runErrors []store.RunError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runErrors))
	require.Len(t, runErrors, 1)
	assert.Equal(t, errors.CodeMalformedMetric, runErrors[0].Code)
}

// ------------------- Artifacts -------------------

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func TestCharts(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	for _, path := range []string{"/charts/bar", "/charts/map"} {
		rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngSignature), path)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/charts/bar?metric=goats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	pid := s.createSession(t, model.DatasetPenguins)
	rec = s.do(t, http.MethodGet, "/api/v1/sessions/"+pid+"/charts/bar?metric=flipper_length_mm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngSignature))

	rec = s.do(t, http.MethodGet, "/api/v1/sessions/"+pid+"/charts/map", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWorkbook(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/table.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "livestock_")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())
}

func TestGetReport(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/report?reducer=sum", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, pipeline.DashboardTitle)
	assert.Contains(t, body, "/api/v1/sessions/"+id+"/charts/bar?")
	assert.Contains(t, body, "reducer=sum")
}

func TestGetReportEscapesSelection(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)

	q := url.Values{"categories": {"<script>alert(1)</script>"}}
	rec := s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/report?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

// ------------------- Runs -------------------

func TestRunEndpoints(t *testing.T) {
	s := newServer(t, goodLoader())
	id := s.createSession(t, model.DatasetLivestock)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/dashboard", nil).Code)

	rec := s.do(t, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/runs/"+runs[0].ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/runs/"+runs[0].ID+"/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []store.RunLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.NotEmpty(t, logs)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/runs/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/runs/missing/logs", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPost, "/api/v1/runs", nil).Code)
}
