package store

import (
	"fmt"
	"testing"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openStore(t)
	sel := model.Selection{Metrics: []string{"cows"}, Reducer: model.ReducerSum}

	require.NoError(t, s.SaveRun("run-1", "session-1", model.DatasetLivestock, sel))
	require.NoError(t, s.UpdateRunStatus("run-1", StatusRunning))
	require.NoError(t, s.FinishRun("run-1", StatusCompleted, map[string]int{"panels": 1}))

	run, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", run.SessionID)
	assert.Equal(t, "livestock", run.Dataset)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.JSONEq(t, `{"categories":null,"metrics":["cows"],"reducer":"sum","top5":false}`, string(run.Selection))
	assert.JSONEq(t, `{"panels":1}`, string(run.Metrics))
	assert.False(t, run.CreatedAt.IsZero())
}

func TestGetRunNotFound(t *testing.T) {
	s := openStore(t)

	_, err := s.GetRun("missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openStore(t)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.SaveRun(fmt.Sprintf("run-%d", i), "s", model.DatasetPenguins, []string{"Male"}))
	}

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-1", runs[2].ID)
}

func TestRunErrorsAndLogs(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.SaveRun("run-1", "s", model.DatasetLivestock, nil))

	require.NoError(t, s.SaveRunError("run-1", errors.MalformedMetric("cows", "abc")))
	require.NoError(t, s.SaveRunError("run-1", nil))

	logger := s.Logger("run-1")
	logger.RecordStage("filter", "info", "Filter stage completed", map[string]interface{}{"rows": 2})
	logger.RecordStage("aggregation", "error", "bad value", nil)

	runErrors, err := s.GetRunErrors("run-1")
	require.NoError(t, err)
	require.Len(t, runErrors, 1)
	assert.Equal(t, errors.CodeMalformedMetric, runErrors[0].Code)
	assert.Contains(t, runErrors[0].Message, "abc")

	logs, err := s.GetRunLogs("run-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "filter", logs[0].Stage)
	assert.Equal(t, float64(2), logs[0].Details["rows"])
	assert.Equal(t, "error", logs[1].Level)

	empty, err := s.GetRunLogs("other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClosedStoreReportsDatabaseError(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.SaveRun("run-1", "s", model.DatasetLivestock, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}
