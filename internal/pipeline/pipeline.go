package pipeline

import (
	"fmt"
	"time"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"

	"github.com/go-gota/gota/dataframe"
)

// StageRecorder receives per-stage progress of a run
type StageRecorder interface {
	RecordStage(stage, level, message string, details map[string]interface{})
}

// DashboardOptions carries the table layout a run needs besides the selection
type DashboardOptions struct {
	CategoryColumn string
	Separators     string
	Recorder       StageRecorder // optional
}

func (o DashboardOptions) record(stage, level, message string, details map[string]interface{}) {
	if o.Recorder != nil {
		o.Recorder.RecordStage(stage, level, message, details)
	}
}

// ValidateSelection checks a selection against the loaded table
func ValidateSelection(df dataframe.DataFrame, categoryColumn string, sel model.Selection) error {
	if !sel.Reducer.Valid() {
		return errors.InvalidInput(fmt.Sprintf("unknown reducer %q (want sum, mean or median)", sel.Reducer))
	}
	if err := requireColumns(df, categoryColumn); err != nil {
		return err
	}
	for _, m := range sel.Metrics {
		if m == categoryColumn {
			return errors.InvalidInput(fmt.Sprintf("metric %q is the category column", m))
		}
		if !hasColumn(df, m) {
			return errors.InvalidInput(fmt.Sprintf("metric column %q not found", m))
		}
	}
	return nil
}

// ------------------- Dashboard Runner -------------------

// Run computes the livestock dashboard for one selection: filter once, then
// aggregate, join and present each selected metric in order.
func Run(tables *Tables, sel model.Selection, opts DashboardOptions) (*model.DashboardResult, error) {
	start := time.Now()
	fmt.Printf("🚀 Starting dashboard run: %d metrics, reducer=%s, top5=%v\n", len(sel.Metrics), sel.Reducer, sel.Top5)

	if tables == nil {
		return nil, errors.InvalidInput("tables are not loaded")
	}
	if err := ValidateSelection(tables.Records, opts.CategoryColumn, sel); err != nil {
		return nil, err
	}

	// --- FILTER STAGE ---
	filtered, err := Filter(tables.Records, opts.CategoryColumn, sel.Categories)
	if err != nil {
		return nil, errors.Wrap(err, "filter stage failed")
	}
	opts.record("filter", "info", "Filter stage completed", map[string]interface{}{
		"selected": len(sel.Categories),
		"rows":     filtered.Nrow(),
	})

	topN := 0
	if sel.Top5 {
		topN = model.TopLimit
	}

	result := &model.DashboardResult{
		Title:     DashboardTitle,
		Caption:   DashboardCaption,
		Selection: sel,
		Panels:    make([]model.MetricPanel, 0, len(sel.Metrics)),
	}

	for _, metric := range sel.Metrics {
		// --- AGGREGATION STAGE ---
		groups, err := Aggregate(filtered, model.AggregationSpec{
			CategoryColumn: opts.CategoryColumn,
			MetricColumn:   metric,
			Reducer:        sel.Reducer,
			TopN:           topN,
			Format:         model.IntegerFormat,
			Separators:     opts.Separators,
		})
		if err != nil {
			opts.record("aggregation", "error", err.Error(), map[string]interface{}{"metric": metric})
			return nil, errors.Wrapf(err, "aggregation of %q failed", metric)
		}
		opts.record("aggregation", "info", "Aggregation stage completed", map[string]interface{}{
			"metric": metric,
			"groups": len(groups),
		})

		// --- JOIN STAGE ---
		points, unmatched, err := JoinReference(groups, tables.Reference)
		if err != nil {
			opts.record("join", "error", err.Error(), map[string]interface{}{"metric": metric})
			return nil, errors.Wrapf(err, "join of %q failed", metric)
		}
		opts.record("join", "info", "Join stage completed", map[string]interface{}{
			"metric":    metric,
			"points":    len(points),
			"unmatched": len(unmatched),
		})

		// --- PRESENT STAGE ---
		result.Panels = append(result.Panels, BuildPanel(metric, opts.CategoryColumn, sel.Reducer, groups, points, unmatched))
	}

	fmt.Printf("🏁 Dashboard run completed in %v\n", time.Since(start))
	return result, nil
}
