package pipeline

import (
	"fmt"

	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/pkg/utils"

	"github.com/montanaflynn/stats"
)

// Dashboard labels
const (
	DashboardTitle   = "ภาพรวมข้อมูลปศุสัตว์ไทย ปี 2564"
	DashboardCaption = "แหล่งข้อมูล: กรมปศุสัตว์"
	CategoryLabel    = "จังหวัด"
	SummaryStatistic = "mean"
)

// ValueLabel is the axis and table label of a reduced value, e.g. "sum (ตัว)"
func ValueLabel(r model.Reducer) string {
	return fmt.Sprintf("%s (ตัว)", r)
}

// BuildSummary returns the headline scalar: the mean of the aggregated values,
// whatever reducer produced them.
func BuildSummary(reducer model.Reducer, groups []model.GroupValue) model.Summary {
	summary := model.Summary{
		Label:     fmt.Sprintf("ค่า %s", reducer),
		Statistic: SummaryStatistic,
		Formatted: "-",
	}
	values := make([]float64, len(groups))
	for i, g := range groups {
		values[i] = g.Value
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return summary
	}
	summary.Value = &mean
	summary.Formatted = utils.FormatThousands(mean)
	return summary
}

// BuildPanel maps one metric's aggregated and joined result onto the
// bar chart, map, table and summary surfaces.
func BuildPanel(metric, categoryColumn string, reducer model.Reducer, groups []model.GroupValue, points []model.MapPoint, unmatched []string) model.MetricPanel {
	bar := model.BarChart{
		Title:  metric,
		XLabel: CategoryLabel,
		YLabel: ValueLabel(reducer),
		Points: make([]model.ChartPoint, len(groups)),
	}
	table := model.Table{
		Columns: []string{categoryColumn, joinValueColumn},
		Rows:    make([][]string, len(groups)),
	}
	for i, g := range groups {
		bar.Points[i] = model.ChartPoint{Label: g.Category, Value: g.Value}
		table.Rows[i] = []string{g.Category, utils.FormatValue(g.Value)}
	}

	return model.MetricPanel{
		Metric:  metric,
		Reducer: reducer,
		Groups:  groups,
		Summary: BuildSummary(reducer, groups),
		Bar:     bar,
		Map:     model.MapLayer{Points: points, Unmatched: unmatched},
		Table:   table,
	}
}
