package pipeline

import (
	"fmt"
	"sort"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/montanaflynn/stats"
)

// groupBucket collects the values of one category in input order
type groupBucket struct {
	category string
	values   []float64
}

// Aggregate groups df by the category column and reduces the metric column.
//
// Rows missing either column are dropped first. Any remaining metric cell that
// does not parse fails the whole aggregation. Without TopN the groups come back
// in ascending category order; with TopN they are sorted by value descending,
// equal values keeping the order in which their category first appeared.
func Aggregate(df dataframe.DataFrame, spec model.AggregationSpec) ([]model.GroupValue, error) {
	if !spec.Reducer.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown reducer %q", spec.Reducer))
	}
	clean, err := DropMissing(df, spec.CategoryColumn, spec.MetricColumn)
	if err != nil {
		return nil, err
	}

	categories := clean.Col(spec.CategoryColumn).Records()
	raw := clean.Col(spec.MetricColumn).Records()

	var buckets []*groupBucket
	index := make(map[string]*groupBucket)
	for i, category := range categories {
		v, err := NormalizeMetric(raw[i], spec.Separators, spec.Format)
		if err != nil {
			return nil, errors.MalformedMetric(spec.MetricColumn, raw[i])
		}
		b, ok := index[category]
		if !ok {
			b = &groupBucket{category: category}
			index[category] = b
			buckets = append(buckets, b)
		}
		b.values = append(b.values, v)
	}

	groups := make([]model.GroupValue, 0, len(buckets))
	for _, b := range buckets {
		v, err := reduce(spec.Reducer, b.values)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce %q: %w", b.category, err)
		}
		groups = append(groups, model.GroupValue{Category: b.category, Value: v, Count: len(b.values)})
	}

	if spec.TopN > 0 {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
		if len(groups) > spec.TopN {
			groups = groups[:spec.TopN]
		}
	} else {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	}

	fmt.Printf("📊 Aggregated %q by %q (%s): %d rows into %d groups\n",
		spec.MetricColumn, spec.CategoryColumn, spec.Reducer, len(categories), len(groups))
	return groups, nil
}

func reduce(r model.Reducer, values []float64) (float64, error) {
	switch r {
	case model.ReducerSum:
		return stats.Sum(values)
	case model.ReducerMean:
		return stats.Mean(values)
	case model.ReducerMedian:
		return stats.Median(values)
	}
	return 0, fmt.Errorf("unknown reducer %q", r)
}
