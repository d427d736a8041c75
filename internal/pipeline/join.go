package pipeline

import (
	"fmt"
	"math"

	"go-stats-dashboard/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const joinValueColumn = "value"

// JoinReference inner-joins the aggregated groups with the reference table on
// exact category text. Groups without a reference row are returned in
// unmatched; reference rows with missing coordinates produce no point.
func JoinReference(groups []model.GroupValue, ref dataframe.DataFrame) ([]model.MapPoint, []string, error) {
	if len(groups) == 0 {
		return []model.MapPoint{}, nil, nil
	}
	if err := requireColumns(ref, ReferenceNameColumn, ReferenceLatColumn, ReferenceLonColumn); err != nil {
		return nil, nil, err
	}

	names := make([]string, len(groups))
	values := make([]float64, len(groups))
	for i, g := range groups {
		names[i] = g.Category
		values[i] = g.Value
	}
	left := dataframe.New(
		series.New(names, series.String, ReferenceNameColumn),
		series.New(values, series.Float, joinValueColumn),
	)
	right := ref.Select([]string{ReferenceNameColumn, ReferenceLatColumn, ReferenceLonColumn})

	joined := left.InnerJoin(right, ReferenceNameColumn)
	if joined.Err != nil {
		return nil, nil, fmt.Errorf("failed to join reference table: %w", joined.Err)
	}

	joinedNames := joined.Col(ReferenceNameColumn).Records()
	lats := joined.Col(ReferenceLatColumn).Float()
	lons := joined.Col(ReferenceLonColumn).Float()
	sizes := joined.Col(joinValueColumn).Float()

	matched := make(map[string]bool, len(joinedNames))
	points := make([]model.MapPoint, 0, len(joinedNames))
	for i, name := range joinedNames {
		matched[name] = true
		if math.IsNaN(lats[i]) || math.IsNaN(lons[i]) {
			continue
		}
		points = append(points, model.MapPoint{
			Category:  name,
			Latitude:  lats[i],
			Longitude: lons[i],
			Size:      sizes[i],
		})
	}

	var unmatched []string
	for _, g := range groups {
		if !matched[g.Category] {
			unmatched = append(unmatched, g.Category)
		}
	}

	fmt.Printf("🗺️ Joined %d groups with reference: %d points, %d unmatched\n", len(groups), len(points), len(unmatched))
	return points, unmatched, nil
}
