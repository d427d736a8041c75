package pipeline

import (
	"fmt"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"

	"github.com/go-gota/gota/dataframe"
)

// Penguin table columns
const (
	SexColumn     = "sex"
	SpeciesColumn = "species"
	MassColumn    = "body_mass_g"
	FlipperColumn = "flipper_length_mm"
)

// PenguinColumns must all be present and non-missing for a row to count
var PenguinColumns = []string{SexColumn, SpeciesColumn, MassColumn, FlipperColumn}

const PenguinTitle = "Penguins Dashboard"

// RunPenguins filters by sex, drops incomplete rows and averages body mass
// and flipper length per sex.
func RunPenguins(df dataframe.DataFrame, sexes []string) (*model.PenguinResult, error) {
	fmt.Printf("🐧 Starting penguin run: %d sexes selected\n", len(sexes))

	filtered, err := Filter(df, SexColumn, sexes)
	if err != nil {
		return nil, err
	}
	clean, err := DropMissing(filtered, PenguinColumns...)
	if err != nil {
		return nil, err
	}

	mass, err := meanBySex(clean, MassColumn, "Average Body Mass by Sex")
	if err != nil {
		return nil, err
	}
	flipper, err := meanBySex(clean, FlipperColumn, "Average Flipper Length by Sex")
	if err != nil {
		return nil, err
	}

	selection := sexes
	if selection == nil {
		selection = []string{}
	}
	return &model.PenguinResult{
		Title:        PenguinTitle,
		Selection:    selection,
		MassBySex:    mass,
		FlipperBySex: flipper,
		Raw:          TableOf(clean),
	}, nil
}

func meanBySex(df dataframe.DataFrame, metric, title string) (model.BarChart, error) {
	groups, err := Aggregate(df, model.AggregationSpec{
		CategoryColumn: SexColumn,
		MetricColumn:   metric,
		Reducer:        model.ReducerMean,
		Format:         model.DecimalFormat,
	})
	if err != nil {
		return model.BarChart{}, errors.Wrapf(err, "penguin %s", metric)
	}

	chart := model.BarChart{
		Title:  title,
		XLabel: SexColumn,
		YLabel: metric,
		Points: make([]model.ChartPoint, len(groups)),
	}
	for i, g := range groups {
		chart.Points[i] = model.ChartPoint{Label: g.Category, Value: g.Value}
	}
	return chart, nil
}

// TableOf converts a DataFrame to a plain table, missing cells rendered empty
func TableOf(df dataframe.DataFrame) model.Table {
	table := model.Table{Columns: df.Names(), Rows: make([][]string, df.Nrow())}
	for i := range table.Rows {
		table.Rows[i] = make([]string, df.Ncol())
	}
	for j, name := range table.Columns {
		col := df.Col(name)
		missing := col.IsNaN()
		for i, v := range col.Records() {
			if !missing[i] {
				table.Rows[i][j] = v
			}
		}
	}
	return table
}
