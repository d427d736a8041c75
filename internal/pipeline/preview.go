package pipeline

import (
	"go-stats-dashboard/internal/model"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultPreviewRows is the head size of the table preview
const DefaultPreviewRows = 10

// DemoReport is what the preview prints for the in-memory demo table
type DemoReport struct {
	Head         model.Table         `json:"head"`
	Columns      map[string][]string `json:"columns"`
	CaloriesMean float64             `json:"caloriesMean"`
}

// Preview returns the header and first n rows of df
func Preview(df dataframe.DataFrame, n int) (model.Table, error) {
	head, err := Head(df, n)
	if err != nil {
		return model.Table{}, err
	}
	return TableOf(head), nil
}

// DemoTable builds the small Calories/Duration workout table
func DemoTable() dataframe.DataFrame {
	return dataframe.New(
		series.New([]int{420, 380, 390}, series.Int, "Calories"),
		series.New([]int{50, 40, 45}, series.Int, "Duration"),
	)
}

// DescribeDemo reports the head, each column and the Calories mean of the demo table
func DescribeDemo(df dataframe.DataFrame) (*DemoReport, error) {
	if err := requireColumns(df, "Calories", "Duration"); err != nil {
		return nil, err
	}
	head, err := Preview(df, 5)
	if err != nil {
		return nil, err
	}
	report := &DemoReport{
		Head:         head,
		Columns:      make(map[string][]string, df.Ncol()),
		CaloriesMean: df.Col("Calories").Mean(),
	}
	for _, name := range df.Names() {
		report.Columns[name] = df.Col(name).Records()
	}
	return report, nil
}
