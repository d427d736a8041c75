package model

// DashboardResult is the render-ready payload of a livestock dashboard run
type DashboardResult struct {
	Title     string        `json:"title"`
	Caption   string        `json:"caption"`
	Selection Selection     `json:"selection"`
	Panels    []MetricPanel `json:"panels"`
}

// Panel returns the panel for a metric column, or nil
func (r *DashboardResult) Panel(metric string) *MetricPanel {
	for i := range r.Panels {
		if r.Panels[i].Metric == metric {
			return &r.Panels[i]
		}
	}
	return nil
}

// MetricPanel holds every presentation surface for one metric column
type MetricPanel struct {
	Metric  string       `json:"metric"`
	Reducer Reducer      `json:"reducer"`
	Groups  []GroupValue `json:"groups"`
	Summary Summary      `json:"summary"`
	Bar     BarChart     `json:"bar"`
	Map     MapLayer     `json:"map"`
	Table   Table        `json:"table"`
}

// Summary is the headline scalar shown above the charts.
// Statistic is always "mean": the value is the mean of the aggregated
// values whatever reducer produced them.
type Summary struct {
	Label     string   `json:"label"`
	Statistic string   `json:"statistic"`
	Value     *float64 `json:"value"`
	Formatted string   `json:"formatted"`
}

// BarChart is a categorical bar chart series
type BarChart struct {
	Title  string       `json:"title"`
	XLabel string       `json:"xLabel"`
	YLabel string       `json:"yLabel"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint is a single bar
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MapLayer is the geographic point view of an aggregated result.
// Unmatched lists categories that had no reference coordinates.
type MapLayer struct {
	Points    []MapPoint `json:"points"`
	Unmatched []string   `json:"unmatched,omitempty"`
}

// MapPoint is one sized point on the map
type MapPoint struct {
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Size      float64 `json:"size"`
}

// Table is a plain tabular listing
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// PenguinResult is the render-ready payload of the penguin dashboard
type PenguinResult struct {
	Title        string   `json:"title"`
	Selection    []string `json:"selection"`
	MassBySex    BarChart `json:"massBySex"`
	FlipperBySex BarChart `json:"flipperBySex"`
	Raw          Table    `json:"raw"`
}

// Chart returns the penguin chart for a metric column, or nil
func (r *PenguinResult) Chart(metric string) *BarChart {
	switch metric {
	case "body_mass_g":
		return &r.MassBySex
	case "flipper_length_mm":
		return &r.FlipperBySex
	}
	return nil
}
