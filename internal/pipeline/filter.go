package pipeline

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Filter keeps the rows whose column value is one of selected.
// An empty selection returns df unchanged; missing cells never match.
func Filter(df dataframe.DataFrame, column string, selected []string) (dataframe.DataFrame, error) {
	if err := requireColumns(df, column); err != nil {
		return df, err
	}
	if len(selected) == 0 {
		return df, nil
	}

	out := df.Filter(dataframe.F{
		Colname:    column,
		Comparator: series.In,
		Comparando: selected,
	})
	if out.Err != nil {
		return out, fmt.Errorf("failed to filter %q: %w", column, out.Err)
	}
	fmt.Printf("🔍 Filter %q: %d of %d rows kept\n", column, out.Nrow(), df.Nrow())
	return out, nil
}

// DropMissing removes rows with a missing cell in any of columns
func DropMissing(df dataframe.DataFrame, columns ...string) (dataframe.DataFrame, error) {
	if err := requireColumns(df, columns...); err != nil {
		return df, err
	}

	keep := make([]bool, df.Nrow())
	for i := range keep {
		keep[i] = true
	}
	for _, c := range columns {
		for i, missing := range df.Col(c).IsNaN() {
			if missing {
				keep[i] = false
			}
		}
	}

	var rows []int
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	if len(rows) == df.Nrow() {
		return df, nil
	}
	return subsetRows(df, rows)
}

// Options lists the sorted distinct non-missing values of a column
func Options(df dataframe.DataFrame, column string) ([]string, error) {
	if err := requireColumns(df, column); err != nil {
		return nil, err
	}
	col := df.Col(column)
	missing := col.IsNaN()
	seen := make(map[string]struct{})
	options := []string{}
	for i, v := range col.Records() {
		if missing[i] {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		options = append(options, v)
	}
	sort.Strings(options)
	return options, nil
}

// Head returns the first n rows of df
func Head(df dataframe.DataFrame, n int) (dataframe.DataFrame, error) {
	if n < 0 {
		n = 0
	}
	if n >= df.Nrow() {
		return df, nil
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return subsetRows(df, rows)
}

func subsetRows(df dataframe.DataFrame, rows []int) (dataframe.DataFrame, error) {
	if rows == nil {
		rows = []int{}
	}
	out := df.Subset(rows)
	if out.Err != nil {
		return out, fmt.Errorf("failed to subset rows: %w", out.Err)
	}
	return out, nil
}
