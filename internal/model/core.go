package model

import (
	"fmt"
	"strings"
)

// Reducer names the statistic that collapses a group of metric values to one
type Reducer string

const (
	ReducerSum    Reducer = "sum"
	ReducerMean   Reducer = "mean"
	ReducerMedian Reducer = "median"
)

// Reducers lists the reducers in the order the dashboard offers them
var Reducers = []Reducer{ReducerSum, ReducerMean, ReducerMedian}

// Valid reports whether r is one of the supported reducers
func (r Reducer) Valid() bool {
	switch r {
	case ReducerSum, ReducerMean, ReducerMedian:
		return true
	}
	return false
}

// ParseReducer parses a reducer name, case-insensitively
func ParseReducer(s string) (Reducer, error) {
	r := Reducer(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown reducer %q (want sum, mean or median)", s)
	}
	return r, nil
}

// DatasetKind identifies which dashboard a session serves
type DatasetKind string

const (
	DatasetLivestock DatasetKind = "livestock"
	DatasetPenguins  DatasetKind = "penguins"
)

// Valid reports whether k is a known dataset
func (k DatasetKind) Valid() bool {
	return k == DatasetLivestock || k == DatasetPenguins
}

// TopLimit is the number of groups kept when the top-5 toggle is on
const TopLimit = 5

// Selection holds the control values of one dashboard run.
// An empty Categories slice means "no filter".
type Selection struct {
	Categories []string `json:"categories"`
	Metrics    []string `json:"metrics"`
	Reducer    Reducer  `json:"reducer"`
	Top5       bool     `json:"top5"`
}

// WithDefaults fills the reducer and metric list when the caller left them unset
func (s Selection) WithDefaults(metrics []string, reducer Reducer) Selection {
	if s.Reducer == "" {
		s.Reducer = reducer
	}
	if s.Metrics == nil {
		s.Metrics = append([]string(nil), metrics...)
	}
	return s
}

// NumberFormat controls how metric text is parsed after separator removal
type NumberFormat int

const (
	// IntegerFormat parses base-10 integers, as the livestock counts require
	IntegerFormat NumberFormat = iota
	// DecimalFormat parses floating point numbers
	DecimalFormat
)

// AggregationSpec describes one group-by/reduce pass over a table
type AggregationSpec struct {
	CategoryColumn string
	MetricColumn   string
	Reducer        Reducer
	TopN           int    // 0 = keep all groups
	Format         NumberFormat
	Separators     string // characters stripped before parsing, "," when empty
}

// GroupValue is one row of an aggregated result
type GroupValue struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Count    int     `json:"count"`
}
