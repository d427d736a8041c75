package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/internal/pipeline"
	"go-stats-dashboard/internal/render"
	"go-stats-dashboard/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newLivestockCmd(a *app) *cobra.Command {
	var categories, metrics []string
	var reducer string
	var top5 bool

	cmd := &cobra.Command{
		Use:   "livestock",
		Short: "Build the Thai livestock dashboard",
		Long: `Filter the livestock table by province, reduce each metric per province,
join the province coordinates and write JSON, CSV, PNG, XLSX and HTML artifacts.

Example: dashboard livestock --category กรุงเทพมหานคร --reducer sum --top5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := model.Selection{Categories: categories, Metrics: metrics, Top5: top5}
			if reducer != "" {
				r, err := model.ParseReducer(reducer)
				if err != nil {
					return err
				}
				sel.Reducer = r
			}
			if cmd.Flags().Changed("metric") && len(metrics) == 0 {
				sel.Metrics = []string{}
			}
			sel = sel.WithDefaults(a.cfg.Livestock.MetricColumns, a.cfg.Livestock.DefaultReducer)

			tables, err := a.loader.LoadLivestock(cmd.Context())
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			var result *model.DashboardResult
			err = a.record(runID, model.DatasetLivestock, sel, func(tracker *pipeline.Tracker) error {
				var err error
				result, err = pipeline.Run(tables, sel, pipeline.DashboardOptions{
					CategoryColumn: a.cfg.Livestock.CategoryColumn,
					Separators:     a.cfg.Livestock.Separators,
					Recorder:       tracker,
				})
				return err
			})
			if err != nil {
				return err
			}
			return a.writeLivestock(runID, result)
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "Province to include (repeatable, empty means all)")
	cmd.Flags().StringArrayVar(&metrics, "metric", nil, "Metric column (repeatable, defaults from METRIC_COLUMNS)")
	cmd.Flags().StringVar(&reducer, "reducer", "", "Reducer: sum|mean|median (defaults from DEFAULT_REDUCER)")
	cmd.Flags().BoolVar(&top5, "top5", false, "Keep only the five largest provinces")
	return cmd
}

func newPenguinsCmd(a *app) *cobra.Command {
	var sexes []string

	cmd := &cobra.Command{
		Use:   "penguins",
		Short: "Build the penguin dashboard",
		Long: `Filter the penguin table by sex and chart mean body mass and flipper length per sex.

Example: dashboard penguins --sex Female`,
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := a.loader.LoadPenguins(cmd.Context())
			if err != nil {
				return err
			}

			runID := uuid.New().String()
			var result *model.PenguinResult
			err = a.record(runID, model.DatasetPenguins, map[string][]string{"sex": sexes}, func(tracker *pipeline.Tracker) error {
				var err error
				if result, err = pipeline.RunPenguins(df, sexes); err != nil {
					tracker.RecordStage("penguins", "error", err.Error(), nil)
					return err
				}
				tracker.RecordStage("penguins", "info", "Penguin run completed", map[string]interface{}{
					"rows": len(result.Raw.Rows),
				})
				return nil
			})
			if err != nil {
				return err
			}
			return a.writePenguins(runID, result)
		},
	}

	cmd.Flags().StringSliceVar(&sexes, "sex", nil, "Sex to include (repeatable, empty means all)")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var rows int
	var encoding string
	var delimiter string

	cmd := &cobra.Command{
		Use:   "preview [file-or-url]",
		Short: "Print the first rows of a table, or describe the demo table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				report, err := pipeline.DescribeDemo(pipeline.DemoTable())
				if err != nil {
					return err
				}
				printTable(report.Head)
				for _, name := range report.Head.Columns {
					fmt.Printf("%s: %v\n", name, report.Columns[name])
				}
				fmt.Printf("📊 Calories mean: %.2f\n", report.CaloriesMean)
				return nil
			}

			src := pipeline.Source{Location: args[0], Encoding: encoding, Delimiter: ','}
			if delimiter != "" {
				src.Delimiter = []rune(delimiter)[0]
			}
			df, err := pipeline.LoadTable(cmd.Context(), a.loader.Client, src, nil)
			if err != nil {
				return err
			}
			table, err := pipeline.Preview(df, rows)
			if err != nil {
				return err
			}
			printTable(table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", pipeline.DefaultPreviewRows, "Number of rows to print")
	cmd.Flags().StringVar(&encoding, "encoding", "utf-8", "Text encoding of the table")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "Field delimiter")
	return cmd
}

// ------------------- Run recording -------------------

// record wraps a dashboard run with its ledger entries
func (a *app) record(runID string, dataset model.DatasetKind, selection interface{}, run func(*pipeline.Tracker) error) error {
	if err := a.store.SaveRun(runID, "cli", dataset, selection); err != nil {
		return err
	}
	if err := a.store.UpdateRunStatus(runID, store.StatusRunning); err != nil {
		return err
	}
	tracker := pipeline.NewTracker(runID, a.store.Logger(runID))

	if err := run(tracker); err != nil {
		if e := a.store.SaveRunError(runID, err); e != nil {
			return e
		}
		if e := a.store.FinishRun(runID, store.StatusFailed, tracker.Fail()); e != nil {
			return e
		}
		return err
	}
	metrics := tracker.Complete()
	fmt.Printf("✅ Run %s completed in %dms\n", runID, metrics.DurationMs)
	return a.store.FinishRun(runID, store.StatusCompleted, metrics)
}

// ------------------- Artifacts -------------------

func (a *app) writeLivestock(runID string, result *model.DashboardResult) error {
	var buf bytes.Buffer
	if err := pipeline.ExportJSON(&buf, runID, "dashboard", result); err != nil {
		return err
	}
	if err := a.write(runID, "dashboard.json", buf.Bytes()); err != nil {
		return err
	}

	names := make(map[string]int, len(result.Panels))
	for i, panel := range result.Panels {
		names[panel.Metric] = i + 1

		buf.Reset()
		if _, err := pipeline.ExportTableCSV(&buf, panel.Table); err != nil {
			return err
		}
		if err := a.write(runID, fmt.Sprintf("table_%d.csv", i+1), buf.Bytes()); err != nil {
			return err
		}

		bar, err := render.BarChartPNG(panel.Bar, render.DefaultWidth, render.DefaultHeight)
		if err != nil {
			return err
		}
		if err := a.write(runID, fmt.Sprintf("bar_%d.png", i+1), bar); err != nil {
			return err
		}

		mapPNG, err := render.MapPNG(panel.Map, panel.Metric, render.DefaultWidth, render.DefaultHeight)
		if err != nil {
			return err
		}
		if err := a.write(runID, fmt.Sprintf("map_%d.png", i+1), mapPNG); err != nil {
			return err
		}
	}

	workbook, err := render.WorkbookXLSX(render.DashboardSheets(result))
	if err != nil {
		return err
	}
	if err := a.write(runID, "dashboard.xlsx", workbook); err != nil {
		return err
	}

	page := render.ReportHTML(result, func(kind, metric string) string {
		if i, ok := names[metric]; ok {
			return fmt.Sprintf("%s_%d.png", kind, i)
		}
		return ""
	})
	if err := a.write(runID, "report.html", page); err != nil {
		return err
	}
	return a.writeManifest(runID)
}

func (a *app) writePenguins(runID string, result *model.PenguinResult) error {
	var buf bytes.Buffer
	if err := pipeline.ExportJSON(&buf, runID, "penguins", result); err != nil {
		return err
	}
	if err := a.write(runID, "penguins.json", buf.Bytes()); err != nil {
		return err
	}

	buf.Reset()
	if _, err := pipeline.ExportTableCSV(&buf, result.Raw); err != nil {
		return err
	}
	if err := a.write(runID, "raw.csv", buf.Bytes()); err != nil {
		return err
	}

	charts := map[string]string{
		pipeline.MassColumn:    "bar_body_mass.png",
		pipeline.FlipperColumn: "bar_flipper.png",
	}
	for metric, file := range charts {
		png, err := render.BarChartPNG(*result.Chart(metric), render.DefaultWidth, render.DefaultHeight)
		if err != nil {
			return err
		}
		if err := a.write(runID, file, png); err != nil {
			return err
		}
	}

	workbook, err := render.WorkbookXLSX(render.PenguinSheets(result))
	if err != nil {
		return err
	}
	if err := a.write(runID, "penguins.xlsx", workbook); err != nil {
		return err
	}

	page := render.PenguinReportHTML(result, func(kind, metric string) string {
		return charts[metric]
	})
	if err := a.write(runID, "report.html", page); err != nil {
		return err
	}
	return a.writeManifest(runID)
}

func (a *app) write(runID, name string, data []byte) error {
	result := pipeline.ExportResult{
		Type:       a.output.GetFileType(name),
		ExportedAt: time.Now().UTC(),
	}
	path, err := a.output.WriteFile(runID, name, data)
	if err != nil {
		result.Error = err.Error()
		a.exports = append(a.exports, result)
		return err
	}
	result.Path = path
	result.Success = true
	if result.Type == "csv" {
		result.RecordCount = bytes.Count(data, []byte("\n")) - 1
	}
	a.exports = append(a.exports, result)
	fmt.Printf("📁 %s (%s) -> %s\n", name, result.Type, filepath.Dir(path))
	return nil
}

// writeManifest lists every artifact written for the run
func (a *app) writeManifest(runID string) error {
	var buf bytes.Buffer
	if err := pipeline.ExportJSON(&buf, runID, "manifest", a.exports); err != nil {
		return err
	}
	if _, err := a.output.WriteFile(runID, "manifest.json", buf.Bytes()); err != nil {
		return err
	}

	names, err := a.output.Artifacts(runID)
	if err != nil {
		return err
	}
	fmt.Printf("💾 %d artifacts in %s: %s\n", len(names), runID, strings.Join(names, ", "))
	return nil
}

func printTable(table model.Table) {
	for i, col := range table.Columns {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(col)
	}
	fmt.Println()
	for _, row := range table.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Print("\t")
			}
			fmt.Print(v)
		}
		fmt.Println()
	}
}
