package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go-stats-dashboard/internal/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Reference table columns
const (
	ReferenceNameColumn = "province_name"
	ReferenceLatColumn  = "province_lat"
	ReferenceLonColumn  = "province_lon"
)

// MissingValues are the cell texts loaded as missing
var MissingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "<nil>"}

// Source locates a delimited table: a file path, or a URL when it starts with "http"
type Source struct {
	Location  string
	Encoding  string // WHATWG label, e.g. "tis-620"; empty means UTF-8
	Delimiter rune   // ',' when zero
}

// Tables are the raw inputs of the livestock dashboard
type Tables struct {
	Records   dataframe.DataFrame
	Reference dataframe.DataFrame
}

// ------------------- Sources -------------------

// OpenSource opens a file or issues a GET for a URL
func OpenSource(ctx context.Context, client *http.Client, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "http") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, errors.SourceUnavailable(location, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, errors.SourceUnavailable(location, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, errors.SourceUnavailable(location, fmt.Errorf("unexpected status %s", resp.Status))
		}
		return resp.Body, nil
	}

	file, err := os.Open(location)
	if err != nil {
		return nil, errors.SourceUnavailable(location, err)
	}
	return file, nil
}

// ------------------- CSV Ingestion -------------------

// ReadRecords decodes r from the given encoding and reads every CSV row.
// Rows shorter than the header are padded with missing cells.
func ReadRecords(r io.Reader, encoding string, delimiter rune) ([][]string, error) {
	if encoding != "" && !strings.EqualFold(encoding, "utf-8") && !strings.EqualFold(encoding, "utf8") {
		enc, err := htmlindex.Get(encoding)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("unknown encoding %q", encoding))
		}
		r = transform.NewReader(r, enc.NewDecoder())
	}

	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	if delimiter != 0 {
		csvReader.Comma = delimiter
	}

	headers, err := csvReader.Read()
	if err == io.EOF {
		return nil, errors.InvalidInput("table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		// Clean header names: trim whitespace, BOM and quotes
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ReplaceAll(h, `"`, "")
		headers[i] = strings.TrimSpace(h)
	}

	records := [][]string{headers}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}
		if len(record) > len(headers) {
			line, _ := csvReader.FieldPos(0)
			return nil, errors.InvalidInput(fmt.Sprintf("line %d has %d fields, header has %d", line, len(record), len(headers)))
		}
		for len(record) < len(headers) {
			record = append(record, "")
		}
		records = append(records, record)
	}
	return records, nil
}

// FrameFromRecords builds a string-typed DataFrame from header-first records.
// types overrides the type of individual columns.
func FrameFromRecords(records [][]string, types map[string]series.Type) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, errors.InvalidInput("table is empty")
	}

	if len(records) == 1 {
		cols := make([]series.Series, len(records[0]))
		for i, name := range records[0] {
			t := series.String
			if override, ok := types[name]; ok {
				t = override
			}
			cols[i] = series.New([]string{}, t, name)
		}
		df := dataframe.New(cols...)
		return df, df.Err
	}

	opts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(MissingValues),
	}
	if len(types) > 0 {
		opts = append(opts, dataframe.WithTypes(types))
	}
	df := dataframe.LoadRecords(records, opts...)
	if df.Err != nil {
		return df, fmt.Errorf("failed to build table: %w", df.Err)
	}
	return df, nil
}

// LoadTable opens, decodes and parses a source into a DataFrame
func LoadTable(ctx context.Context, client *http.Client, src Source, types map[string]series.Type) (dataframe.DataFrame, error) {
	fmt.Printf("📥 Loading table: %s\n", src.Location)

	rc, err := OpenSource(ctx, client, src.Location)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()

	records, err := ReadRecords(rc, src.Encoding, src.Delimiter)
	if err != nil {
		return dataframe.DataFrame{}, errors.Wrapf(err, "failed to read %s", src.Location)
	}

	df, err := FrameFromRecords(records, types)
	if err != nil {
		return df, errors.Wrapf(err, "failed to load %s", src.Location)
	}

	fmt.Printf("📄 Loaded %d rows x %d columns from %s\n", df.Nrow(), df.Ncol(), src.Location)
	return df, nil
}

// LoadReference loads the province coordinates table
func LoadReference(ctx context.Context, client *http.Client, location string) (dataframe.DataFrame, error) {
	df, err := LoadTable(ctx, client, Source{Location: location}, map[string]series.Type{
		ReferenceLatColumn: series.Float,
		ReferenceLonColumn: series.Float,
	})
	if err != nil {
		return df, err
	}
	if err := requireColumns(df, ReferenceNameColumn, ReferenceLatColumn, ReferenceLonColumn); err != nil {
		return df, errors.Wrap(err, "reference table")
	}
	return df, nil
}

// LoadLivestock loads the livestock file and the reference table concurrently.
// Either failure cancels the other and fails the load.
func LoadLivestock(ctx context.Context, client *http.Client, file Source, referenceURL string) (*Tables, error) {
	var tables Tables
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		df, err := LoadTable(ctx, client, file, nil)
		if err != nil {
			return err
		}
		tables.Records = df
		return nil
	})
	g.Go(func() error {
		df, err := LoadReference(ctx, client, referenceURL)
		if err != nil {
			return err
		}
		tables.Reference = df
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// LoadPenguins loads the penguin morphology table
func LoadPenguins(ctx context.Context, client *http.Client, location string) (dataframe.DataFrame, error) {
	df, err := LoadTable(ctx, client, Source{Location: location}, nil)
	if err != nil {
		return df, err
	}
	if err := requireColumns(df, PenguinColumns...); err != nil {
		return df, errors.Wrap(err, "penguin table")
	}
	return df, nil
}

// SourceLoader loads session tables from configured locations
type SourceLoader struct {
	Client       *http.Client
	Livestock    Source
	ReferenceURL string
	PenguinsURL  string
}

// LoadLivestock loads the livestock tables
func (l *SourceLoader) LoadLivestock(ctx context.Context) (*Tables, error) {
	return LoadLivestock(ctx, l.Client, l.Livestock, l.ReferenceURL)
}

// LoadPenguins loads the penguin table
func (l *SourceLoader) LoadPenguins(ctx context.Context) (dataframe.DataFrame, error) {
	return LoadPenguins(ctx, l.Client, l.PenguinsURL)
}

func hasColumn(df dataframe.DataFrame, column string) bool {
	for _, name := range df.Names() {
		if name == column {
			return true
		}
	}
	return false
}

func requireColumns(df dataframe.DataFrame, columns ...string) error {
	for _, c := range columns {
		if !hasColumn(df, c) {
			return errors.InvalidInput(fmt.Sprintf("column %q not found", c))
		}
	}
	return nil
}
