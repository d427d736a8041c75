package pipeline

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go-stats-dashboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const referenceCSV = "province_id,province_name,province_lat,province_lon\n" +
	"1,กรุงเทพมหานคร,13.75,100.50\n" +
	"2,เชียงใหม่,18.79,98.98\n" +
	"3,ภูเก็ต,not-a-number,98.39\n"

func tis620(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.Windows874.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func referenceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(referenceCSV))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReadRecordsDecodesTIS620(t *testing.T) {
	raw := tis620(t, "สถานที่เลี้ยงสัตว์ จังหวัด,โคเนื้อ (ตัว)\nเชียงใหม่,\"1,250\"\n")

	records, err := ReadRecords(bytes.NewReader(raw), "tis-620", ',')
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"สถานที่เลี้ยงสัตว์ จังหวัด", "โคเนื้อ (ตัว)"}, records[0])
	assert.Equal(t, []string{"เชียงใหม่", "1,250"}, records[1])
}

func TestReadRecordsPadsShortRows(t *testing.T) {
	records, err := ReadRecords(bytes.NewBufferString("a,b,c\n1,2\n"), "", ',')
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", ""}, records[1])
}

func TestReadRecordsRejectsLongRows(t *testing.T) {
	_, err := ReadRecords(bytes.NewBufferString("a,b\n1,2,3\n"), "", ',')
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadRecordsUnknownEncoding(t *testing.T) {
	_, err := ReadRecords(bytes.NewBufferString("a\n1\n"), "klingon", ',')
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadRecordsCustomDelimiter(t *testing.T) {
	records, err := ReadRecords(bytes.NewBufferString("a;b\n1,5;2\n"), "utf-8", ';')
	require.NoError(t, err)
	assert.Equal(t, []string{"1,5", "2"}, records[1])
}

func TestFrameFromRecordsMissingValues(t *testing.T) {
	df, err := FrameFromRecords([][]string{{"a"}, {"x"}, {""}, {"NA"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true}, df.Col("a").IsNaN())
}

func TestFrameFromRecordsHeaderOnly(t *testing.T) {
	df, err := FrameFromRecords([][]string{{"a", "b"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, df.Nrow())
	assert.Equal(t, []string{"a", "b"}, df.Names())
}

func TestLoadReference(t *testing.T) {
	srv := referenceServer(t)

	ref, err := LoadReference(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, 3, ref.Nrow())
	lats := ref.Col(ReferenceLatColumn).Float()
	assert.InDelta(t, 13.75, lats[0], 1e-9)
	assert.True(t, math.IsNaN(lats[2]))
}

func TestLoadReferenceMissingColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("name,lat\nx,1\n"))
	}))
	defer srv.Close()

	_, err := LoadReference(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestLoadReferenceUnavailable(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := LoadReference(context.Background(), srv.Client(), srv.URL)
		require.Error(t, err)
		assert.Equal(t, errors.CodeSourceUnavailable, errors.GetCode(err))
	})
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := LoadReference(context.Background(), http.DefaultClient, url)
		require.Error(t, err)
		assert.Equal(t, errors.CodeSourceUnavailable, errors.GetCode(err))
	})
}

func TestLoadLivestock(t *testing.T) {
	srv := referenceServer(t)
	path := filepath.Join(t.TempDir(), "livestock.csv")
	require.NoError(t, os.WriteFile(path, tis620(t, "province,cows\nเชียงใหม่,\"1,000\"\nกรุงเทพมหานคร,20\n"), 0644))

	tables, err := LoadLivestock(context.Background(), srv.Client(), Source{Location: path, Encoding: "tis-620"}, srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []string{"เชียงใหม่", "กรุงเทพมหานคร"}, tables.Records.Col("province").Records())
	assert.Equal(t, 3, tables.Reference.Nrow())
}

func TestLoadLivestockMissingFile(t *testing.T) {
	srv := referenceServer(t)

	_, err := LoadLivestock(context.Background(), srv.Client(), Source{Location: filepath.Join(t.TempDir(), "nope.csv")}, srv.URL)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSourceUnavailable, errors.GetCode(err))
}

func TestSourceLoaderPenguins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(penguinCSV))
	}))
	defer srv.Close()

	loader := &SourceLoader{Client: srv.Client(), PenguinsURL: srv.URL}
	df, err := loader.LoadPenguins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, df.Nrow())
}
