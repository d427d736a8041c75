package config

import (
	"testing"
	"time"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "HTTP_TIMEOUT", "LIVESTOCK_FILE", "LIVESTOCK_ENCODING",
		"LIVESTOCK_DELIMITER", "PROVINCE_COLUMN", "METRIC_COLUMNS", "DEFAULT_REDUCER",
		"THOUSANDS_SEPARATORS", "REFERENCE_URL", "PENGUINS_URL", "DB_PATH", "OUTPUT_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.HTTPTimeout)
	assert.Equal(t, "tis-620", cfg.Livestock.Encoding)
	assert.Equal(t, ',', cfg.Livestock.Delimiter)
	assert.Equal(t, DefaultProvinceColumn, cfg.Livestock.CategoryColumn)
	assert.Equal(t, []string{DefaultMetricColumn}, cfg.Livestock.MetricColumns)
	assert.Equal(t, model.ReducerMean, cfg.Livestock.DefaultReducer)
	assert.Equal(t, DefaultReferenceURL, cfg.Livestock.ReferenceURL)
	assert.Equal(t, DefaultPenguinsURL, cfg.Penguins.URL)
	assert.Equal(t, ":memory:", cfg.Store.Path)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("METRIC_COLUMNS", "cows (ตัว) | buffalo (ตัว)|")
	t.Setenv("DEFAULT_REDUCER", "Median")
	t.Setenv("LIVESTOCK_DELIMITER", ";")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.HTTPTimeout)
	assert.Equal(t, []string{"cows (ตัว)", "buffalo (ตัว)"}, cfg.Livestock.MetricColumns)
	assert.Equal(t, model.ReducerMedian, cfg.Livestock.DefaultReducer)
	assert.Equal(t, ';', cfg.Livestock.Delimiter)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("reducer", func(t *testing.T) {
		t.Setenv("DEFAULT_REDUCER", "mode")
		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
	t.Run("delimiter", func(t *testing.T) {
		t.Setenv("LIVESTOCK_DELIMITER", ";;")
		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
	t.Run("port", func(t *testing.T) {
		t.Setenv("PORT", "http")
		_, err := Load()
		require.Error(t, err)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	})
}
