package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go-stats-dashboard/internal/errors"
	"go-stats-dashboard/internal/model"
	"go-stats-dashboard/pkg/utils"
)

// Source of the province coordinates table
const DefaultReferenceURL = "https://raw.githubusercontent.com/dataengineercafe/thailand-province-latitude-longitude/main/provinces.csv"

// Source of the penguin morphology table
const DefaultPenguinsURL = "https://raw.githubusercontent.com/mwaskom/seaborn-data/master/penguins.csv"

const (
	DefaultLivestockFile  = "datasets/1642645053.csv"
	DefaultProvinceColumn = "สถานที่เลี้ยงสัตว์ จังหวัด"
	DefaultMetricColumn   = "โคเนื้อ พื้นเมือง เพศผู้ (ตัว)"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Livestock LivestockConfig
	Penguins  PenguinsConfig
	Store     StoreConfig
	Output    OutputConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	HTTPTimeout time.Duration
}

// LivestockConfig describes the livestock file and its reference table
type LivestockConfig struct {
	File           string
	Encoding       string
	Delimiter      rune
	CategoryColumn string
	MetricColumns  []string
	DefaultReducer model.Reducer
	Separators     string
	ReferenceURL   string
}

// PenguinsConfig points at the penguin table
type PenguinsConfig struct {
	URL string
}

// StoreConfig holds the run ledger DSN
type StoreConfig struct {
	Path string
}

// OutputConfig holds where the CLI writes artifacts
type OutputConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	livestock, err := loadLivestockConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load livestock configuration")
	}

	config := &Config{
		Server:    *loadServerConfig(),
		Livestock: *livestock,
		Penguins: PenguinsConfig{
			URL: getEnvOrDefault("PENGUINS_URL", DefaultPenguinsURL),
		},
		Store: StoreConfig{
			Path: getEnvOrDefault("DB_PATH", ":memory:"),
		},
		Output: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "output"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		HTTPTimeout: getEnvDurationOrDefault("HTTP_TIMEOUT", 30*time.Second),
	}
}

func loadLivestockConfig() (*LivestockConfig, error) {
	reducer, err := model.ParseReducer(getEnvOrDefault("DEFAULT_REDUCER", string(model.ReducerMean)))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	delimiter := getEnvOrDefault("LIVESTOCK_DELIMITER", ",")
	if utf8.RuneCountInString(delimiter) != 1 {
		return nil, errors.ConfigInvalid("LIVESTOCK_DELIMITER must be a single character")
	}
	d, _ := utf8.DecodeRuneInString(delimiter)

	return &LivestockConfig{
		File:           getEnvOrDefault("LIVESTOCK_FILE", DefaultLivestockFile),
		Encoding:       getEnvOrDefault("LIVESTOCK_ENCODING", "tis-620"),
		Delimiter:      d,
		CategoryColumn: getEnvOrDefault("PROVINCE_COLUMN", DefaultProvinceColumn),
		MetricColumns:  getEnvListOrDefault("METRIC_COLUMNS", []string{DefaultMetricColumn}),
		DefaultReducer: reducer,
		Separators:     getEnvOrDefault("THOUSANDS_SEPARATORS", ","),
		ReferenceURL:   getEnvOrDefault("REFERENCE_URL", DefaultReferenceURL),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Livestock.CategoryColumn == "" {
		return errors.ConfigInvalid("province column is required")
	}
	if len(config.Livestock.MetricColumns) == 0 {
		return errors.ConfigInvalid("at least one metric column is required")
	}
	if config.Livestock.ReferenceURL == "" {
		return errors.ConfigInvalid("reference URL is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvListOrDefault splits on "|" since metric column names contain commas and spaces
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, "|") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	return utils.ParseDuration(os.Getenv(key), defaultValue)
}
