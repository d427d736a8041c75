package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// artifactTypes maps file extensions to the artifact kinds the manifest reports
var artifactTypes = map[string]string{
	".csv":  "csv",
	".json": "json",
	".xlsx": "excel",
	".xls":  "excel",
	".png":  "image",
	".html": "html",
	".htm":  "html",
}

// OutputManager lays out run artifacts as <base>/<run-id>/<file>
type OutputManager struct {
	BaseOutputDir string
}

func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// RunDir creates the artifact directory of a run if needed
func (om *OutputManager) RunDir(runID string) (string, error) {
	if runID == "" || runID != filepath.Base(runID) {
		return "", fmt.Errorf("invalid run ID %q", runID)
	}
	dir := filepath.Join(om.BaseOutputDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run output directory: %w", err)
	}
	return dir, nil
}

// WriteFile stores one artifact and returns its path. Directory parts of
// fileName are ignored.
func (om *OutputManager) WriteFile(runID, fileName string, data []byte) (string, error) {
	dir, err := om.RunDir(runID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(fileName))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Artifacts lists the file names written for a run, sorted
func (om *OutputManager) Artifacts(runID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(om.BaseOutputDir, filepath.Base(runID)))
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts of %s: %w", runID, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// GetFileType classifies an artifact by extension
func (om *OutputManager) GetFileType(fileName string) string {
	if kind, ok := artifactTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return kind
	}
	return "unknown"
}
