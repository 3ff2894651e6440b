package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampLayout qualifies run directories and log files.
const TimestampLayout = "20060102_150405"

// RunLayout is the set of paths owned by a single crawl run.
type RunLayout struct {
	Dir         string
	ImagesDir   string
	ResultsFile string
	ItemsCSV    string
	LogFile     string
}

// NewRunLayout derives the run paths for a run started at now.
func NewRunLayout(cfg *Config, now time.Time) RunLayout {
	stamp := now.Format(TimestampLayout)
	dir := filepath.Join(cfg.RunsDirectory, fmt.Sprintf("%s.%s", cfg.RunName, stamp))

	layout := RunLayout{
		Dir:         dir,
		ImagesDir:   filepath.Join(dir, "img"),
		ResultsFile: filepath.Join(dir, "results.json"),
		ItemsCSV:    filepath.Join(dir, "items.csv"),
	}
	if cfg.LogDirectory != "" {
		layout.LogFile = filepath.Join(cfg.LogDirectory, stamp+".log")
	}
	return layout
}

// Create makes the run and image directories. An existing run directory is
// rejected so two runs never share one.
func (l RunLayout) Create() error {
	if _, err := os.Stat(l.Dir); err == nil {
		return fmt.Errorf("run directory %q already exists", l.Dir)
	}
	if err := os.MkdirAll(l.ImagesDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", l.ImagesDir, err)
	}
	return nil
}
