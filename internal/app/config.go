package app

import (
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/job"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectPath string
	OutputPath  string
	Format      job.Format
	// Extent is the requested area in WGS84 (west, south, east, north).
	Extent geo.Rect

	LogFormat       string
	LogLevel        string
	FontFamily      string
	FontDirs        []string
	MetricsTextfile string
}

// NewConfig validates cfg and returns a copy with the format tag
// normalized.
func NewConfig(cfg Config) (*Config, error) {
	format, err := job.ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = format
	if cfg.FontFamily == "" {
		cfg.FontFamily = job.DefaultFontFamily
	}
	return &cfg, nil
}
