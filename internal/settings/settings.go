// Package settings loads tool settings from an optional YAML file and from
// EXPORTMAP_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the settings file looked up when no explicit path is given.
const FileName = "export_map"

// EnvPrefix is the prefix of environment overrides: EXPORTMAP_LOG_LEVEL → log_level.
const EnvPrefix = "EXPORTMAP"

// Settings holds the tool settings.
type Settings struct {
	LogLevel           string   `mapstructure:"log_level"`
	LogFormat          string   `mapstructure:"log_format"`
	FallbackFontFamily string   `mapstructure:"fallback_font_family"`
	FontDirs           []string `mapstructure:"font_dirs"`
	MetricsTextfile    string   `mapstructure:"metrics_textfile"`
}

// DefaultFontDirs are the directories searched for TrueType fonts.
func DefaultFontDirs() []string {
	dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".fonts"))
	}
	return dirs
}

// Load reads settings. An explicit path must exist; without one the file is
// optional and searched in the working directory and in
// $HOME/.config/export_map.
func Load(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("fallback_font_family", "DejaVu Sans")
	v.SetDefault("font_dirs", DefaultFontDirs())
	v.SetDefault("metrics_textfile", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read settings: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.LogFormat = strings.ToLower(s.LogFormat)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every field holds a usable value.
func (s *Settings) Validate() error {
	var errs []string

	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log_level must be debug, info, warn or error, got %q", s.LogLevel))
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("log_format must be text or json, got %q", s.LogFormat))
	}
	if strings.TrimSpace(s.FallbackFontFamily) == "" {
		errs = append(errs, "fallback_font_family is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("settings validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
