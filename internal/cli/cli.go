package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vk/exportmap/internal/app"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/job"
	"github.com/vk/exportmap/internal/settings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const positionalCount = 7

const usageText = `
export_map - export the first layout of a map project to PDF or an image.

Usage:
  export_map [options] <project_path> <output_path> <format> <xmin> <ymin> <xmax> <ymax>

Arguments:
  project_path  Map project file (.hcl or .json).
  output_path   File to write. For IMAGE the extension picks the encoding
                (.png, .jpg, .gif, .tif, .bmp).
  format        PDF or IMAGE, in any letter case.
  xmin ymin xmax ymax
                Extent in EPSG:4326 longitude/latitude.

Options:
`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("export_map", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a settings file (YAML). Default: export_map.yaml in . or $HOME/.config/export_map.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	metricsFlag := flagSet.String("metrics-textfile", "", "Write run metrics in Prometheus text format to this file.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	positional := flagSet.Args()
	if len(positional) != positionalCount {
		flagSet.Usage()
		return nil, false, &ExitError{
			Code:    1,
			Message: fmt.Sprintf("expected %d arguments, got %d", positionalCount, len(positional)),
		}
	}

	coords, err := parseCoordinates(positional[3:])
	if err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	format, err := job.ParseFormat(positional[2])
	if err != nil {
		return nil, false, &ExitError{Code: 1, Message: "❌ " + err.Error()}
	}

	s, err := settings.Load(*configFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// Flags given on the command line win over settings.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-format":
			s.LogFormat = strings.ToLower(*logFormatFlag)
		case "log-level":
			s.LogLevel = strings.ToLower(*logLevelFlag)
		case "metrics-textfile":
			s.MetricsTextfile = *metricsFlag
		}
	})
	if err := s.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ProjectPath:     positional[0],
		OutputPath:      positional[1],
		Format:          format,
		Extent:          geo.NewRect(coords[0], coords[1], coords[2], coords[3]),
		LogFormat:       s.LogFormat,
		LogLevel:        s.LogLevel,
		FontFamily:      s.FallbackFontFamily,
		FontDirs:        s.FontDirs,
		MetricsTextfile: s.MetricsTextfile,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

var coordinateNames = [...]string{"xmin", "ymin", "xmax", "ymax"}

func parseCoordinates(values []string) ([4]float64, error) {
	var coords [4]float64
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return coords, fmt.Errorf("invalid %s %q: not a number", coordinateNames[i], v)
		}
		coords[i] = f
	}
	return coords, nil
}
