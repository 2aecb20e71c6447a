package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/exportmap/internal/app"
	"github.com/vk/exportmap/internal/cli"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/hcl_adapter"
	"github.com/vk/exportmap/internal/render"
)

// main is the entrypoint for the export_map application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	return runWith(outW, args, newRenderEngine)
}

func newRenderEngine(cfg *app.Config) engine.Initializer {
	return render.New(render.Options{
		FontDirs: cfg.FontDirs,
		Loader:   hcl_adapter.NewLoader(),
	})
}

func runWith(outW io.Writer, args []string, newEngine func(*app.Config) engine.Initializer) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	exportApp := app.NewApp(outW, appConfig, newEngine(appConfig))
	return exportApp.Run(context.Background())
}
