package smoke

import (
	"fmt"
	"os"

	"github.com/Sticlo/ProyectoCobra/pkg/logger"
)

// SetupLogging initializes the global logger for the smoke tool.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`ProyectoCobra Smoke Tool
========================

Exercises the documented usuarios API of a running server concurrently.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:3000")
  -usuarios int
        Number of usuarios to create (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  go run ./cmd/smoke
  go run ./cmd/smoke -usuarios 1000 -workers 16 -url http://localhost:8080
`)
}
