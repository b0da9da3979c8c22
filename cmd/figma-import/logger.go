package main

import (
	"fmt"

	figmaimport "github.com/hellenic-development/figma-import"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

const (
	logFormatColor = "color"
	logFormatJSON  = "json"
)

// newLogger returns the progress logger for the requested format and a function
// that flushes it.
func newLogger(format string) (figmaimport.Logger, func(), error) {
	switch format {
	case logFormatColor, "":
		return &cliLogger{}, func() {}, nil
	case logFormatJSON:
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.OutputPaths = []string{"stderr"}
		cfg.InitialFields = map[string]any{"service": "figma-import", "version": version}

		logger, err := cfg.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("build logger: %w", err)
		}
		return logger.Sugar(), func() { _ = logger.Sync() }, nil
	default:
		return nil, nil, fmt.Errorf("invalid log format %q (must be color or json)", format)
	}
}

// cliLogger implements figmaimport.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
