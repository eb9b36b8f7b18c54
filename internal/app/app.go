// Package app wires one orchestration run together: it locates the project,
// loads the project descriptor, composes the base settings for the selected
// variant, and drives the engine for the requested units.
package app

import (
	"io"
	"log/slog"

	"github.com/vk/quickbuildgo/internal/builder"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	builder builder.Builder
}

// NewApp is the constructor for the main application. A nil builder selects
// the default host toolchain; tests inject a fake instead.
func NewApp(outW io.Writer, config *Config, b builder.Builder) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  config,
		builder: b,
	}
}
