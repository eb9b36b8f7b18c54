package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/vk/quickbuildgo/internal/ctxlog"
	"github.com/vk/quickbuildgo/internal/descriptor"
	"github.com/vk/quickbuildgo/internal/engine"
	"github.com/vk/quickbuildgo/internal/fsutil"
	"github.com/vk/quickbuildgo/internal/resolve"
	"github.com/vk/quickbuildgo/internal/toolchain"
	"github.com/vk/quickbuildgo/internal/variant"
)

// Run executes one orchestration run based on the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	root, err := resolve.FindProjectRoot(a.config.StartDir)
	if err != nil {
		return err
	}

	project, err := descriptor.LoadProject(root)
	if err != nil {
		return err
	}

	v := variant.FromRelease(a.config.Release)
	a.logger.Info("Project loaded.", "project", project.Name, "root", root, "variant", v)

	// An optional .env at the project root can pin toolchain commands
	// (CC, CXX, AR) for everyone building the project.
	if envPath := filepath.Join(root, ".env"); fsutil.IsFile(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		a.logger.Debug("Loaded environment overrides.", "path", envPath)
	}

	b := a.builder
	if b == nil {
		b = toolchain.New()
	}

	run := engine.New(root, v, project.BaseSettings(v), b)

	startDir, err := filepath.Abs(a.config.StartDir)
	if err != nil {
		return err
	}
	if err := run.BuildUnits(ctx, startDir, a.config.Units); err != nil {
		return err
	}

	a.logger.Info("Build complete.", "units", run.Manifest().Len(), "variant", v)
	a.logger.Debug("App.Run method finished.")
	return nil
}
