package doxygen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/autodocs/internal/config"
	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
	"git.home.luguber.info/inful/autodocs/internal/workspace"
)

// DoxyfileName is the name of the configuration file written into the run workspace.
const DoxyfileName = "Doxyfile"

// BuildResult describes the generated output tree.
type BuildResult struct {
	OutputDir     string
	HTMLDir       string
	XMLDir        string
	EntryArtifact string
	Doxyfile      Doxyfile
}

// Generator runs the doc generator exactly once per Build call.
type Generator struct {
	runner        CommandRunner
	workspaceBase string
}

// NewGenerator returns a generator using runner (ExecRunner when nil).
func NewGenerator(runner CommandRunner) *Generator {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Generator{runner: runner}
}

// WithWorkspaceBase sets the directory under which the per-run workspace is created.
func (g *Generator) WithWorkspaceBase(dir string) *Generator {
	g.workspaceBase = dir
	return g
}

// EntryArtifact returns the file whose presence confirms a successful generator run.
func EntryArtifact(cfg *config.BuildConfig) string {
	if cfg.Features.GenerateHTML {
		return filepath.Join(cfg.Paths.HTMLDir, "index.html")
	}
	return filepath.Join(cfg.Paths.XMLDir, "index.xml")
}

// Build writes the Doxyfile, invokes the generator and checks the entry artifact.
// A non-zero exit or a run exceeding cfg.Generator.Timeout is fatal and never retried.
func (g *Generator) Build(ctx context.Context, cfg *config.BuildConfig) (*BuildResult, error) {
	binary := cfg.Generator.Binary
	doxy := NewDoxyfile(cfg)

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o750); err != nil {
		return nil, aerrors.FileSystemError("mkdir", cfg.Paths.OutputDir, err)
	}
	// Stale trees from an earlier run would satisfy the entry check.
	for _, dir := range []string{cfg.Paths.HTMLDir, cfg.Paths.XMLDir} {
		if err := os.RemoveAll(dir); err != nil {
			return nil, aerrors.FileSystemError("remove", dir, err)
		}
	}

	ws := workspace.NewManager(g.workspaceBase)
	if err := ws.Create(); err != nil {
		return nil, aerrors.FileSystemError("create workspace", g.workspaceBase, err)
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			slog.Warn("Failed to cleanup workspace", logfields.Error(cerr))
		}
	}()

	doxyPath, err := ws.WriteFile(DoxyfileName, []byte(doxy.Render()))
	if err != nil {
		return nil, aerrors.FileSystemError("write", DoxyfileName, err)
	}

	slog.Info("Running doc generator",
		logfields.Binary(binary),
		logfields.Path(cfg.SourceDir))
	runCtx := ctx
	if timeout := cfg.Generator.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	out, err := g.runner.Run(runCtx, binary, doxyPath)
	if out.Stdout != "" {
		slog.Debug("generator stdout", "output", out.Stdout)
	}
	if out.Stderr != "" {
		slog.Debug("generator stderr", "error_output", out.Stderr)
	}
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", ErrGeneratorTimeout, cfg.Generator.Timeout, err)
		}
		return nil, aerrors.GeneratorFailed(binary, wrapRunError(err, out))
	}

	entry := EntryArtifact(cfg)
	if _, err := os.Stat(entry); err != nil {
		return nil, aerrors.NoOutput(entry, fmt.Errorf("%w: %s", ErrNoOutput, entry))
	}
	slog.Debug("Entry artifact present", logfields.Path(entry))

	return &BuildResult{
		OutputDir:     cfg.Paths.OutputDir,
		HTMLDir:       cfg.Paths.HTMLDir,
		XMLDir:        cfg.Paths.XMLDir,
		EntryArtifact: entry,
		Doxyfile:      doxy,
	}, nil
}

func wrapRunError(err error, out CommandOutput) error {
	if errors.Is(err, ErrBinaryNotFound) {
		return fmt.Errorf("%w: %w", ErrGeneratorNotFound, err)
	}
	if output := out.Combined(); output != "" {
		return fmt.Errorf("%w: %w: %s", ErrGeneratorFailed, err, output)
	}
	return fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
}
