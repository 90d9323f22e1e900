package doxygen

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
	"git.home.luguber.info/inful/autodocs/internal/logfields"
)

// ConversionResult records the outcome for one SVG file.
type ConversionResult struct {
	SVG string
	PNG string
	Err error
}

// Rasterizer converts generated SVG graphs to PNG with an external tool.
type Rasterizer struct {
	runner CommandRunner
	binary string
}

// NewRasterizer returns a rasterizer invoking binary through runner (ExecRunner when nil).
func NewRasterizer(runner CommandRunner, binary string) *Rasterizer {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Rasterizer{runner: runner, binary: binary}
}

// ConvertAll runs "<binary> -o <png> <svg>" for every SVG under xmlDir, writing PNGs into
// imagesDir. Per-file failures are recorded in the results and never abort the loop.
// The returned error is reserved for cancellation and an unusable images directory.
func (r *Rasterizer) ConvertAll(ctx context.Context, xmlDir, imagesDir string) ([]ConversionResult, error) {
	svgs, err := findSVGs(xmlDir)
	if err != nil {
		return nil, aerrors.FileSystemError("walk", xmlDir, err)
	}
	if len(svgs) == 0 {
		slog.Debug("No SVG files to rasterize", logfields.Path(xmlDir))
		return nil, nil
	}
	if err := os.MkdirAll(imagesDir, 0o750); err != nil {
		return nil, aerrors.FileSystemError("mkdir", imagesDir, err)
	}

	results := make([]ConversionResult, 0, len(svgs))
	for _, svg := range svgs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		png := filepath.Join(imagesDir, strings.TrimSuffix(filepath.Base(svg), filepath.Ext(svg))+".png")
		res := ConversionResult{SVG: svg, PNG: png}
		if out, err := r.runner.Run(ctx, r.binary, "-o", png, svg); err != nil {
			if detail := out.Combined(); detail != "" {
				err = fmt.Errorf("%w: %s", err, strings.TrimSpace(detail))
			}
			res.Err = err
			slog.Debug("Rasterize failed", logfields.File(svg), logfields.Error(err))
		}
		results = append(results, res)
	}
	slog.Info("Rasterized graphs",
		logfields.Count(len(results)),
		slog.Int("failed", len(Warnings(results))))
	return results, nil
}

// Warnings returns one message per failed conversion.
func Warnings(results []ConversionResult) []string {
	var out []string
	for _, r := range results {
		if r.Err != nil {
			out = append(out, fmt.Sprintf("rasterize %s: %v", filepath.Base(r.SVG), r.Err))
		}
	}
	return out
}

func findSVGs(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	var svgs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".svg") {
			svgs = append(svgs, path)
		}
		return nil
	})
	sort.Strings(svgs)
	return svgs, err
}
