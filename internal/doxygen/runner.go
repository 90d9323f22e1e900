package doxygen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CommandOutput is the captured output of a finished subprocess.
type CommandOutput struct {
	Stdout string
	Stderr string
}

// Combined returns stdout and stderr joined, skipping empty streams.
func (o CommandOutput) Combined() string {
	switch {
	case o.Stdout == "":
		return o.Stderr
	case o.Stderr == "":
		return o.Stdout
	default:
		return o.Stdout + "\n" + o.Stderr
	}
}

// CommandRunner abstracts subprocess execution so the generator and rasterizer can be
// exercised without the real binaries.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandOutput, error)
}

// ExecRunner runs binaries found on PATH and blocks until they exit.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandOutput, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return CommandOutput{}, fmt.Errorf("%w: %s: %w", ErrBinaryNotFound, name, err)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	return CommandOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
}
