package mux

import (
	"context"
	"os"
	"os/exec"
)

// Runner executes external programs.
type Runner interface {
	// Output runs a command and returns its combined output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Interactive runs a command attached to the current terminal.
	Interactive(name string, args ...string) error
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

func (OSRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (OSRunner) Interactive(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
