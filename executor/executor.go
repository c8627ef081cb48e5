// Package executor runs external programs from explicit argument lists.
// It never goes through a shell, so arguments are passed to the program verbatim.
// Commands run synchronously and are never retried; a failed command is reported
// once and the caller decides what to do with it.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Result holds the output and exit status of a command execution
type Result struct {
	Stdout   string
	Stderr   string
	// ExitCode is the process exit status, or -1 when the process could not be started.
	ExitCode int
	Err      error
}

// Launcher starts a program with arguments and waits for it to exit.
// It is the seam tests replace with a fake.
type Launcher interface {
	Launch(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// OSLauncher launches real processes.
type OSLauncher struct{}

// Launch implements Launcher.
func (OSLauncher) Launch(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	return New(program, args...).Execute(ctx, opts...)
}

// CommandExecutor runs a single program with fixed arguments.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// New creates a new CommandExecutor
func New(program string, args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: program,
		args:    args,
		options: DefaultOptions(),
	}
}

// Execute runs the command once and waits for it to exit.
// A non-zero exit yields both a populated Result and an error.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)

	cmd := exec.CommandContext(ctx, c.program, c.args...)
	c.setupCommand(cmd, options)
	stdoutBuf, stderrBuf := c.setupOutput(cmd, options)

	err := cmd.Run()

	result := c.createResult(stdoutBuf, stderrBuf, err)
	if err != nil {
		return result, fmt.Errorf("command execution failed: %w", err)
	}
	return result, nil
}

// setupCommand configures the working directory
func (c *CommandExecutor) setupCommand(cmd *exec.Cmd, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
}

// setupOutput wires stdout and stderr into capture buffers and/or the console
func (c *CommandExecutor) setupOutput(cmd *exec.Cmd, options *Options) (*bytes.Buffer, *bytes.Buffer) {
	var stdoutBuf, stderrBuf bytes.Buffer

	stdoutWriters := []io.Writer{}
	if options.CaptureStdout {
		stdoutWriters = append(stdoutWriters, &stdoutBuf)
	}
	if options.RedirectToConsole {
		stdoutWriters = append(stdoutWriters, options.consoleOut())
	}
	if len(stdoutWriters) > 0 {
		cmd.Stdout = io.MultiWriter(stdoutWriters...)
	}

	stderrWriters := []io.Writer{}
	if options.CaptureStderr {
		stderrWriters = append(stderrWriters, &stderrBuf)
	}
	if options.RedirectToConsole {
		stderrWriters = append(stderrWriters, options.consoleErr())
	}
	if options.StderrWriter != nil {
		stderrWriters = append(stderrWriters, options.StderrWriter)
	}
	if len(stderrWriters) > 0 {
		cmd.Stderr = io.MultiWriter(stderrWriters...)
	}

	return &stdoutBuf, &stderrBuf
}

// createResult builds a Result and extracts the exit code
func (c *CommandExecutor) createResult(stdoutBuf, stderrBuf *bytes.Buffer, err error) *Result {
	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	return result
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options
	for _, opt := range opts {
		opt(&merged)
	}

	return &merged
}
