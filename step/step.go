// Package step runs the external commands of a release one at a time.
//
// Each Step is printed as a "$ command" audit line before it runs, its output
// passes straight through to the terminal, and a non-zero exit becomes a
// STEP_EXECUTION_FAILED error carrying the command line and exit code.
// The runner never retries and applies no idempotence logic of its own.
package step

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SFSorrow1968/iif-release/console"
	"github.com/SFSorrow1968/iif-release/errors"
	"github.com/SFSorrow1968/iif-release/executor"
)

// Step describes one external invocation.
type Step struct {
	Program string
	Args    []string
	// Dir is the working directory. Empty means the repository root;
	// a relative path is resolved against the root.
	Dir string
}

// New returns a Step running program with args in the repository root.
func New(program string, args ...string) Step {
	return Step{Program: program, Args: args}
}

// In returns a copy of s running in dir.
func (s Step) In(dir string) Step {
	s.Dir = dir
	return s
}

// String renders the step as a command line for the audit trail.
// Arguments containing whitespace or quotes are double-quoted.
func (s Step) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, quote(s.Program))
	for _, a := range s.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, " \t\n\"'") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}

// Runner executes steps relative to a fixed repository root.
type Runner struct {
	root     string
	launcher executor.Launcher
	stdout   io.Writer
	stderr   io.Writer
	console  *console.Console
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLauncher replaces the process launcher.
func WithLauncher(l executor.Launcher) Option {
	return func(r *Runner) { r.launcher = l }
}

// WithOutput sets where audit lines and passed-through command output go.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger configures the runner with a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner rooted at root.
func NewRunner(root string, opts ...Option) *Runner {
	r := &Runner{
		root:     root,
		launcher: executor.OSLauncher{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.console = console.New(r.stdout)
	return r
}

// Root returns the repository root the runner resolves directories against.
func (r *Runner) Root() string { return r.root }

// Audit prints a "$ line" entry without running anything. Backends that
// perform an operation in-process use it to keep the audit trail complete.
func (r *Runner) Audit(line string) {
	r.console.Command(line)
}

// Run prints the step and executes it with output passed through to the console.
func (r *Runner) Run(ctx context.Context, s Step) error {
	r.Audit(s.String())

	dir := r.dir(s)
	r.logger.Debug("running step", "command", s.String(), "dir", dir)

	result, err := r.launcher.Launch(ctx, s.Program, s.Args,
		executor.ConsoleOnly(),
		executor.WithConsole(r.stdout, r.stderr),
		executor.WithWorkingDir(dir),
	)
	return r.check(s, result, err)
}

// Output executes a query step and returns its captured stdout.
// Queries are not printed; stderr still reaches the console.
func (r *Runner) Output(ctx context.Context, s Step) (string, error) {
	dir := r.dir(s)
	r.logger.Debug("querying", "command", s.String(), "dir", dir)

	result, err := r.launcher.Launch(ctx, s.Program, s.Args,
		executor.WithCapture(true, false),
		executor.WithStderrWriter(r.stderr),
		executor.WithWorkingDir(dir),
	)
	if err := r.check(s, result, err); err != nil {
		return "", err
	}
	return result.Stdout, nil
}

func (r *Runner) dir(s Step) string {
	switch {
	case s.Dir == "":
		return r.root
	case filepath.IsAbs(s.Dir):
		return s.Dir
	default:
		return filepath.Join(r.root, s.Dir)
	}
}

func (r *Runner) check(s Step, result *executor.Result, err error) error {
	if err == nil {
		return nil
	}
	code := -1
	if result != nil {
		code = result.ExitCode
	}
	r.logger.Debug("step failed", "command", s.String(), "exit_code", code, "error", err)
	return errors.WrapWithContext(
		err,
		errors.CodeStepFailed,
		"command failed",
		map[string]any{
			"command":   s.String(),
			"exit_code": code,
		},
	)
}

// Failure extracts the command line and exit code from a STEP_EXECUTION_FAILED error.
func Failure(err error) (command string, exitCode int, ok bool) {
	re := errors.Find(err, errors.CodeStepFailed)
	if re == nil {
		return "", 0, false
	}
	command, cok := re.Context["command"].(string)
	exitCode, eok := re.Context["exit_code"].(int)
	if !cok || !eok {
		return "", 0, false
	}
	return command, exitCode, true
}
