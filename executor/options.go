package executor

import (
	"io"
	"os"
)

// Options configures command execution behavior
type Options struct {
	// Output handling
	CaptureStdout     bool
	CaptureStderr     bool
	RedirectToConsole bool

	// Console streams used by RedirectToConsole. Nil means os.Stdout / os.Stderr.
	ConsoleOut io.Writer
	ConsoleErr io.Writer

	// Working directory
	WorkingDir string

	// StderrWriter receives stderr in addition to any capture, e.g. the
	// terminal while stdout is captured for parsing.
	StderrWriter io.Writer
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns default execution options: capture, no console.
func DefaultOptions() *Options {
	return &Options{
		CaptureStdout: true,
		CaptureStderr: true,
	}
}

// Resolve applies opts to a fresh DefaultOptions. Fakes use it to inspect
// what a caller asked for.
func Resolve(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) consoleOut() io.Writer {
	if o.ConsoleOut != nil {
		return o.ConsoleOut
	}
	return os.Stdout
}

func (o *Options) consoleErr() io.Writer {
	if o.ConsoleErr != nil {
		return o.ConsoleErr
	}
	return os.Stderr
}

// WithCapture configures output capture
func WithCapture(stdout, stderr bool) Option {
	return func(o *Options) {
		o.CaptureStdout = stdout
		o.CaptureStderr = stderr
	}
}

// WithConsole sets the streams used for console output.
func WithConsole(stdout, stderr io.Writer) Option {
	return func(o *Options) {
		o.ConsoleOut = stdout
		o.ConsoleErr = stderr
	}
}

// WithWorkingDir sets the working directory
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithStderrWriter sets a custom stderr writer
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// ConsoleOnly redirects to console without capture
func ConsoleOnly() Option {
	return func(o *Options) {
		o.CaptureStdout = false
		o.CaptureStderr = false
		o.RedirectToConsole = true
	}
}
