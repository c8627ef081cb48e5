// Package executortest provides a scripted executor.Launcher for tests.
package executortest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SFSorrow1968/iif-release/executor"
)

// Reply is the scripted outcome of one command.
type Reply struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err, when set, is returned as the launch error regardless of ExitCode.
	Err error
}

// Call records one launch.
type Call struct {
	Program string
	Args    []string
	Options *executor.Options
}

// Line returns the call as a space-joined command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Fake is a Launcher that answers from a script keyed by command line.
// Unscripted commands succeed with empty output.
type Fake struct {
	mu      sync.Mutex
	replies map[string]Reply
	calls   []Call
}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{replies: make(map[string]Reply)}
}

// On scripts the reply for an exact command line ("git tag -l v1.0.0").
func (f *Fake) On(line string, reply Reply) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[line] = reply
	return f
}

// Launch implements executor.Launcher.
func (f *Fake) Launch(_ context.Context, program string, args []string, opts ...executor.Option) (*executor.Result, error) {
	call := Call{
		Program: program,
		Args:    append([]string(nil), args...),
		Options: executor.Resolve(opts...),
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	reply, ok := f.replies[call.Line()]
	f.mu.Unlock()

	if !ok {
		return &executor.Result{}, nil
	}

	if reply.Stdout != "" && call.Options.RedirectToConsole && call.Options.ConsoleOut != nil {
		fmt.Fprint(call.Options.ConsoleOut, reply.Stdout)
	}

	result := &executor.Result{
		Stdout:   reply.Stdout,
		Stderr:   reply.Stderr,
		ExitCode: reply.ExitCode,
	}
	switch {
	case reply.Err != nil:
		result.Err = reply.Err
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
	case reply.ExitCode != 0:
		result.Err = fmt.Errorf("exit status %d", reply.ExitCode)
	}
	if result.Err != nil {
		return result, fmt.Errorf("command execution failed: %w", result.Err)
	}
	return result, nil
}

// Calls returns a copy of every recorded launch in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Lines returns the command lines of every recorded launch in order.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// Ran reports whether line was launched.
func (f *Fake) Ran(line string) bool {
	for _, l := range f.Lines() {
		if l == line {
			return true
		}
	}
	return false
}
