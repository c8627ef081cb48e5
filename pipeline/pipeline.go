// Package pipeline sequences a release:
//
//	Start → Validated → Verified → Packaged → Tagged → Pushed → Published → Done
//
// Each transition must succeed before the next one starts. The first failure
// moves the run to Aborted and is returned as is; nothing is rolled back or
// retried. Only tag creation is guarded for re-runs; everything before it has
// no lasting external effect and everything after it relies on the external
// tool tolerating a repeat.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SFSorrow1968/iif-release/config"
	"github.com/SFSorrow1968/iif-release/console"
	"github.com/SFSorrow1968/iif-release/errors"
	"github.com/SFSorrow1968/iif-release/guard"
	"github.com/SFSorrow1968/iif-release/manifest"
	"github.com/SFSorrow1968/iif-release/step"
	"github.com/SFSorrow1968/iif-release/vcs"
)

// Report describes how far a run got.
type Report struct {
	Release manifest.Descriptor
	// State is the last state reached: Done on success, Aborted on failure.
	State State
	// FailedAt is the state the run was leaving when it aborted.
	FailedAt State
	// TagCreated is false when the tag already existed and creation was skipped.
	TagCreated bool
}

// Pipeline runs the release sequence for one configuration.
type Pipeline struct {
	cfg     *config.Config
	runner  *step.Runner
	vcs     vcs.Client
	console *console.Console
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConsole sets where banners and notices are printed.
func WithConsole(w io.Writer) Option {
	return func(p *Pipeline) { p.console = console.New(w) }
}

// WithLogger configures the pipeline with a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline. The runner and client must be rooted at cfg.Root.
func New(cfg *config.Config, runner *step.Runner, client vcs.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		runner:  runner,
		vcs:     client,
		console: console.New(os.Stdout),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type transition struct {
	to  State
	run func(ctx context.Context, r *Report) error
}

// Run executes the sequence and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{State: Start}

	transitions := []transition{
		{Validated, p.validate},
		{Verified, p.verify},
		{Packaged, p.pack},
		{Tagged, p.tag},
		{Pushed, p.push},
		{Published, p.publish},
		{Done, p.finish},
	}

	for _, t := range transitions {
		if err := t.run(ctx, &report); err != nil {
			report.FailedAt = report.State
			report.State = Aborted
			p.logger.Error("release aborted",
				"from", report.FailedAt.String(),
				"to", t.to.String(),
				"version", report.Release.Version,
				"code", string(errors.GetCode(err)),
				"error", err,
			)
			return report, err
		}
		p.logger.Debug("transition",
			"from", report.State.String(),
			"to", t.to.String(),
			"version", report.Release.Version,
		)
		report.State = t.to
	}
	return report, nil
}

// validate resolves the release and checks the repository. No external
// side effect has happened when this fails.
func (p *Pipeline) validate(ctx context.Context, r *Report) error {
	release, err := manifest.Load(p.cfg.ManifestPath(), p.cfg.TagPrefix)
	if err != nil {
		return err
	}
	r.Release = release

	p.console.Banner(fmt.Sprintf("Releasing %s %s", p.cfg.Product, release.Version))

	return guard.RequireCleanNonMainGitState(ctx, p.vcs)
}

func (p *Pipeline) verify(ctx context.Context, r *Report) error {
	c := p.cfg.Verify
	return p.runner.Run(ctx, step.New(c.Program, config.ExpandArgs(c.Args, p.vars(r))...))
}

// pack builds every archive. A failure leaves earlier archives on disk.
func (p *Pipeline) pack(ctx context.Context, r *Report) error {
	p.console.Banner("Creating release zips")

	for _, a := range p.archives(r) {
		vars := p.vars(r)
		vars["name"] = a.Name
		vars["source"] = a.Source
		vars["destination"] = a.Destination
		vars["source_ps"] = config.PowerShellLiteral(a.Source)
		vars["destination_ps"] = config.PowerShellLiteral(a.Destination)

		c := p.cfg.Archiver
		if err := p.runner.Run(ctx, step.New(c.Program, config.ExpandArgs(c.Args, vars)...)); err != nil {
			return err
		}
	}
	return nil
}

// tag creates the release tag unless it already exists, so a re-run after a
// later failure does not trip over its own tag.
func (p *Pipeline) tag(ctx context.Context, r *Report) error {
	tag := r.Release.Tag

	exists, err := p.vcs.TagExists(ctx, tag)
	if err != nil {
		return asStepFailure(err, "git tag -l "+tag)
	}
	if exists {
		p.logger.Info("tag already exists, skipping creation", "tag", tag)
		p.console.Notice("tag %s already exists; not recreating it", tag)
		return nil
	}

	if err := p.vcs.CreateTag(ctx, tag); err != nil {
		return asStepFailure(err, "git tag "+tag)
	}
	r.TagCreated = true
	return nil
}

// push is unconditional; pushing an already pushed tag is left to git.
func (p *Pipeline) push(ctx context.Context, r *Report) error {
	tag := r.Release.Tag
	if err := p.vcs.PushTag(ctx, p.cfg.Remote, tag); err != nil {
		return asStepFailure(err, fmt.Sprintf("git push %s %s", p.cfg.Remote, tag))
	}
	return nil
}

// publish creates the hosted release with every archive attached.
func (p *Pipeline) publish(ctx context.Context, r *Report) error {
	p.console.Banner("Creating GitHub release")
	return p.runner.Run(ctx, p.publishStep(r))
}

func (p *Pipeline) publishStep(r *Report) step.Step {
	vars := p.vars(r)
	pub := p.cfg.Publish

	args := []string{"release", "create", r.Release.Tag}
	for _, a := range p.archives(r) {
		args = append(args, a.Destination)
	}
	args = append(args,
		"--title", config.Expand(pub.Title, vars),
		"--notes", config.Expand(pub.Notes, vars),
	)
	if pub.PrereleaseFromVersion && r.Release.Prerelease() {
		args = append(args, "--prerelease")
	}
	return step.New(pub.Program, args...)
}

func (p *Pipeline) finish(_ context.Context, r *Report) error {
	p.console.Banner(fmt.Sprintf("%s %s released", p.cfg.Product, r.Release.Version))
	return nil
}

// archives returns the configured archives with release placeholders in
// their paths expanded.
func (p *Pipeline) archives(r *Report) []config.Archive {
	vars := p.vars(r)
	out := make([]config.Archive, len(p.cfg.Archives))
	for i, a := range p.cfg.Archives {
		out[i] = config.Archive{
			Name:        a.Name,
			Source:      config.Expand(a.Source, vars),
			Destination: config.Expand(a.Destination, vars),
		}
	}
	return out
}

func (p *Pipeline) vars(r *Report) map[string]string {
	return map[string]string{
		"product": p.cfg.Product,
		"version": r.Release.Version,
		"tag":     r.Release.Tag,
	}
}

// asStepFailure classifies errors from in-process backends as step failures
// so every abort carries a code from the release taxonomy.
func asStepFailure(err error, command string) error {
	if errors.GetCode(err) != errors.CodeUnknown {
		return err
	}
	return errors.WrapWithContext(err, errors.CodeStepFailed, "command failed", map[string]any{
		"command":   command,
		"exit_code": -1,
	})
}
