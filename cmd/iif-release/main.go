// Command iif-release publishes a release of the Infinite Imbue Framework:
// it checks the repository, runs the smoke build, zips the distributions,
// tags and pushes the version and creates the GitHub release.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/SFSorrow1968/iif-release/config"
	"github.com/SFSorrow1968/iif-release/errors"
	"github.com/SFSorrow1968/iif-release/pipeline"
	"github.com/SFSorrow1968/iif-release/step"
	"github.com/SFSorrow1968/iif-release/vcs"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("iif-release", flag.ContinueOnError)
	fs.SetOutput(stderr)
	root := fs.String("root", ".", "repository root")
	configFile := fs.String("config", "", "configuration file (default: <root>/"+config.RepoConfigFile+")")
	backend := fs.String("vcs", "", "version-control backend: "+vcs.BackendCLI+" or "+vcs.BackendGoGit)
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return exitUsage
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).
		With("run_id", uuid.NewString())

	cfg, err := config.Load(*root, config.LoadOptions{
		ConfigFile:     *configFile,
		SkipValidation: true,
	})
	if err == nil {
		if *backend != "" {
			cfg.VCS = *backend
		}
		err = cfg.Validate()
	}
	if err != nil {
		logger.Error("configuration rejected", "code", string(errors.GetCode(err)), "error", err)
		fmt.Fprintf(stderr, "release aborted: %v\n", err)
		return exitUsage
	}
	logger.Debug("configuration loaded", "root", cfg.Root, "sources", cfg.Sources, "vcs", cfg.VCS)

	runner := step.NewRunner(cfg.Root,
		step.WithOutput(stdout, stderr),
		step.WithLogger(logger),
	)

	p := pipeline.New(cfg, runner, newClient(cfg, runner),
		pipeline.WithConsole(stdout),
		pipeline.WithLogger(logger),
	)
	if _, err := p.Run(ctx); err != nil {
		fmt.Fprintf(stderr, "release aborted: %v\n", err)
		return exitFailed
	}
	return exitOK
}

// newClient selects the version-control backend. The go-git backend opens
// the repository on first use, so the manifest is still read first.
func newClient(cfg *config.Config, runner *step.Runner) vcs.Client {
	if cfg.VCS != vcs.BackendGoGit {
		return vcs.NewCLI(runner)
	}

	opts := []vcs.GoGitOption{vcs.WithAudit(runner.Audit)}
	if auth := vcs.TokenFromEnv(); auth != nil {
		opts = append(opts, vcs.WithAuth(auth))
	}
	return vcs.OpenGoGit(cfg.Root, opts...)
}
