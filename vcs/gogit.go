package vcs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// DefaultStorerCacheSize is the default size for the LRU object cache.
const DefaultStorerCacheSize = 1000

// GoGit implements Client in-process with go-git. It is selected with the
// "go-git" backend and needs no git binary on PATH.
type GoGit struct {
	open    func() (*git.Repository, error)
	once    sync.Once
	repo    *git.Repository
	openErr error

	auth  AuthProvider
	audit func(line string)
}

// GoGitOption configures a GoGit backend.
type GoGitOption func(*GoGit)

// WithAuth sets the provider used to authenticate pushes.
func WithAuth(p AuthProvider) GoGitOption {
	return func(g *GoGit) { g.auth = p }
}

// WithAudit sets the sink for audit lines of mutating operations.
func WithAudit(fn func(line string)) GoGitOption {
	return func(g *GoGit) { g.audit = fn }
}

// OpenGoGit returns a backend for the non-bare repository whose worktree is
// root. Nothing is read until the first operation, so a missing repository
// surfaces from CurrentBranch.
func OpenGoGit(root string, opts ...GoGitOption) *GoGit {
	return OpenGoGitFS(osfs.New(root), opts...)
}

// OpenGoGitFS is OpenGoGit for a worktree on fsys.
func OpenGoGitFS(fsys billy.Filesystem, opts ...GoGitOption) *GoGit {
	return newGoGit(func() (*git.Repository, error) { return openFS(fsys) }, opts)
}

// NewGoGit wraps an already opened repository.
func NewGoGit(repo *git.Repository, opts ...GoGitOption) *GoGit {
	return newGoGit(func() (*git.Repository, error) { return repo, nil }, opts)
}

func newGoGit(open func() (*git.Repository, error), opts []GoGitOption) *GoGit {
	g := &GoGit{
		open:  open,
		audit: func(string) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func openFS(fsys billy.Filesystem) (*git.Repository, error) {
	dotGitFS, err := fsys.Chroot(git.GitDirName)
	if err != nil {
		return nil, fmt.Errorf("failed to access .git directory: %w", err)
	}
	storage := filesystem.NewStorage(dotGitFS, cache.NewObjectLRU(cache.FileSize(DefaultStorerCacheSize)))

	repo, err := git.Open(storage, fsys)
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}
	return repo, nil
}

// repository opens the repository once and returns the cached result.
func (g *GoGit) repository() (*git.Repository, error) {
	g.once.Do(func() {
		g.repo, g.openErr = g.open()
	})
	return g.repo, g.openErr
}

// CurrentBranch implements Client. HEAD is read without resolving it so an
// unborn branch (no commits yet) still reports its name.
func (g *GoGit) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}

	repo, err := g.repository()
	if err != nil {
		return "", err
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w: %w", ErrResolveFailed, err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		// Detached HEAD.
		return "", nil
	}
	return head.Target().Short(), nil
}

// Status implements Client. Lines use the porcelain v1 layout "XY path".
func (g *GoGit) Status(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError(err, "context cancelled")
	}

	repo, err := g.repository()
	if err != nil {
		return nil, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree")
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree status")
	}

	paths := make([]string, 0, len(status))
	for path, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	lines := make([]string, 0, len(paths))
	for _, path := range paths {
		fs := status[path]
		lines = append(lines, fmt.Sprintf("%c%c %s", fs.Staging, fs.Worktree, path))
	}
	return lines, nil
}

// TagExists implements Client.
func (g *GoGit) TagExists(ctx context.Context, tag string) (bool, error) {
	if tag == "" {
		return false, WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return false, WrapError(err, "context cancelled")
	}

	repo, err := g.repository()
	if err != nil {
		return false, err
	}

	_, err = repo.Reference(plumbing.NewTagReferenceName(tag), false)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return false, nil
	default:
		return false, WrapErrorf(err, "failed to look up tag %q", tag)
	}
}

// CreateTag implements Client.
func (g *GoGit) CreateTag(ctx context.Context, tag string) error {
	if tag == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return WrapError(err, "context cancelled")
	}

	repo, err := g.repository()
	if err != nil {
		return err
	}

	g.audit("git tag " + tag)

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w: %w", ErrResolveFailed, err)
	}
	if _, err := repo.CreateTag(tag, head.Hash(), nil); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return WrapErrorf(ErrTagExists, "tag %q", tag)
		}
		return WrapError(err, "failed to create lightweight tag")
	}
	return nil
}

// PushTag implements Client. A tag the remote already has is not an error.
func (g *GoGit) PushTag(ctx context.Context, remote, tag string) error {
	if tag == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}
	if remote == "" {
		remote = DefaultRemoteName
	}

	repo, err := g.repository()
	if err != nil {
		return err
	}

	g.audit(fmt.Sprintf("git push %s %s", remote, tag))

	r, err := repo.Remote(remote)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return WrapErrorf(ErrRemoteMissing, "remote %q", remote)
		}
		return WrapError(err, "failed to get remote configuration")
	}

	ref := plumbing.NewTagReferenceName(tag)
	pushOpts := &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("%s:%s", ref, ref))},
	}

	if g.auth != nil && len(r.Config().URLs) > 0 {
		method, authErr := g.auth.Method(r.Config().URLs[0])
		if authErr != nil {
			return WrapError(authErr, "failed to get authentication method")
		}
		pushOpts.Auth = method
	}

	err = repo.PushContext(ctx, pushOpts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return WrapErrorf(err, "failed to push tag %q to %q", tag, remote)
	}
	return nil
}
