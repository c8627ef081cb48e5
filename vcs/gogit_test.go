package vcs_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFSorrow1968/iif-release/vcs"
)

// testRepo is an in-memory repository with one commit on "main".
type testRepo struct {
	fs       billy.Filesystem
	repo     *git.Repository
	worktree *git.Worktree
	audit    []string
	client   *vcs.GoGit
}

func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()

	fs := memfs.New()
	dot, err := fs.Chroot(git.GitDirName)
	require.NoError(t, err)
	storage := filesystem.NewStorage(dot, cache.NewObjectLRUDefault())

	repo, err := git.InitWithOptions(storage, fs, git.InitOptions{
		DefaultBranch: plumbing.NewBranchReferenceName("main"),
	})
	require.NoError(t, err, "failed to initialize test repository")

	wt, err := repo.Worktree()
	require.NoError(t, err)

	tr := &testRepo{fs: fs, repo: repo, worktree: wt}
	tr.writeFile(t, "manifest.json", `{"ModVersion": "2.3.0"}`)
	tr.commitAll(t, "Initial commit")

	tr.client = vcs.OpenGoGitFS(fs, vcs.WithAudit(func(line string) {
		tr.audit = append(tr.audit, line)
	}))
	return tr
}

func (tr *testRepo) writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(tr.fs, name, []byte(content), 0o644))
}

func (tr *testRepo) commitAll(t *testing.T, msg string) {
	t.Helper()
	_, err := tr.worktree.Add(".")
	require.NoError(t, err)
	_, err = tr.worktree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Release Bot", Email: "release@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func (tr *testRepo) checkoutNew(t *testing.T, branch string) {
	t.Helper()
	require.NoError(t, tr.worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: true,
	}))
}

func TestGoGitCurrentBranch(t *testing.T) {
	tr := setupTestRepo(t)
	ctx := context.Background()

	branch, err := tr.client.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	tr.checkoutNew(t, "release/2.3.0")
	branch, err = tr.client.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "release/2.3.0", branch)
}

func TestGoGitCurrentBranchDetached(t *testing.T) {
	tr := setupTestRepo(t)

	head, err := tr.repo.Head()
	require.NoError(t, err)
	require.NoError(t, tr.worktree.Checkout(&git.CheckoutOptions{Hash: head.Hash()}))

	branch, err := tr.client.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestGoGitStatus(t *testing.T) {
	tr := setupTestRepo(t)
	ctx := context.Background()

	lines, err := tr.client.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)

	tr.writeFile(t, "manifest.json", `{"ModVersion": "2.4.0"}`)
	tr.writeFile(t, "notes.txt", "scratch")

	lines, err = tr.client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{" M manifest.json", "?? notes.txt"}, lines)
}

func TestGoGitTags(t *testing.T) {
	tr := setupTestRepo(t)
	ctx := context.Background()

	exists, err := tr.client.TagExists(ctx, "v2.3.0")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, tr.client.CreateTag(ctx, "v2.3.0"))

	exists, err = tr.client.TagExists(ctx, "v2.3.0")
	require.NoError(t, err)
	assert.True(t, exists)

	ref, err := tr.repo.Reference(plumbing.NewTagReferenceName("v2.3.0"), true)
	require.NoError(t, err)
	head, err := tr.repo.Head()
	require.NoError(t, err)
	assert.Equal(t, head.Hash(), ref.Hash(), "tag points at HEAD")

	err = tr.client.CreateTag(ctx, "v2.3.0")
	assert.ErrorIs(t, err, vcs.ErrTagExists)

	assert.Equal(t, []string{"git tag v2.3.0", "git tag v2.3.0"}, tr.audit)
}

func TestGoGitTagExistsIsExact(t *testing.T) {
	tr := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, tr.client.CreateTag(ctx, "v2.3.0.1"))

	exists, err := tr.client.TagExists(ctx, "v2.3.0")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGoGitPushTagMissingRemote(t *testing.T) {
	tr := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, tr.client.CreateTag(ctx, "v2.3.0"))

	err := tr.client.PushTag(ctx, "", "v2.3.0")
	assert.ErrorIs(t, err, vcs.ErrRemoteMissing)
	assert.Equal(t, "git push origin v2.3.0", tr.audit[len(tr.audit)-1])
}

func TestGoGitEmptyTagName(t *testing.T) {
	tr := setupTestRepo(t)
	ctx := context.Background()

	_, err := tr.client.TagExists(ctx, "")
	assert.ErrorIs(t, err, vcs.ErrInvalidRef)
	assert.ErrorIs(t, tr.client.CreateTag(ctx, ""), vcs.ErrInvalidRef)
	assert.ErrorIs(t, tr.client.PushTag(ctx, "origin", ""), vcs.ErrInvalidRef)
}

func TestOpenGoGitDefersUntilFirstUse(t *testing.T) {
	client := vcs.OpenGoGit(t.TempDir())
	ctx := context.Background()

	_, err := client.CurrentBranch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, git.ErrRepositoryNotExists)

	_, err = client.Status(ctx)
	assert.ErrorIs(t, err, git.ErrRepositoryNotExists)
}

func TestGoGitMissingHEADKeepsCause(t *testing.T) {
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.RemoveReference(plumbing.HEAD))

	var audit []string
	client := vcs.NewGoGit(repo, vcs.WithAudit(func(line string) { audit = append(audit, line) }))
	ctx := context.Background()

	_, err = client.CurrentBranch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, vcs.ErrResolveFailed)
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)

	err = client.CreateTag(ctx, "v2.3.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, vcs.ErrResolveFailed)
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
	assert.Equal(t, []string{"git tag v2.3.0"}, audit)
}
