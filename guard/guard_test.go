package guard_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SFSorrow1968/iif-release/errors"
	"github.com/SFSorrow1968/iif-release/guard"
)

// mockClient implements vcs.Client with func fields.
type mockClient struct {
	CurrentBranchFunc func(ctx context.Context) (string, error)
	StatusFunc        func(ctx context.Context) ([]string, error)
	StatusCalls       int
}

func (m *mockClient) CurrentBranch(ctx context.Context) (string, error) {
	return m.CurrentBranchFunc(ctx)
}

func (m *mockClient) Status(ctx context.Context) ([]string, error) {
	m.StatusCalls++
	if m.StatusFunc == nil {
		return nil, nil
	}
	return m.StatusFunc(ctx)
}

func (m *mockClient) TagExists(context.Context, string) (bool, error) { return false, nil }
func (m *mockClient) CreateTag(context.Context, string) error         { return nil }
func (m *mockClient) PushTag(context.Context, string, string) error   { return nil }

func onBranch(branch string, status ...string) *mockClient {
	return &mockClient{
		CurrentBranchFunc: func(context.Context) (string, error) { return branch, nil },
		StatusFunc:        func(context.Context) ([]string, error) { return status, nil },
	}
}

func TestProtectedBranches(t *testing.T) {
	for _, branch := range []string{"main", "master"} {
		t.Run(branch, func(t *testing.T) {
			client := onBranch(branch, " M dirty.cs")

			err := guard.RequireCleanNonMainGitState(context.Background(), client)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrProtectedBranch)
			assert.Contains(t, err.Error(), branch)
			assert.Zero(t, client.StatusCalls, "branch check must precede the status check")
		})
	}
}

func TestNonProtectedBranchesPass(t *testing.T) {
	for _, branch := range []string{"release/2.3.0", "feature/imbue", "Main", "MASTER", "main2", "mainline", "trunk", ""} {
		t.Run(branch, func(t *testing.T) {
			err := guard.RequireCleanNonMainGitState(context.Background(), onBranch(branch))
			assert.NoError(t, err)
		})
	}
}

func TestIsProtected(t *testing.T) {
	assert.True(t, guard.IsProtected("main"))
	assert.True(t, guard.IsProtected("master"))
	assert.False(t, guard.IsProtected("Main"))
	assert.False(t, guard.IsProtected("release/main"))
}

func TestDirtyWorkingTree(t *testing.T) {
	tests := []struct {
		name     string
		status   []string
		contains []string
	}{
		{name: "one modified file", status: []string{" M Core/IIFModule.cs"}, contains: []string{"Core/IIFModule.cs"}},
		{name: "untracked file", status: []string{"?? scratch.txt"}, contains: []string{"scratch.txt"}},
		{name: "staged file", status: []string{"A  Core/New.cs"}, contains: []string{"Core/New.cs"}},
		{
			name:     "many files are summarized",
			status:   []string{" M a", " M b", " M c", " M d", " M e", " M f", " M g"},
			contains: []string{"a, b, c, d, e", "and 2 more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.RequireCleanNonMainGitState(context.Background(), onBranch("release/2.3.0", tt.status...))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrDirtyWorkingTree)
			for _, want := range tt.contains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestNotARepository(t *testing.T) {
	cause := stderrors.New("fatal: not a git repository (or any of the parent directories): .git")
	client := &mockClient{
		CurrentBranchFunc: func(context.Context) (string, error) { return "", cause },
	}

	err := guard.RequireCleanNonMainGitState(context.Background(), client)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotARepository)
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, client.StatusCalls)
}

func TestStatusFailurePropagates(t *testing.T) {
	cause := stderrors.New("status failed")
	client := &mockClient{
		CurrentBranchFunc: func(context.Context) (string, error) { return "release/2.3.0", nil },
		StatusFunc:        func(context.Context) ([]string, error) { return nil, cause },
	}

	err := guard.RequireCleanNonMainGitState(context.Background(), client)
	assert.ErrorIs(t, err, cause)
}
