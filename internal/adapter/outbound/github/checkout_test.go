package github

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	dir  string
	args []string
}

func fakeFetcher(t *testing.T, keep bool, fail func(args []string) error) (*Fetcher, *[]recordedCall) {
	var calls []recordedCall
	run := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		full := append([]string{name}, args...)
		calls = append(calls, recordedCall{dir: dir, args: full})
		if fail != nil {
			return nil, fail(full)
		}
		return nil, nil
	}
	f := NewFetcher(t.TempDir(), keep, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.run = run
	f.ghClient = &GHClient{run: run}
	return f, &calls
}

func TestFetcher_Checkout_Git(t *testing.T) {
	f, calls := fakeFetcher(t, false, nil)

	co, err := f.Checkout(context.Background(), "https://example.com/acme/shop.git", "abc123")
	require.NoError(t, err)
	assert.DirExists(t, co.Dir)
	assert.True(t, strings.HasPrefix(co.Dir, f.workDir))

	require.Len(t, *calls, 2)
	assert.Equal(t, []string{"git", "clone", "--quiet", "--no-checkout", "https://example.com/acme/shop.git", co.Dir}, (*calls)[0].args)
	assert.Equal(t, []string{"git", "-c", "advice.detachedHead=false", "checkout", "--quiet", "abc123"}, (*calls)[1].args)
	assert.Equal(t, co.Dir, (*calls)[1].dir)

	require.NoError(t, co.Cleanup())
	assert.NoDirExists(t, co.Dir)
}

func TestFetcher_Checkout_GitHubShorthand(t *testing.T) {
	f, calls := fakeFetcher(t, true, nil)

	co, err := f.Checkout(context.Background(), "github://acme/shop", "v1.0.0")
	require.NoError(t, err)

	require.Len(t, *calls, 3)
	assert.Equal(t, []string{"gh", "auth", "status"}, (*calls)[0].args)
	assert.Equal(t, []string{"gh", "repo", "clone", "acme/shop", co.Dir, "--", "--quiet", "--no-checkout"}, (*calls)[1].args)

	// keep leaves the working copy in place.
	require.NoError(t, co.Cleanup())
	assert.DirExists(t, co.Dir)
}

func TestFetcher_Checkout_Failures(t *testing.T) {
	tests := []struct {
		name    string
		repoURL string
		commit  string
		fail    func(args []string) error
		wantErr string
	}{
		{
			name:    "clone fails",
			repoURL: "https://example.com/missing.git",
			commit:  "abc",
			fail: func(args []string) error {
				return errors.New("git command failed: repository not found")
			},
			wantErr: "failed to clone https://example.com/missing.git: git command failed: repository not found",
		},
		{
			name:    "unknown commit",
			repoURL: "https://example.com/shop.git",
			commit:  "deadbeef",
			fail: func(args []string) error {
				if args[1] == "clone" {
					return nil
				}
				return errors.New("git command failed: pathspec 'deadbeef' did not match")
			},
			wantErr: "failed to check out deadbeef",
		},
		{
			name:    "bad shorthand",
			repoURL: "github://acme",
			commit:  "abc",
			wantErr: "invalid GitHub repository format",
		},
		{
			name:    "option-like commit",
			repoURL: "https://example.com/shop.git",
			commit:  "--orphan",
			wantErr: `invalid commit "--orphan"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _ := fakeFetcher(t, false, tt.fail)
			_, err := f.Checkout(context.Background(), tt.repoURL, tt.commit)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			entries, err := os.ReadDir(f.workDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "failed checkouts must not leave directories behind")
		})
	}
}

// Integration test - requires git to be installed
func TestFetcher_Checkout_LocalRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("Skipping integration test: git not available")
	}

	src := t.TempDir()
	git := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = src
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
		return strings.TrimSpace(string(out))
	}
	git("init", "--quiet")
	require.NoError(t, os.WriteFile(filepath.Join(src, "Api.java"), []byte("class Api {}"), 0o644))
	git("add", ".")
	git("commit", "--quiet", "-m", "first")
	first := git("rev-parse", "HEAD")
	require.NoError(t, os.WriteFile(filepath.Join(src, "Api.java"), []byte("class Api { int x; }"), 0o644))
	git("commit", "--quiet", "-am", "second")

	f := NewFetcher(t.TempDir(), false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	co, err := f.Checkout(context.Background(), src, first)
	require.NoError(t, err)
	defer co.Cleanup()

	content, err := os.ReadFile(filepath.Join(co.Dir, "Api.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Api {}", string(content))
}
