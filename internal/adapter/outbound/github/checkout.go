package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/i2y/apicatalog/internal/usecase"
)

// Fetcher checks repositories out at a given commit into a scratch directory.
// github://owner/repo references are cloned through the gh CLI, everything
// else is handed to git clone.
type Fetcher struct {
	ghClient *GHClient
	run      runFunc
	workDir  string
	keep     bool
	logger   *slog.Logger
}

// NewFetcher creates a new repository fetcher. Checkouts are created under
// workDir (the system temp dir when empty) and kept after use when keep is set.
func NewFetcher(workDir string, keep bool, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		ghClient: NewGHClient(),
		run:      runCommand,
		workDir:  workDir,
		keep:     keep,
		logger:   logger.With("component", "github_fetcher"),
	}
}

// Checkout implements usecase.RepoFetcher.
func (f *Fetcher) Checkout(ctx context.Context, repoURL, commit string) (usecase.Checkout, error) {
	log := f.logger.With(slog.String("repo_url", repoURL), slog.String("commit", commit))
	if strings.HasPrefix(commit, "-") {
		return usecase.Checkout{}, fmt.Errorf("invalid commit %q", commit)
	}

	dir, err := os.MkdirTemp(f.workDir, "apicatalog-*")
	if err != nil {
		return usecase.Checkout{}, fmt.Errorf("failed to create checkout directory: %w", err)
	}
	cleanup := func() error {
		if f.keep {
			log.Info("Keeping checkout", slog.String("dir", dir))
			return nil
		}
		return os.RemoveAll(dir)
	}

	if err := f.clone(ctx, repoURL, dir); err != nil {
		log.Error("Failed to clone repository", slog.Any("error", err))
		return usecase.Checkout{}, errors.Join(fmt.Errorf("failed to clone %s: %w", repoURL, err), os.RemoveAll(dir))
	}
	if _, err := f.run(ctx, dir, "git", "-c", "advice.detachedHead=false", "checkout", "--quiet", commit); err != nil {
		log.Error("Failed to check out commit", slog.Any("error", err))
		return usecase.Checkout{}, errors.Join(fmt.Errorf("failed to check out %s: %w", commit, err), os.RemoveAll(dir))
	}

	log.Debug("Checked out repository", slog.String("dir", dir))
	return usecase.Checkout{Dir: dir, Cleanup: cleanup}, nil
}

func (f *Fetcher) clone(ctx context.Context, repoURL, dir string) error {
	if IsGitHubURL(repoURL) {
		owner, repo, err := parseRepoURL(repoURL)
		if err != nil {
			return err
		}
		return f.ghClient.CloneRepo(ctx, owner, repo, dir)
	}
	if strings.HasPrefix(repoURL, "-") {
		return fmt.Errorf("invalid repository URL %q", repoURL)
	}
	_, err := f.run(ctx, "", "git", "clone", "--quiet", "--no-checkout", repoURL, dir)
	return err
}

// LoadGitHubConfig loads a configuration file from GitHub
func LoadGitHubConfig(githubURL string) ([]byte, error) {
	if !IsGitHubURL(githubURL) {
		return nil, fmt.Errorf("not a GitHub URL: %s", githubURL)
	}

	content, err := NewGHClient().FetchFile(context.Background(), githubURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config from GitHub: %w", err)
	}

	return content, nil
}

// LoadConfigFromGitHubOrFile loads configuration from either a GitHub URL or local file
func LoadConfigFromGitHubOrFile(path string) (io.ReadCloser, error) {
	if IsGitHubURL(path) {
		content, err := LoadGitHubConfig(path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(strings.NewReader(string(content))), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return file, nil
}
