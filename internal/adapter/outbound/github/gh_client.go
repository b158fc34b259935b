package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"
)

const scheme = "github://"

// runFunc executes an external command in dir and returns its standard output.
type runFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// runCommand is the default runFunc. Stderr is folded into the returned error.
func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%s command failed: %s", name, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s command failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// GHClient wraps the gh CLI command for GitHub operations
type GHClient struct {
	run runFunc
}

// NewGHClient creates a new GitHub client
func NewGHClient() *GHClient {
	return &GHClient{run: runCommand}
}

// parseGitHubURL parses a github:// URL into its components
// Format: github://owner/repo/path/to/file[@ref]
func (c *GHClient) parseGitHubURL(githubURL string) (owner, repo, path, ref string, err error) {
	if !strings.HasPrefix(githubURL, scheme) {
		return "", "", "", "", fmt.Errorf("invalid GitHub URL format: %s", githubURL)
	}

	urlPath := strings.TrimPrefix(githubURL, scheme)

	// Check for ref (@branch or @tag)
	parts := strings.Split(urlPath, "@")
	if len(parts) == 2 {
		urlPath = parts[0]
		ref = parts[1]
	}

	pathParts := strings.SplitN(urlPath, "/", 3)
	if len(pathParts) < 3 {
		return "", "", "", "", fmt.Errorf("invalid GitHub URL format: expected github://owner/repo/path/to/file")
	}

	return pathParts[0], pathParts[1], pathParts[2], ref, nil
}

// parseRepoURL parses a github://owner/repo repository reference.
func parseRepoURL(githubURL string) (owner, repo string, err error) {
	if !strings.HasPrefix(githubURL, scheme) {
		return "", "", fmt.Errorf("invalid GitHub repository format: %s", githubURL)
	}
	parts := strings.Split(strings.Trim(strings.TrimPrefix(githubURL, scheme), "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repository format: expected github://owner/repo, got %s", githubURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// FetchFile retrieves a file from GitHub using the gh CLI
func (c *GHClient) FetchFile(ctx context.Context, githubURL string) ([]byte, error) {
	owner, repo, path, ref, err := c.parseGitHubURL(githubURL)
	if err != nil {
		return nil, err
	}

	if err := c.checkGHCommand(ctx); err != nil {
		return nil, err
	}

	apiPath := fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, path)
	if ref != "" {
		apiPath += "?ref=" + ref
	}

	out, err := c.run(ctx, "", "gh", "api", apiPath, "--jq", ".content")
	if err != nil {
		return nil, err
	}

	// The content is base64 encoded, decode it
	encodedContent := strings.TrimSpace(string(out))
	if encodedContent == "" {
		return nil, fmt.Errorf("empty response from GitHub")
	}

	content, err := base64.StdEncoding.DecodeString(encodedContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 content: %w", err)
	}

	return content, nil
}

// CloneRepo clones owner/repo into dir without checking out a working tree.
func (c *GHClient) CloneRepo(ctx context.Context, owner, repo, dir string) error {
	if err := c.checkGHCommand(ctx); err != nil {
		return err
	}
	if _, err := c.run(ctx, "", "gh", "repo", "clone", owner+"/"+repo, dir, "--", "--quiet", "--no-checkout"); err != nil {
		return err
	}
	return nil
}

// checkGHCommand verifies that the gh CLI is installed and authenticated
func (c *GHClient) checkGHCommand(ctx context.Context) error {
	if _, err := c.run(ctx, "", "gh", "auth", "status"); err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not found") {
			return fmt.Errorf("gh CLI is not installed. Please install it from https://cli.github.com/")
		}
		if strings.Contains(msg, "not logged in") {
			return fmt.Errorf("gh CLI is not authenticated. Please run 'gh auth login' first")
		}
		return fmt.Errorf("gh auth check failed: %w", err)
	}
	return nil
}

// IsGitHubURL checks if a URL is a GitHub URL
func IsGitHubURL(url string) bool {
	return strings.HasPrefix(url, scheme)
}
