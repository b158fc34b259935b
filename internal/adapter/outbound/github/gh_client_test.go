package github

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		expectedOwner string
		expectedRepo  string
		expectedPath  string
		expectedRef   string
		expectError   bool
	}{
		{
			name:          "simple github URL",
			url:           "github://owner/repo/path/to/file.yaml",
			expectedOwner: "owner",
			expectedRepo:  "repo",
			expectedPath:  "path/to/file.yaml",
			expectedRef:   "",
			expectError:   false,
		},
		{
			name:          "github URL with ref",
			url:           "github://owner/repo/path/to/file.yaml@v1.0",
			expectedOwner: "owner",
			expectedRepo:  "repo",
			expectedPath:  "path/to/file.yaml",
			expectedRef:   "v1.0",
			expectError:   false,
		},
		{
			name:          "github URL with branch ref",
			url:           "github://microsoft/api-guidelines/graph/openapi.yaml@main",
			expectedOwner: "microsoft",
			expectedRepo:  "api-guidelines",
			expectedPath:  "graph/openapi.yaml",
			expectedRef:   "main",
			expectError:   false,
		},
		{
			name:        "invalid URL - not github",
			url:         "https://github.com/owner/repo/file.yaml",
			expectError: true,
		},
		{
			name:        "invalid URL - missing path",
			url:         "github://owner/repo",
			expectError: true,
		},
		{
			name:        "invalid URL - missing repo",
			url:         "github://owner",
			expectError: true,
		},
	}

	client := NewGHClient()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, path, ref, err := client.parseGitHubURL(tt.url)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedOwner, owner)
				assert.Equal(t, tt.expectedRepo, repo)
				assert.Equal(t, tt.expectedPath, path)
				assert.Equal(t, tt.expectedRef, ref)
			}
		})
	}
}

func TestIsGitHubURL(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"github://owner/repo/file.yaml", true},
		{"github://owner/repo/file.yaml@v1.0", true},
		{"https://github.com/owner/repo/file.yaml", false},
		{"http://example.com/api.yaml", false},
		{"file:///local/path/api.yaml", false},
		{"grpc://server:50051", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			result := IsGitHubURL(tt.url)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{url: "github://acme/shop", wantOwner: "acme", wantRepo: "shop"},
		{url: "github://acme/shop.git/", wantOwner: "acme", wantRepo: "shop"},
		{url: "github://acme", wantErr: true},
		{url: "github://acme/shop/extra", wantErr: true},
		{url: "https://github.com/acme/shop", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, err := parseRepoURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.wantRepo, repo)
		})
	}
}

func TestFetchFile_DecodesContent(t *testing.T) {
	var calls [][]string
	client := &GHClient{run: func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		if args[0] == "auth" {
			return nil, nil
		}
		return []byte(base64.StdEncoding.EncodeToString([]byte("log_level: debug\n")) + "\n"), nil
	}}

	content, err := client.FetchFile(context.Background(), "github://acme/ops/apicatalog.yaml@main")
	assert.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(content))
	assert.Equal(t, []string{"gh", "api", "repos/acme/ops/contents/apicatalog.yaml?ref=main", "--jq", ".content"}, calls[1])
}

func TestCheckGHCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runErr  error
		wantMsg string
	}{
		{name: "not installed", runErr: errors.New("exec: \"gh\": executable file not found in $PATH"), wantMsg: "gh CLI is not installed"},
		{name: "not logged in", runErr: errors.New("gh command failed: You are not logged into any GitHub hosts. not logged in"), wantMsg: "gh CLI is not authenticated"},
		{name: "other", runErr: errors.New("boom"), wantMsg: "gh auth check failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &GHClient{run: func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
				return nil, tt.runErr
			}}
			err := client.checkGHCommand(context.Background())
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

// Integration test - requires gh CLI to be installed and authenticated
func TestFetchFile_Integration(t *testing.T) {
	client := NewGHClient()
	if err := client.checkGHCommand(context.Background()); err != nil {
		t.Skip("Skipping integration test: gh CLI not available or not authenticated")
	}

	content, err := client.FetchFile(context.Background(), "github://github/gitignore/Go.gitignore")

	assert.NoError(t, err)
	assert.NotEmpty(t, content)
	assert.Contains(t, string(content), "# Binaries for programs and plugins")
}
