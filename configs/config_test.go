package configs_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/apicatalog/configs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apicatalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, configs.DefaultScanEndpointPath, cfg.ScanEndpointPath)
	assert.Equal(t, configs.DefaultOutputFormat, cfg.OutputFormat)
	assert.Equal(t, configs.DefaultSourceExtension, cfg.SourceExtension)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ":8081", cfg.AdminAddr)
	assert.Equal(t, 30*time.Second, cfg.HTTPClientTimeout)
	assert.Positive(t, cfg.Parallelism)
	assert.Empty(t, cfg.StoreDSN)
	assert.Equal(t, slog.LevelInfo, cfg.ParsedLogLevel())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
backend_url: http://file-backend:8000
backend_headers:
  Authorization: Bearer file
output:
  file: out/catalog.json
  format: openapi
scanner:
  parallelism: 3
  response_wrappers: [ResponseEntity, Mono]
work_dir: /var/tmp/scans
keep_clones: true
store_dsn: file:catalogs.db
`)
	t.Setenv("APICATALOG_CONFIG_FILE", path)
	t.Setenv("APICATALOG_BACKEND_URL", "http://env-backend:9000")
	t.Setenv("APICATALOG_PARALLELISM", "6")
	t.Setenv("APICATALOG_LOG_LEVEL", "debug")

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env-backend:9000", cfg.BackendURL)
	assert.Equal(t, 6, cfg.Parallelism)
	assert.Equal(t, map[string]string{"Authorization": "Bearer file"}, cfg.BackendHeaders)
	assert.Equal(t, "out/catalog.json", cfg.OutputFile)
	assert.Equal(t, "openapi", cfg.OutputFormat)
	assert.Equal(t, []string{"ResponseEntity", "Mono"}, cfg.ResponseWrappers)
	assert.Equal(t, "/var/tmp/scans", cfg.WorkDir)
	assert.True(t, cfg.KeepClones)
	assert.Equal(t, "file:catalogs.db", cfg.StoreDSN)
	assert.Equal(t, "/api/scan", cfg.ScanEndpointPath)
	assert.Equal(t, slog.LevelDebug, cfg.ParsedLogLevel())
}

func TestLoad_KeepClones(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		want bool
	}{
		{name: "file true", file: "keep_clones: true\n", want: true},
		{name: "env false overrides file", file: "keep_clones: true\n", env: map[string]string{"APICATALOG_KEEP_CLONES": "false"}, want: false},
		{name: "env true overrides file", file: "keep_clones: false\n", env: map[string]string{"APICATALOG_KEEP_CLONES": "true"}, want: true},
		{name: "file silent", file: "work_dir: /tmp\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APICATALOG_CONFIG_FILE", writeConfig(t, tt.file))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := configs.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.KeepClones)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{
			name:    "missing config file",
			env:     map[string]string{"APICATALOG_CONFIG_FILE": "/nonexistent/apicatalog.yaml"},
			wantErr: "failed to load config file",
		},
		{
			name:    "malformed yaml",
			file:    "output: [unclosed",
			wantErr: "failed to unmarshal config file",
		},
		{
			name:    "unknown output format",
			env:     map[string]string{"APICATALOG_OUTPUT_FORMAT": "xml"},
			wantErr: "invalid configuration",
		},
		{
			name:    "backend url not a url",
			env:     map[string]string{"APICATALOG_BACKEND_URL": "not a url"},
			wantErr: "invalid configuration",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"APICATALOG_SHUTDOWN_TIMEOUT": "soon"},
			wantErr: "failed to process environment variables",
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"APICATALOG_LOG_LEVEL": "verbose"},
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.file != "" {
				t.Setenv("APICATALOG_CONFIG_FILE", writeConfig(t, tt.file))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := configs.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParsedLogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	} {
		cfg := configs.Config{LogLevel: level}
		assert.Equal(t, want, cfg.ParsedLogLevel(), level)
	}
}
