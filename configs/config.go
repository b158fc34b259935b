package configs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/i2y/apicatalog/internal/adapter/outbound/github"
)

const envPrefix = "apicatalog"

// Defaults applied after environment and file values are merged.
const (
	DefaultScanEndpointPath = "/api/scan"
	DefaultOutputFormat     = "endpoints"
	DefaultSourceExtension  = ".java"
)

// OutputConfig selects the local file a catalog is written to.
type OutputConfig struct {
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// ScannerConfig tunes how sources are turned into endpoints.
type ScannerConfig struct {
	Extension         string   `yaml:"extension"`
	Parallelism       int      `yaml:"parallelism"`
	ResponseWrappers  []string `yaml:"response_wrappers"`
	ControllerMarkers []string `yaml:"controller_markers"`
}

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	BackendURL       string            `yaml:"backend_url"`
	ScanEndpointPath string            `yaml:"scan_endpoint_path"`
	BackendHeaders   map[string]string `yaml:"backend_headers"`
	Output           OutputConfig      `yaml:"output"`
	Scanner          ScannerConfig     `yaml:"scanner"`
	WorkDir          string            `yaml:"work_dir"`
	KeepClones       *bool             `yaml:"keep_clones"`
	StoreDSN         string            `yaml:"store_dsn"`
}

// Config holds the final application configuration, merged from file and environment variables.
// Fields are loaded from environment variables with the prefix "APICATALOG_"; environment
// values take precedence over file values.
type Config struct {
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// Delivery
	BackendURL       string            `envconfig:"BACKEND_URL" validate:"omitempty,url"`
	ScanEndpointPath string            `envconfig:"SCAN_ENDPOINT_PATH" validate:"omitempty,startswith=/"`
	BackendHeaders   map[string]string `envconfig:"BACKEND_HEADERS"`
	OutputFile       string            `envconfig:"OUTPUT_FILE"`
	OutputFormat     string            `envconfig:"OUTPUT_FORMAT" validate:"omitempty,oneof=endpoints envelope openapi"`

	// Acquisition and scanning
	WorkDir           string   `envconfig:"WORK_DIR"`
	KeepClones        bool     `envconfig:"KEEP_CLONES"`
	SourceExtension   string   `envconfig:"SOURCE_EXTENSION" validate:"omitempty,startswith=."`
	Parallelism       int      `envconfig:"PARALLELISM" validate:"gte=0,lte=256"`
	ResponseWrappers  []string `envconfig:"RESPONSE_WRAPPERS"`
	ControllerMarkers []string `envconfig:"CONTROLLER_MARKERS"`

	// Storage. An empty DSN keeps catalogs in memory.
	StoreDSN string `envconfig:"STORE_DSN"`

	// Servers
	ListenAddr         string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AdminAddr          string        `envconfig:"ADMIN_ADDR" default:":8081"`
	HTTPClientTimeout  time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10m"`
	ServerIdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`

	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load reads an optional .env file, processes environment variables, merges the
// YAML file named by APICATALOG_CONFIG_FILE (a path or a github:// URL) underneath
// them, applies defaults and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file.")
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if cfg.ConfigFilePath != "" {
		fileCfg, err := readFileConfig(cfg.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		cfg.merge(fileCfg)
		slog.Info("Loaded configuration file.", "path", cfg.ConfigFilePath)
	}

	cfg.applyDefaults()
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func readFileConfig(path string) (FileConfig, error) {
	rc, err := github.LoadConfigFromGitHubOrFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to load config file '%s': %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var fileCfg FileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to unmarshal config file '%s': %w", path, err)
	}
	return fileCfg, nil
}

// merge fills every field the environment left unset from the file.
func (c *Config) merge(f FileConfig) {
	setString(&c.BackendURL, f.BackendURL)
	setString(&c.ScanEndpointPath, f.ScanEndpointPath)
	setString(&c.OutputFile, f.Output.File)
	setString(&c.OutputFormat, f.Output.Format)
	setString(&c.WorkDir, f.WorkDir)
	setString(&c.SourceExtension, f.Scanner.Extension)
	setString(&c.StoreDSN, f.StoreDSN)
	if c.BackendHeaders == nil {
		c.BackendHeaders = f.BackendHeaders
	}
	if c.Parallelism == 0 {
		c.Parallelism = f.Scanner.Parallelism
	}
	if len(c.ResponseWrappers) == 0 {
		c.ResponseWrappers = f.Scanner.ResponseWrappers
	}
	if len(c.ControllerMarkers) == 0 {
		c.ControllerMarkers = f.Scanner.ControllerMarkers
	}
	// An explicit false in the environment still overrides the file.
	if _, set := os.LookupEnv(strings.ToUpper(envPrefix) + "_KEEP_CLONES"); !set && f.KeepClones != nil {
		c.KeepClones = *f.KeepClones
	}
}

func (c *Config) applyDefaults() {
	setString(&c.ScanEndpointPath, DefaultScanEndpointPath)
	setString(&c.OutputFormat, DefaultOutputFormat)
	setString(&c.SourceExtension, DefaultSourceExtension)
	if c.Parallelism == 0 {
		c.Parallelism = min(runtime.GOMAXPROCS(0), 256)
	}
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
