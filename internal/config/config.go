// Package config loads the formscan configuration from flags and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeBatch  = "batch"
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultLanguage    = "eng"
	DefaultDPI         = 300
	DefaultWorkers     = 1

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form scanning service
type Config struct {
	// Execution mode: "batch" processes an archive, "stdio" serves the
	// extraction tools over MCP, "server" is reserved for HTTP serving.
	Mode string

	// Storage configuration. BucketURL selects the COS backend; StorageDir
	// selects the local-directory backend. Exactly one is used.
	BucketURL  string
	StorageDir string

	// Batch configuration
	ArchiveKey   string // object key of the zip containing the scanned forms
	ManifestPath string // local manifest CSV; empty means the archive's .csv entry
	OutputPath   string // result JSON destination; empty means stdout

	// OCR configuration
	TessdataKey string // object key of the traineddata blob, optional
	TessdataDir string
	Language    string
	DPI         int

	// Application configuration
	Workers     int
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:        ModeBatch,
		Language:    DefaultLanguage,
		DPI:         DefaultDPI,
		Workers:     DefaultWorkers,
		Version:     "1.0.0",
		ServerName:  "formscan",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.StorageDir, &cfg.ManifestPath, &cfg.TessdataDir} {
		if *p != "" {
			if expandedPath, err := filepath.Abs(*p); err == nil {
				*p = expandedPath
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("FORMSCAN")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("bucket", cfg.BucketURL)
	viper.SetDefault("dir", cfg.StorageDir)
	viper.SetDefault("archive", cfg.ArchiveKey)
	viper.SetDefault("manifest", cfg.ManifestPath)
	viper.SetDefault("output", cfg.OutputPath)
	viper.SetDefault("tessdatakey", cfg.TessdataKey)
	viper.SetDefault("tessdatadir", cfg.TessdataDir)
	viper.SetDefault("lang", cfg.Language)
	viper.SetDefault("dpi", cfg.DPI)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Execution mode: 'batch' to process an archive, 'stdio' for MCP standard I/O")
	pflag.String("bucket", cfg.BucketURL, "Object storage bucket URL (COS backend)")
	pflag.String("dir", cfg.StorageDir, "Local storage directory (offline backend)")
	pflag.String("archive", cfg.ArchiveKey, "Object key of the zip archive with scanned forms")
	pflag.String("manifest", cfg.ManifestPath, "Path to the manifest CSV (defaults to the archive's .csv entry)")
	pflag.String("output", cfg.OutputPath, "Result JSON file (defaults to stdout)")
	pflag.String("tessdatakey", cfg.TessdataKey, "Object key of the Tesseract traineddata blob")
	pflag.String("tessdatadir", cfg.TessdataDir, "Directory holding Tesseract training data")
	pflag.String("lang", cfg.Language, "Tesseract language code")
	pflag.Int("dpi", cfg.DPI, "Page render resolution in DPI")
	pflag.Int("workers", cfg.Workers, "Number of concurrent records (1 = sequential)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "bucket", "dir", "archive", "manifest", "output",
		"tessdatakey", "tessdatadir", "lang", "dpi", "workers",
		"loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nFormScan - Structured field extraction from scanned correction-request forms\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --bucket=https://forms.cos.region.myqcloud.com --archive=batches/today.zip\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/data/batches --archive=today.zip --output=fields.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio                           # MCP tool server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FORMSCAN_MODE         Execution mode\n")
		fmt.Fprintf(os.Stderr, "  FORMSCAN_BUCKET       Bucket URL\n")
		fmt.Fprintf(os.Stderr, "  FORMSCAN_DIR          Local storage directory\n")
		fmt.Fprintf(os.Stderr, "  FORMSCAN_ARCHIVE      Archive object key\n")
		fmt.Fprintf(os.Stderr, "  FORMSCAN_LANG         Tesseract language\n")
		fmt.Fprintf(os.Stderr, "  FORMSCAN_WORKERS      Concurrent records\n")
		fmt.Fprintf(os.Stderr, "  COS_SECRETID          COS credential ID\n")
		fmt.Fprintf(os.Stderr, "  COS_SECRETKEY         COS credential key\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.BucketURL = viper.GetString("bucket")
	cfg.StorageDir = viper.GetString("dir")
	cfg.ArchiveKey = viper.GetString("archive")
	cfg.ManifestPath = viper.GetString("manifest")
	cfg.OutputPath = viper.GetString("output")
	cfg.TessdataKey = viper.GetString("tessdatakey")
	cfg.TessdataDir = viper.GetString("tessdatadir")
	cfg.Language = viper.GetString("lang")
	cfg.DPI = viper.GetInt("dpi")
	cfg.Workers = viper.GetInt("workers")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeBatch && c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be one of 'batch', 'stdio' or 'server'")
	}

	if c.IsBatchMode() {
		if c.ArchiveKey == "" {
			return errors.New("archive key cannot be empty in batch mode")
		}
		if c.BucketURL == "" && c.StorageDir == "" {
			return errors.New("either a bucket URL or a storage directory is required in batch mode")
		}
		if c.BucketURL != "" && c.StorageDir != "" {
			return errors.New("bucket URL and storage directory are mutually exclusive")
		}
	}

	if c.Language == "" {
		return errors.New("language cannot be empty")
	}

	if c.DPI < 72 || c.DPI > 1200 {
		return errors.New("dpi must be between 72 and 1200")
	}

	if c.Workers < 1 || c.Workers > 64 {
		return errors.New("workers must be between 1 and 64")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Bucket: %s, StorageDir: %s, Archive: %s, Language: %s, DPI: %d, Workers: %d, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.BucketURL, c.StorageDir, c.ArchiveKey, c.Language, c.DPI, c.Workers, c.LogLevel, c.MaxFileSize)
}

// IsBatchMode returns true if the process runs the batch pipeline
func (c *Config) IsBatchMode() bool {
	return c.Mode == ModeBatch
}

// IsServerMode returns true if the process serves over HTTP
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the process serves MCP over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
