package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/tradeops/formscan/internal/archive"
	"github.com/tradeops/formscan/internal/batch"
	"github.com/tradeops/formscan/internal/config"
	"github.com/tradeops/formscan/internal/manifest"
	"github.com/tradeops/formscan/internal/mcp"
	"github.com/tradeops/formscan/internal/ocr"
	"github.com/tradeops/formscan/internal/schema"
	"github.com/tradeops/formscan/internal/storage"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the execution mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, redirect log output to stderr to avoid interfering with MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// runStdioMode handles MCP stdio mode execution
func runStdioMode(ctx context.Context, srv *mcp.Server) {
	// The parent process controls our lifecycle; exit cleanly when stdin
	// closes or the server errors.
	if err := srv.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, srv *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// newStore selects the storage backend from configuration.
func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.BucketURL != "" {
		return storage.NewCOSStore(cfg.BucketURL)
	}
	return storage.NewLocalStore(cfg.StorageDir)
}

// loadManifest reads the batch manifest, preferring a local file and falling
// back to the archive's own .csv entry.
func loadManifest(cfg *config.Config, zipData []byte) ([]manifest.Record, error) {
	var data []byte
	if cfg.ManifestPath != "" {
		fileData, err := os.ReadFile(cfg.ManifestPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", cfg.ManifestPath, err)
		}
		data = fileData
	} else {
		entry, err := archive.ManifestEntry(zipData)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, fmt.Errorf("archive carries no manifest entry and no --manifest was given")
		}
		data = entry
	}
	return manifest.Parse(bytes.NewReader(data))
}

// writeResults encodes the batch output as JSON to the configured
// destination, defaulting to stdout.
func writeResults(cfg *config.Config, results []batch.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	data = append(data, '\n')

	if cfg.OutputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.OutputPath, data, 0o640); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// runBatch executes the batch pipeline end to end.
func runBatch(ctx context.Context, cfg *config.Config) error {
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	tessdataDir := cfg.TessdataDir
	if cfg.TessdataKey != "" {
		dest := tessdataDir
		if dest == "" {
			dest = filepath.Join(os.TempDir(), "formscan-tessdata")
		}
		tessdataDir, err = ocr.FetchTessdata(ctx, store, cfg.TessdataKey, dest)
		if err != nil {
			return err
		}
	}

	engine := ocr.NewEngine(ocr.Config{
		Language:    cfg.Language,
		DPI:         cfg.DPI,
		TessdataDir: tessdataDir,
	})

	keys, err := resolveArchiveKeys(ctx, store, cfg.ArchiveKey)
	if err != nil {
		return err
	}

	scanner := batch.NewScanner(store, engine, cfg.Workers)

	var results []batch.Result
	total := 0
	for _, key := range keys {
		zipData, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to fetch archive %s: %w", key, err)
		}

		records, err := loadManifest(cfg, zipData)
		if err != nil {
			return fmt.Errorf("archive %s: %w", key, err)
		}

		total += len(records)
		results = append(results, scanner.ScanData(ctx, key, zipData, records)...)
	}
	log.Printf("Batch complete: %d of %d records extracted", len(results), total)

	return writeResults(cfg, results)
}

// resolveArchiveKeys expands a trailing-slash archive key into every zip
// object under that prefix; a plain key names a single archive.
func resolveArchiveKeys(ctx context.Context, store storage.Store, archiveKey string) ([]string, error) {
	if !strings.HasSuffix(archiveKey, "/") {
		return []string{archiveKey}, nil
	}

	keys, err := store.List(ctx, archiveKey)
	if err != nil {
		return nil, err
	}
	var zips []string
	for _, key := range keys {
		if strings.HasSuffix(key, ".zip") {
			zips = append(zips, key)
		}
	}
	if len(zips) == 0 {
		return nil, fmt.Errorf("no archives found under %s", archiveKey)
	}
	return zips, nil
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && !cfg.IsStdioMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsBatchMode() {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := runBatch(ctx, cfg); err != nil {
			log.Fatalf("Batch failed: %v", err)
		}
		return
	}

	srv, err := mcp.NewServer(cfg, schema.NewMapper(), ocr.NewEngine(ocr.Config{
		Language:    cfg.Language,
		DPI:         cfg.DPI,
		TessdataDir: cfg.TessdataDir,
	}))
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, srv)
	} else {
		runStdioMode(ctx, srv)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("FormScan\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
