// Package main is the blii CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/diyagk01/blii-pdf-service/internal/cli"
	"github.com/diyagk01/blii-pdf-service/internal/config"
	"github.com/diyagk01/blii-pdf-service/internal/fetch"
	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/internal/pipeline"
	"github.com/diyagk01/blii-pdf-service/internal/server"
	"github.com/diyagk01/blii-pdf-service/internal/watcher"
	"github.com/diyagk01/blii-pdf-service/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/blii/config.yaml"

// loadConfig loads config from path and applies PORT, HOST and DEBUG from the
// environment. When path is the default, config.yaml in the current directory
// is preferred if present; when neither exists the built-in defaults are used.
// Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := readConfig(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func readConfig(path string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	candidates := []string{defaultConfigPath}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append([]string{filepath.Join(cwd, "config.yaml")}, candidates...)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			if err != nil {
				return nil, "", err
			}
			return cfg, p, nil
		}
	}
	return config.Default(), "", nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "extract":
		runExtract()
	case "capabilities":
		runCapabilities()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("blii version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// newLogger returns the service logger, or a no-op logger for quiet CLI runs.
func newLogger(enabled, debug bool) *zap.Logger {
	if !enabled && !debug {
		return zap.NewNop()
	}
	logger, err := utils.NewLogger(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger := newLogger(true, debugMode)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	svc, err := pipeline.Build(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize extraction pipeline", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if len(cfg.Watch.Directories) > 0 {
		w, err := startHotFolder(ctx, svc, cfg, cfg.Watch.Directories, resolveOutputDir(cfg, cfg.Watch.Directories), logger)
		if err != nil {
			logger.Fatal("Failed to start hot folder", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(svc, fetch.NewResolver(cfg.Fetch, logger), &cfg.Server, logger, version)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	waitForSignal()
	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func waitForSignal() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

// reorderArgs moves any flags (and their values) that appear after the first
// positional argument to the front so that flag.Parse sees them. Go's flag
// package stops at the first non-flag argument, so "blii extract a.pdf -output json"
// would otherwise leave -output unparsed.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printExtractUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: blii extract [flags] <url-or-path>\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  blii extract scan.pdf
  blii extract https://example.com/report.pdf --output json
  blii extract --preview --output json slides.pptx
  blii extract --server http://localhost:8080 invoice.pdf   # use a running server
`)
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = extract in-process)")
	filename := fs.String("filename", "", "document name (default: taken from the reference)")
	preview := fs.Bool("preview", false, "render a first-page preview image")
	outputFormat := fs.String("output", "text", "output format: text, json, or content")
	debug := fs.Bool("debug", false, "enable debug logging to stderr")
	fs.Usage = func() { printExtractUsage(fs) }
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if fs.NArg() != 1 {
		printExtractUsage(fs)
		os.Exit(1)
	}
	ref := fs.Arg(0)
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var env *models.Envelope
	if *serverURL != "" {
		env, err = extractViaHTTP(*serverURL, ref, *filename, *preview)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Extract failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(false, cfg.Debug || *debug)
		defer logger.Sync()

		svc, err := pipeline.Build(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		doc, err := fetch.NewResolver(cfg.Fetch, logger).Resolve(ctx, ref, *filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read document: %v\n", err)
			os.Exit(1)
		}
		env = svc.Extract(ctx, doc, pipeline.Options{GeneratePreview: *preview})
	}

	if err := cli.WriteEnvelope(os.Stdout, env, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if !env.Success {
		os.Exit(2)
	}
}

// isRemoteRef reports whether ref is fetched over HTTP rather than read from disk.
func isRemoteRef(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// extractViaHTTP sends URLs to POST /extract and uploads local files to POST /upload.
func extractViaHTTP(serverURL, ref, filename string, preview bool) (*models.Envelope, error) {
	serverURL = strings.TrimRight(serverURL, "/")
	var (
		resp *http.Response
		err  error
	)
	if isRemoteRef(ref) {
		body, merr := json.Marshal(map[string]interface{}{
			"pdf_url":          ref,
			"filename":         filename,
			"generate_preview": preview,
		})
		if merr != nil {
			return nil, merr
		}
		resp, err = http.Post(serverURL+"/extract", "application/json", bytes.NewReader(body))
	} else {
		path := strings.TrimPrefix(ref, "file://")
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, rerr
		}
		if filename == "" {
			filename = filepath.Base(path)
		}
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, ferr := mw.CreateFormFile("file", filename)
		if ferr != nil {
			return nil, ferr
		}
		if _, err := fw.Write(data); err != nil {
			return nil, err
		}
		if err := mw.WriteField("generate_preview", strconv.FormatBool(preview)); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}
		resp, err = http.Post(serverURL+"/upload", mw.FormDataContentType(), &buf)
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var env models.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if !env.Success && env.Error == "" {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return &env, nil
}

func runCapabilities() {
	fs := flag.NewFlagSet("capabilities", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = probe this machine)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var caps models.CapabilitySet
	if *serverURL != "" {
		caps, err = capabilitiesViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Capabilities failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		svc, err := pipeline.Build(cfg, newLogger(false, cfg.Debug))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		caps = svc.Capabilities()
	}
	if err := cli.WriteCapabilities(os.Stdout, caps, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func capabilitiesViaHTTP(serverURL string) (models.CapabilitySet, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/capabilities")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var caps models.CapabilitySet
	if err := json.NewDecoder(resp.Body).Decode(&caps); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return caps, nil
}

// resolveOutputDir returns the configured output directory, or "extracted"
// inside the first watched directory.
func resolveOutputDir(cfg *config.Config, dirs []string) string {
	if cfg.Watch.OutputDir != "" {
		return cfg.Watch.OutputDir
	}
	if len(dirs) == 0 {
		return "extracted"
	}
	return filepath.Join(dirs[0], "extracted")
}

func startHotFolder(ctx context.Context, svc *pipeline.Service, cfg *config.Config, dirs []string, outputDir string, logger *zap.Logger) (*watcher.Watcher, error) {
	hot := watcher.NewHotFolder(svc, outputDir,
		pipeline.Options{GeneratePreview: cfg.Preview.EnabledOrDefault()},
		cfg.Fetch.MaxBytes, logger, watcher.WithRoots(dirs...))
	w := watcher.NewWatcher(dirs, cfg.Watch.Extensions, cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, err := hot.Process(ctx, path); err != nil {
				logger.Warn("hot folder process failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := hot.Remove(path); err != nil {
				logger.Warn("hot folder remove failed", zap.String("path", path), zap.Error(err))
			}
		},
		watcher.WithLogger(logger),
		watcher.WithIgnore(outputDir),
	)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("hot folder started", zap.Strings("directories", dirs), zap.String("output_dir", outputDir))
	go w.SyncExistingFiles()
	return w, nil
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputDir := fs.String("output-dir", "", "directory for <name>.json results (default: watch.output_dir, or <dir>/extracted)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = cfg.Watch.Directories
	}
	if len(dirs) == 0 {
		fmt.Println("Usage: blii watch [flags] <dir>...")
		fmt.Println("  or set watch.directories in the config file")
		os.Exit(1)
	}
	for i, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			dirs[i] = abs
		}
	}
	out := *outputDir
	if out == "" {
		out = resolveOutputDir(cfg, dirs)
	}
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}

	logger := newLogger(true, cfg.Debug || *debug)
	defer logger.Sync()
	svc, err := pipeline.Build(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize extraction pipeline", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := startHotFolder(ctx, svc, cfg, dirs, out, logger)
	if err != nil {
		logger.Fatal("Failed to start hot folder", zap.Error(err))
	}
	defer w.Stop()
	fmt.Printf("Watching %s; results in %s\n", strings.Join(dirs, ", "), out)
	waitForSignal()
}

func printUsage() {
	fmt.Println(`blii - document text extraction service

Usage:
  blii server [flags]                 Start the HTTP server
  blii extract [flags] <url-or-path>  Extract text from one document
  blii capabilities [flags]           Show which extraction backends are usable
  blii watch [flags] <dir>...         Extract documents dropped into directories
  blii version                        Show version
  blii help                           Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/blii/config.yaml, or ./config.yaml)
  --debug            Enable debug logging

Extract Flags:
  --config string    Config file path
  --server string    Server URL; when set the document is sent to a running server
  --filename string  Document name used for the title fallback and metadata
  --preview          Render a first-page preview image
  --output string    Output format: text, json, or content (default: text)

Capabilities Flags:
  --server string    Server URL (default: probe this machine)
  --output string    Output format: text or json (default: text)

Watch Flags:
  --output-dir string  Directory for <name>.json results
  --debug              Enable debug logging

Environment:
  PORT, HOST, DEBUG override server.port, server.host and debug.

Examples:
  blii server
  PORT=5000 blii server
  blii extract scan.pdf
  blii extract https://example.com/report.pdf --output json
  blii capabilities --output json
  blii watch ~/Inbox --output-dir ~/Inbox/extracted`)
}
