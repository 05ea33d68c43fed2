// Package main is the faqnav CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/faqnav/internal/cli"
	"github.com/hyperjump/faqnav/internal/config"
	"github.com/hyperjump/faqnav/internal/faq"
	"github.com/hyperjump/faqnav/internal/server"
	"github.com/hyperjump/faqnav/internal/storage"
	"github.com/hyperjump/faqnav/internal/watcher"
	"github.com/hyperjump/faqnav/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/faqnav/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if it exists, so "faqnav server" run from a
// project directory picks up that project's settings.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolveFAQPath returns faqPath when set, otherwise the FAQ path from the config.
func resolveFAQPath(faqPath, configPath string) (string, error) {
	if faqPath != "" {
		return faqPath, nil
	}
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	return cfg.FAQ.Path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	switch command {
	case "server":
		runServer(args)
	case "init":
		os.Exit(runInit(args, os.Stdout, os.Stderr))
	case "validate":
		os.Exit(runValidate(args, os.Stdout, os.Stderr))
	case "tree":
		os.Exit(runTree(args, os.Stdout, os.Stderr))
	case "status":
		os.Exit(runStatus(args, os.Stdout, os.Stderr))
	case "version", "--version", "-v":
		fmt.Printf("faqnav version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	faqPath := fs.String("faq", "", "FAQ file path (overrides faq.path from config)")
	watch := fs.Bool("watch", false, "reload the FAQ file when it changes")
	debug := fs.Bool("debug", false, "enable debug logging (per-message transitions, requests)")
	_ = fs.Parse(args)

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *faqPath != "" {
		cfg.FAQ.Path = *faqPath
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("faq_path", cfg.FAQ.Path),
		zap.Bool("debug", debugMode),
	)

	doc, err := faq.Load(cfg.FAQ.Path)
	if err != nil {
		logger.Fatal("Failed to load FAQ", zap.Error(err))
	}
	stats := doc.Stats()
	logger.Info("faq loaded",
		zap.String("revision", doc.Revision),
		zap.Int("categories", stats.Categories),
		zap.Int("questions", stats.Questions),
	)

	transcript, err := openTranscript(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to open transcript", zap.Error(err))
	}
	if transcript != nil {
		defer transcript.Close()
	}

	srv := server.NewServer(faq.NewStore(doc), transcript, &cfg.Server, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.FAQ.WatchOrDefault() || *watch {
		w, err := watchFAQ(watchCtx, cfg.FAQ.Path, srv, logger)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...", zap.Int64("active_sessions", srv.ActiveSessions()))
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// openTranscript opens the SQLite transcript, or returns nil when it is disabled.
func openTranscript(cfg config.StorageConfig, logger *zap.Logger) (storage.Transcript, error) {
	if cfg.TranscriptPath == "" {
		return nil, nil
	}
	t, err := storage.NewSQLiteTranscript(cfg.TranscriptPath)
	if err != nil {
		return nil, err
	}
	logger.Info("transcript enabled", zap.String("path", t.Path()))
	return t, nil
}

// watchFAQ reloads the server's document whenever path changes.
func watchFAQ(ctx context.Context, path string, srv *server.Server, logger *zap.Logger) (*watcher.Watcher, error) {
	w := watcher.NewWatcher(path, func(p string) {
		_ = srv.ReloadFAQ(p)
	}, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("watching faq for changes", zap.String("path", path))
	return w, nil
}

// runInit writes a config file filled with defaults and the given overrides.
func runInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	faqPath := fs.String("faq", "./faq.yaml", "FAQ file path to record in the config")
	watch := fs.Bool("watch", false, "reload the FAQ file when it changes")
	transcriptPath := fs.String("transcript", "", "SQLite transcript path (empty disables transcripts)")
	port := fs.Int("port", 0, "HTTP port (0 = default)")
	force := fs.Bool("force", false, "overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path := fs.Arg(0)
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(stderr, "Config %s already exists; use --force to overwrite\n", path)
		return 1
	}

	cfg := &config.Config{}
	cfg.Server.Port = *port
	cfg.FAQ.Path = *faqPath
	cfg.FAQ.Watch = watch
	cfg.Storage.TranscriptPath = *transcriptPath
	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := config.Save(path, cfg); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return 0
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, err := resolveFAQPath(fs.Arg(0), *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	doc, err := faq.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid: %v\n", err)
		return 1
	}
	fmt.Fprint(stdout, "OK ")
	cli.WriteSummary(stdout, doc)
	return 0
}

func runTree(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	width := fs.Int("width", 60, "answer preview width in text output (0 = full answers)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	path, err := resolveFAQPath(fs.Arg(0), *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	doc, err := faq.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid: %v\n", err)
		return 1
	}
	if err := cli.WriteTree(stdout, doc, format, *width); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

// serverStatus mirrors the JSON of GET /api/v1/status.
type serverStatus struct {
	Document struct {
		Source     string    `json:"source"`
		Revision   string    `json:"revision"`
		LoadedAt   time.Time `json:"loaded_at"`
		Categories int       `json:"categories"`
		Questions  int       `json:"questions"`
		MaxDepth   int       `json:"max_depth"`
	} `json:"document"`
	ActiveSessions int64 `json:"active_sessions"`
	Transcript     *struct {
		Events    int64  `json:"events"`
		Sessions  int64  `json:"sessions"`
		DiskBytes *int64 `json:"disk_usage_bytes,omitempty"`
	} `json:"transcript,omitempty"`
}

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	status, err := statusViaHTTP(*serverURL)
	if err != nil {
		fmt.Fprintf(stderr, "Status failed: %v\n", err)
		return 1
	}
	if format == cli.OutputJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(stderr, "Output failed: %v\n", err)
			return 1
		}
		return 0
	}
	d := status.Document
	fmt.Fprintf(stdout, "faq_source:       %s\n", d.Source)
	fmt.Fprintf(stdout, "faq_revision:     %s   # loaded %s\n", d.Revision, d.LoadedAt.Format(time.RFC3339))
	fmt.Fprintf(stdout, "categories:       %d\n", d.Categories)
	fmt.Fprintf(stdout, "questions:        %d\n", d.Questions)
	fmt.Fprintf(stdout, "max_depth:        %d\n", d.MaxDepth)
	fmt.Fprintf(stdout, "active_sessions:  %d\n", status.ActiveSessions)
	if t := status.Transcript; t != nil {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "# transcript")
		fmt.Fprintf(stdout, "events:           %d\n", t.Events)
		fmt.Fprintf(stdout, "sessions:         %d\n", t.Sessions)
		if t.DiskBytes != nil {
			fmt.Fprintf(stdout, "disk_usage_bytes: %d\n", *t.DiskBytes)
		}
	}
	return 0
}

func statusViaHTTP(serverURL string) (*serverStatus, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s serverStatus
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`faqnav - FAQ navigation over WebSocket

Usage:
  faqnav server [flags]            Start the HTTP and WebSocket server
  faqnav init [flags] [file]       Write a default config file (default: config.yaml)
  faqnav validate [flags] [file]   Check an FAQ file and print its shape
  faqnav tree [flags] [file]       Print the FAQ tree
  faqnav status [flags]            Show status of a running server
  faqnav version                   Show version
  faqnav help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/faqnav/config.yaml)
  --faq string       FAQ file path (overrides faq.path from config)
  --watch            Reload the FAQ file when it changes
  --debug            Enable debug logging

Init Flags:
  --faq string         FAQ file path to record (default: ./faq.yaml)
  --watch              Record faq.watch: true
  --transcript string  SQLite transcript path (default: disabled)
  --port int           HTTP port (default: 8080)
  --force              Overwrite an existing file

Validate / Tree Flags:
  --config string    Config file path, used when no file is given
  --output string    (tree) Output format: text or json (default: text)
  --width int        (tree) Answer preview width, 0 for full answers (default: 60)

Status Flags:
  --server string    Server URL (default: http://localhost:8080)
  --output string    Output format: text or json (default: text)

Examples:
  faqnav init --watch --transcript ./data/transcript.db
  faqnav server --faq ./faq.yaml --watch
  faqnav validate faq.yaml
  faqnav tree --output json faq.yaml
  faqnav status`)
}
