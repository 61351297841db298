// Copyright 2025 The prefixd Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the prefixd completion engine as a MessagePack IPC server,
an HTTP API or an interactive CLI.

prefixd indexes a vocabulary in a character trie and answers "which terms
start with this prefix" queries, optionally through a bounded result cache
with time-based expiry.

# Usage

Start the IPC server on stdin/stdout with a word list:

	prefixd -dict words.txt

Serve HTTP instead:

	prefixd -dict words.txt -http -addr :8383

Run in CLI mode for interactive testing:

	prefixd -dict words.txt -c -limit 10 -d

Dictionaries are plain text, one term per line, or a msgpack encoded list of
strings (.msgpack). Lines starting with '#' are ignored in text files.

# Configuration

Runtime configuration lives in a TOML file, created with defaults on first
run under the user config dir (~/.config/prefixd/config.toml):

	[engine]
	ignore_case = false
	prebuilt_terms = false

	[cache]
	enabled = false
	max_size = 2048
	policy = "created"
	expiration = 24
	expiration_unit = "hours"

	[server]
	max_limit = 64
	min_prefix = 0
	max_prefix = 60
	default_limit = 0

Flags override the file.

# Command Line Flags

	-config string
	    Path to a config file
	-dict string
	    Dictionary file (.txt or .msgpack)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-http
	    Serve HTTP instead of IPC
	-addr string
	    HTTP listen address (default from config, ":8383")
	-limit int
	    Default number of suggestions to return
	-i  Case insensitive matching
	-prebuilt
	    Store full terms on nodes
	-cache
	    Enable the result cache
	-no-filter
	    Disable CLI input filtering
	-version
	    Show current version

Logs always go to stderr; stdout belongs to the IPC protocol.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/prefixd/internal/cli"
	"github.com/bastiangx/prefixd/internal/logger"
	"github.com/bastiangx/prefixd/internal/utils"
	"github.com/bastiangx/prefixd/pkg/config"
	"github.com/bastiangx/prefixd/pkg/dictionary"
	"github.com/bastiangx/prefixd/pkg/httpapi"
	"github.com/bastiangx/prefixd/pkg/server"
	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const (
	Version = "0.1.0"
	AppName = "prefixd"
	gh      = "https://github.com/bastiangx/prefixd"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only wires flags, config and the chosen mode together.
func main() {
	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a config file")
	dictPath := flag.String("dict", "", "Dictionary file (.txt or .msgpack)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	httpMode := flag.Bool("http", false, "Serve HTTP on [http] addr instead of IPC")
	httpAddr := flag.String("addr", "", "Override the HTTP listen address")
	limit := flag.Int("limit", 0, "Default number of suggestions to return")
	ignoreCase := flag.Bool("i", false, "Case insensitive matching")
	prebuilt := flag.Bool("prebuilt", false, "Store full terms on terminal nodes")
	withCache := flag.Bool("cache", false, "Enable the result cache")
	noFilter := flag.Bool("no-filter", false, "Disable CLI input filtering (DBG only)")

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	logger.Setup(*debugMode)

	cfg, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedPath))

	if *dictPath != "" {
		cfg.Dict.Path = *dictPath
	}
	if *limit > 0 {
		cfg.Server.DefaultLimit = *limit
	}
	if *ignoreCase {
		cfg.Engine.IgnoreCase = true
	}
	if *prebuilt {
		cfg.Engine.PrebuiltTerms = true
	}
	if *withCache {
		cfg.Cache.Enabled = true
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to init engine: %v", err)
	}

	switch {
	case *cliMode:
		sigHandler()
		log.SetReportTimestamp(false)
		rules := cfg.Server.PrefixRules()
		rules.Filter = !*noFilter
		h := cli.NewInputHandler(engine, rules, cfg.Server.Limit(0), os.Stdin, os.Stdout)
		if err := h.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	case *httpMode:
		if *httpAddr != "" {
			cfg.HTTP.Addr = *httpAddr
		}
		serveHTTP(engine, cfg)
	default:
		sigHandler()
		showStartupInfo(cfg.Dict.Path, engine)
		srv := server.NewServer(engine, cfg.Server, os.Stdin, os.Stdout)
		if err := srv.Start(); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}
}

func buildEngine(cfg *config.Config) (*suggest.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}

	var terms []string
	if cfg.Dict.Path == "" {
		log.Warn("No dictionary specified, running with empty vocabulary...")
	} else {
		path := utils.ResolveFile(cfg.Dict.Path)
		log.Debugf("Loading dictionary: %s", path)
		terms, err = dictionary.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
		terms = dictionary.Dedupe(terms)
	}

	start := time.Now()
	engine, err := suggest.From(opts, terms...)
	if err != nil {
		return nil, err
	}
	stats := engine.Stats()
	log.Debug("Engine built", "terms", stats["terms"], "nodes", stats["nodes"], "took", time.Since(start))
	return engine, nil
}

// serveHTTP blocks until SIGINT/SIGTERM, then shuts the listener down.
func serveHTTP(engine *suggest.Engine, cfg *config.Config) {
	addr := cfg.HTTP.Addr
	if log.GetLevel() > log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.SetupRoutes(engine, cfg.Server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("HTTP listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	fmt.Fprintf(os.Stderr, "\nExiting...\n")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown: %v", err)
	}
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ prefixd ] Prefix completions from a trie")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dictPath string, engine *suggest.Engine) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=========")
	println(" prefixd ")
	println("=========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dict: ( %s )", dictPath)
	log.Infof("terms: %d  cache: %v", engine.Stats()["terms"], engine.HasCache())
	log.Info("status: ready")
	println("=========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
