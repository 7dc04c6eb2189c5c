package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/ufwatch/ufwatch/internal/dockernet"
	"github.com/ufwatch/ufwatch/internal/enrich"
	"github.com/ufwatch/ufwatch/internal/httpserver"
	"github.com/ufwatch/ufwatch/internal/ingest"
	"github.com/ufwatch/ufwatch/internal/recent"
	"github.com/ufwatch/ufwatch/internal/sink"
	"github.com/ufwatch/ufwatch/internal/ufwparse"
)

// runMonitor starts the block-event monitor loop with the HTTP API.
// Enriched records go to stdout; diagnostics go to stderr only.
func runMonitor(cfg appConfig) error {
	logger := configureRuntimeLogger(cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now - not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nForce shutdown.")
		case <-deadline.C:
			fmt.Fprintln(os.Stderr, "Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	// Network registry: docker CLI by default, a static YAML file when
	// configured. Load failure degrades to an empty registry.
	handle := dockernet.NewHandle(nil)
	var enricher enrich.Enricher
	if cfg.EnrichEnabled {
		enum := registryEnumerator(cfg, logger)
		handle.Swap(dockernet.Load(ctx, enum, logger))

		refresher := dockernet.StartRefresher(ctx, handle, enum, cfg.RefreshInterval, logger)
		defer refresher.Stop()

		enricher = enrich.NewNetworkEnricher(handle, cfg.BridgePrefix)
	}

	// Sinks: the configured output writer plus the in-memory ring that
	// backs the HTTP API.
	out, err := sink.New(cfg.OutputFormat, os.Stdout)
	if err != nil {
		return fmt.Errorf("configure output: %w", err)
	}
	recentBuf := recent.NewBuffer(cfg.RecentEvents)
	sinks := []ingest.RecordSink{out, recentBuf}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, handle, recentBuf)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	// Build input plugins and source multiplexer
	plugins := buildInputPlugins(InputPluginConfig{
		JournaldEnabled: cfg.JournaldEnabled,
		JournalctlBin:   cfg.JournalctlBin,
		FilePath:        cfg.FilePath,
		TCPEnabled:      cfg.TCPEnabled,
		TCPAddr:         cfg.TCPAddr,
	})

	sources := make([]NamedLogSource, 0, len(plugins))
	for _, plugin := range plugins {
		if !plugin.Enabled() {
			continue
		}
		src, err := plugin.Build(ctx)
		if err != nil {
			logger.Error("input plugin failed to initialize", "plugin", plugin.Name(), "err", err)
			continue
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		// Fall back to stdin if piped
		fallback := stdinInputPlugin{}
		if fallback.Enabled() {
			if src, err := fallback.Build(ctx); err == nil {
				sources = append(sources, src)
			}
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no input sources available: enable journald, tcp, or a log file, or pipe to stdin")
	}

	mux := NewSourceMultiplexer(ctx, sources, cfg.MuxBufferSize)
	mux.Start()

	processor := ingest.NewProcessor(
		ufwparse.New(cfg.Marker, logger),
		enricher,
		enrich.NewDenylist(cfg.DenyFields),
		sinks,
		logger,
	)

	printStartupBanner(cfg, sources, handle.Current().Len())

	// Use errgroup for concurrent goroutine lifecycle management.
	g, gctx := errgroup.WithContext(ctx)

	// Single ingestion goroutine: records reach the sinks in arrival
	// order. It returns when the mux output closes, whether from an
	// interrupt, clean end of stream, or a source dying.
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case env, ok := <-mux.Lines():
				if !ok {
					return nil
				}
				processor.ProcessEnvelope(env)
			}
		}
	})

	// Wait for either signal or all sources to close.
	if err := g.Wait(); err != nil {
		logger.Error("monitor loop exited with error", "err", err)
	}

	cancel()
	mux.Stop()
	signal.Stop(sigCh)

	// An interrupt leaves every source with a nil Err; a source that died
	// on its own reports why, and the process exits non-zero.
	if err := mux.Err(); err != nil {
		return fmt.Errorf("input source failed: %w", err)
	}
	return nil
}

// registryEnumerator picks the network listing source for the registry.
func registryEnumerator(cfg appConfig, logger *slog.Logger) dockernet.Enumerator {
	if cfg.NetworksFile != "" {
		return dockernet.FileEnumerator{Path: cfg.NetworksFile, Logger: logger}
	}
	return dockernet.CommandEnumerator{
		Binary:  cfg.DockerBinary,
		UseSudo: cfg.DockerSudo,
		Logger:  logger,
	}
}

// configureRuntimeLogger routes diagnostics to stderr so stdout stays
// reserved for enriched records. Verbose mode lowers the level to Debug,
// which also turns on the per-line capture echo.
func configureRuntimeLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func printStartupBanner(cfg appConfig, sources []NamedLogSource, networkCount int) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╦ ╦╔═╗╦ ╦╔═╗╔╦╗╔═╗╦ ╦
    ║ ║╠╣ ║║║╠═╣ ║ ║  ╠═╣
    ╚═╝╚  ╚╩╝╩ ╩ ╩ ╚═╝╩ ╩`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	// Inputs
	lines = append(lines, bold.Render("    Inputs"))
	lines = append(lines, "")
	enabled := make(map[string]bool, len(sources))
	for _, src := range sources {
		enabled[src.Name()] = true
	}
	for _, name := range []string{"journald", "file", "tcp", "stdin"} {
		label := name + strings.Repeat(" ", 13-len(name))
		switch {
		case name == "tcp" && enabled[name]:
			lines = append(lines, fmt.Sprintf("    %s  %s  %s", check, label, cyan.Render(cfg.TCPAddr)))
		case name == "file" && enabled[name]:
			lines = append(lines, fmt.Sprintf("    %s  %s  %s", check, label, cyan.Render(shortenPath(cfg.FilePath))))
		case enabled[name]:
			lines = append(lines, fmt.Sprintf("    %s  %s  %s", check, label, green.Render("active")))
		default:
			lines = append(lines, fmt.Sprintf("    %s  %s  %s", dot, label, dim.Render("disabled")))
		}
	}
	lines = append(lines, "")

	// Enrichment
	lines = append(lines, bold.Render("    Enrichment"))
	lines = append(lines, "")
	if cfg.EnrichEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Networks       %s", check, cyan.Render(fmt.Sprintf("%d registered", networkCount))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Networks       %s", dot, dim.Render("disabled")))
	}
	format := cfg.OutputFormat
	if format == "" {
		format = defaultOutputFormat
	}
	lines = append(lines, fmt.Sprintf("    %s  Output         %s", check, dim.Render(format+" to stdout")))
	lines = append(lines, "")

	// Gateway
	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}

	lines = append(lines, "")
	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Fprintln(os.Stderr, strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
