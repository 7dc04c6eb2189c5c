package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ufwatch/ufwatch/internal/logsource"
	"github.com/ufwatch/ufwatch/internal/tcpserver"
)

// NamedLogSource aliases the shared source abstraction to keep app-layer APIs explicit.
type NamedLogSource = logsource.LogSource

// InputSourcePlugin is a small plugin primitive for wiring log inputs.
type InputSourcePlugin interface {
	Name() string
	Enabled() bool
	Build(ctx context.Context) (NamedLogSource, error)
}

// InputPluginConfig defines runtime input selection.
type InputPluginConfig struct {
	JournaldEnabled bool
	JournalctlBin   string
	FilePath        string
	TCPEnabled      bool
	TCPAddr         string
}

func buildInputPlugins(cfg InputPluginConfig) []InputSourcePlugin {
	plugins := make([]InputSourcePlugin, 0, 3)
	plugins = append(plugins, journaldInputPlugin{
		binary:  cfg.JournalctlBin,
		enabled: cfg.JournaldEnabled,
	})
	plugins = append(plugins, fileInputPlugin{path: cfg.FilePath})
	plugins = append(plugins, tcpInputPlugin{
		addr:    cfg.TCPAddr,
		enabled: cfg.TCPEnabled,
	})
	return plugins
}

type journaldInputPlugin struct {
	binary  string
	enabled bool
}

func (p journaldInputPlugin) Name() string { return "journald" }

func (p journaldInputPlugin) Enabled() bool { return p.enabled }

func (p journaldInputPlugin) Build(ctx context.Context) (NamedLogSource, error) {
	src, err := logsource.NewJournaldSource(ctx, logsource.JournaldConfig{Binary: p.binary})
	if err != nil {
		return nil, fmt.Errorf("start journal follower: %w", err)
	}
	return src, nil
}

type fileInputPlugin struct {
	path string
}

func (p fileInputPlugin) Name() string { return "file" }

func (p fileInputPlugin) Enabled() bool { return p.path != "" }

func (p fileInputPlugin) Build(ctx context.Context) (NamedLogSource, error) {
	src, err := logsource.NewFileSource(ctx, p.path)
	if err != nil {
		return nil, fmt.Errorf("follow log file: %w", err)
	}
	return src, nil
}

type tcpInputPlugin struct {
	addr    string
	enabled bool
}

func (p tcpInputPlugin) Name() string { return "tcp" }

func (p tcpInputPlugin) Enabled() bool { return p.enabled }

func (p tcpInputPlugin) Build(_ context.Context) (NamedLogSource, error) {
	server := tcpserver.NewServer(p.addr)
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("start tcp server: %w", err)
	}
	return logsource.NewTCPSource(server), nil
}

type stdinInputPlugin struct{}

func (p stdinInputPlugin) Name() string { return "stdin" }

func (p stdinInputPlugin) Enabled() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func (p stdinInputPlugin) Build(ctx context.Context) (NamedLogSource, error) {
	return logsource.NewStdinSource(ctx), nil
}
