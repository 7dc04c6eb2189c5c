package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var showVersion bool
	var verbose bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/ufwatch/config.yml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.BoolVar(&verbose, "verbose", false, "echo every captured line to the diagnostic log")
	flag.Parse()

	if showVersion {
		fmt.Printf("ufwatch - UFW Block Event Monitor\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	if err := runMonitor(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("UFWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("verbose", false)
	v.SetDefault("marker", "")
	v.SetDefault("bridge-prefix", "")
	v.SetDefault("output-format", defaultOutputFormat)
	v.SetDefault("enrich-enabled", true)
	v.SetDefault("docker-bin", defaultDockerBinary)
	v.SetDefault("docker-sudo", false)
	v.SetDefault("refresh-interval", defaultRefreshEvery)
	v.SetDefault("journald-enabled", true)
	v.SetDefault("journalctl-bin", "")
	v.SetDefault("tcp-enabled", false)
	v.SetDefault("tcp-port", defaultTCPPort)
	v.SetDefault("mux-buffer-size", defaultMuxBufferSize)
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("recent-events", defaultRecentEvents)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		defaultConfigPath := filepath.Join(home, ".config", "ufwatch", "config.yml")
		v.SetConfigFile(defaultConfigPath)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if cfg.TCPPort <= 0 || cfg.TCPPort > 65535 {
		return cfg, fmt.Errorf("invalid tcp-port: %d", cfg.TCPPort)
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	switch cfg.OutputFormat {
	case "", "json", "toml":
	default:
		return cfg, fmt.Errorf("invalid output-format: %q (want json or toml)", cfg.OutputFormat)
	}

	// Expand ~ in file paths
	if strings.HasPrefix(cfg.FilePath, "~/") {
		cfg.FilePath = filepath.Join(home, cfg.FilePath[2:])
	}
	if strings.HasPrefix(cfg.NetworksFile, "~/") {
		cfg.NetworksFile = filepath.Join(home, cfg.NetworksFile[2:])
	}

	if cfg.TCPAddr == "" {
		cfg.TCPAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.TCPPort))
	}
	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(defaultBindHost, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
