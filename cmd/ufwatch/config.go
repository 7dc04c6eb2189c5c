package main

import (
	"time"

	"github.com/ufwatch/ufwatch/internal/recent"
)

const (
	defaultBindHost      = "127.0.0.1"
	defaultTCPPort       = 4514
	defaultAPIPort       = 3000
	defaultMuxBufferSize = DefaultMuxBuffer
	defaultDockerBinary  = "docker"
	defaultOutputFormat  = "json"
	defaultRecentEvents  = recent.DefaultCapacity
	defaultRefreshEvery  = time.Duration(0) // disabled
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Verbose         bool          `mapstructure:"verbose"`
	Marker          string        `mapstructure:"marker"`
	BridgePrefix    string        `mapstructure:"bridge-prefix"`
	DenyFields      []string      `mapstructure:"deny-fields"`
	OutputFormat    string        `mapstructure:"output-format"`
	EnrichEnabled   bool          `mapstructure:"enrich-enabled"`
	DockerBinary    string        `mapstructure:"docker-bin"`
	DockerSudo      bool          `mapstructure:"docker-sudo"`
	NetworksFile    string        `mapstructure:"networks-file"`
	RefreshInterval time.Duration `mapstructure:"refresh-interval"`
	JournaldEnabled bool          `mapstructure:"journald-enabled"`
	JournalctlBin   string        `mapstructure:"journalctl-bin"`
	FilePath        string        `mapstructure:"file-path"`
	TCPEnabled      bool          `mapstructure:"tcp-enabled"`
	TCPPort         int           `mapstructure:"tcp-port"`
	TCPAddr         string        `mapstructure:"tcp-addr"`
	MuxBufferSize   int           `mapstructure:"mux-buffer-size"`
	APIEnabled      bool          `mapstructure:"api-enabled"`
	APIPort         int           `mapstructure:"api-port"`
	APIAddr         string        `mapstructure:"api-addr"`
	RecentEvents    int           `mapstructure:"recent-events"`
	ConfigPath      string        `mapstructure:"-"` // not from config file
}
