package dockernet

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ufwatch/ufwatch/internal/model"
)

const enumerateTimeout = 10 * time.Second

// Enumerator produces a fresh registry snapshot from an external source.
type Enumerator interface {
	Enumerate(ctx context.Context) (*Registry, error)
}

// CommandEnumerator shells out to the docker CLI and parses its
// newline-delimited JSON network listing. The command is invoked
// directly, without a shell.
type CommandEnumerator struct {
	Binary  string // docker binary, default "docker"
	UseSudo bool   // prepend sudo for hosts where the daemon is root-only
	Logger  *slog.Logger
}

func (c CommandEnumerator) Enumerate(ctx context.Context) (*Registry, error) {
	binary := c.Binary
	if binary == "" {
		binary = "docker"
	}

	name := binary
	args := []string{"network", "ls", "--format", "json"}
	if c.UseSudo {
		name = "sudo"
		args = append([]string{binary}, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, enumerateTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("enumerate networks via %s: %w (stderr: %s)",
			binary, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return Parse(&stdout, c.Logger)
}

// networksFile is the YAML shape of a static registry file.
type networksFile struct {
	Networks []model.NetworkInfo `yaml:"networks"`
}

// FileEnumerator loads the registry from a static YAML file. It serves
// air-gapped hosts and tests where the docker CLI is unavailable.
type FileEnumerator struct {
	Path   string
	Logger *slog.Logger
}

func (f FileEnumerator) Enumerate(_ context.Context) (*Registry, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read networks file %s: %w", f.Path, err)
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse networks file %s: %w", f.Path, err)
	}

	networks := make(map[string]model.NetworkInfo, len(file.Networks))
	for _, info := range file.Networks {
		prefix := info.ID
		if len(prefix) > PrefixLen {
			prefix = prefix[:PrefixLen]
		}
		if prefix == "" {
			continue
		}
		if info.Name == "" {
			info.Name = model.ValueUnknown
		}
		if info.Project == "" {
			info.Project = model.ValueUnknown
		}
		networks[prefix] = info
	}

	warnOverlaps(networks, f.Logger)
	return New(networks), nil
}

// Load builds the startup snapshot. Enumeration failure is recoverable:
// the registry degrades to empty and enrichment emits "unknown"
// placeholders until the next successful refresh.
func Load(ctx context.Context, enum Enumerator, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	reg, err := enum.Enumerate(ctx)
	if err != nil {
		logger.Error("network enumeration failed, starting with empty registry", "err", err)
		return Empty()
	}
	logger.Info("loaded container networks", "count", reg.Len())
	return reg
}
