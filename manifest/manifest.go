// Package manifest handles strictemit.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/strictemit/pkg/resolve"
)

// FileName is the manifest file looked for in a project directory.
const FileName = "strictemit.toml"

// Body output formats.
const (
	FormatBinary = "binary"
	FormatCBOR   = "cbor"
)

// Manifest represents a strictemit.toml project configuration.
type Manifest struct {
	Project  Project        `toml:"project"`
	Metadata MetadataConfig `toml:"metadata"`
	Resolver ResolverConfig `toml:"resolver"`
	Log      LogConfig      `toml:"log"`
	Output   OutputConfig   `toml:"output"`

	// Dir is the directory containing the strictemit.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// MetadataConfig lists the symbol files describing the available types.
type MetadataConfig struct {
	Files []string `toml:"files"`
}

// ResolverConfig tunes member resolution.
type ResolverConfig struct {
	InheritedMethods bool `toml:"inherited-methods"`
	Parallelism      int  `toml:"parallelism"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// OutputConfig configures how emitted bodies are written.
type OutputConfig struct {
	Format string `toml:"format"`
}

// Load parses a strictemit.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Resolver.Parallelism <= 0 {
		m.Resolver.Parallelism = resolve.DefaultParallelism
	}
	if m.Output.Format == "" {
		m.Output.Format = FormatBinary
	}

	switch m.Output.Format {
	case FormatBinary, FormatCBOR:
	default:
		return nil, fmt.Errorf("%s: unknown output format %q", path, m.Output.Format)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a strictemit.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SymbolPaths returns absolute paths for the configured symbol files.
func (m *Manifest) SymbolPaths() []string {
	var paths []string
	for _, f := range m.Metadata.Files {
		if filepath.IsAbs(f) {
			paths = append(paths, f)
			continue
		}
		paths = append(paths, filepath.Join(m.Dir, f))
	}
	return paths
}

// LogPath returns the absolute log file path, or "" to log to stderr.
func (m *Manifest) LogPath() string {
	if m.Log.File == "" || filepath.IsAbs(m.Log.File) {
		return m.Log.File
	}
	return filepath.Join(m.Dir, m.Log.File)
}

// ResolverOptions converts the [resolver] section into resolver options.
func (m *Manifest) ResolverOptions() []resolve.Option {
	opts := []resolve.Option{resolve.WithParallelism(m.Resolver.Parallelism)}
	if m.Resolver.InheritedMethods {
		opts = append(opts, resolve.WithInheritedMethods())
	}
	return opts
}
