// Package manifest handles nick.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/nick/vm"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "nick.toml"

// Output formats for evaluation results.
const (
	FormatInspect = "inspect"
	FormatHex     = "hex"
	FormatCBOR    = "cbor"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatInspect, FormatHex, FormatCBOR}

// Manifest represents a nick.toml configuration.
type Manifest struct {
	Eval   EvalConfig   `toml:"eval"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`

	// Dir is the directory containing the nick.toml file (set at load time).
	// Relative paths in the file are resolved against it.
	Dir string `toml:"-"`
}

// EvalConfig configures the interpreter.
type EvalConfig struct {
	MaxDepth int `toml:"max-depth"`
}

// OutputConfig configures how results are printed.
type OutputConfig struct {
	Format string `toml:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// CacheConfig configures the result cache. An empty path disables it.
type CacheConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no nick.toml exists.
func Default() *Manifest {
	return &Manifest{
		Eval:   EvalConfig{MaxDepth: vm.DefaultMaxDepth},
		Output: OutputConfig{Format: FormatInspect},
	}
}

// Load parses the nick.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a configuration file at an explicit path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a nick.toml file,
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

// Validate checks field values.
func (m *Manifest) Validate() error {
	if m.Eval.MaxDepth <= 0 {
		return fmt.Errorf("eval.max-depth must be positive, got %d", m.Eval.MaxDepth)
	}
	if !ValidFormat(m.Output.Format) {
		return fmt.Errorf("output.format must be one of %s, got %q",
			strings.Join(Formats, ", "), m.Output.Format)
	}
	if m.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative, got %d", m.Log.Verbosity)
	}
	return nil
}

// ValidFormat reports whether f names an output format.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// CachePath returns the absolute cache database path, or "" when caching
// is disabled.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

// LogFile returns the absolute log file path, or "" for stderr.
func (m *Manifest) LogFile() string {
	return m.resolve(m.Log.File)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
