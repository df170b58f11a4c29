// Package daemoncfg loads the daemon-process settings that do not belong in
// gamemode.ini: the control socket path and the config-watch debounce. These
// are fixed for the life of the process and read once at startup from a
// small YAML file, with defaults when the file is absent.
package daemoncfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gamemode/gamemoded/internal/filesys"
)

var (
	// ErrInvalidSettings is returned when the settings fail validation.
	ErrInvalidSettings = errors.New("invalid daemon settings")
	// ErrNoSettings is returned internally when the settings file is missing.
	ErrNoSettings = errors.New("settings file not found")
)

const (
	// DefaultSocketPath is the default path for the control socket.
	DefaultSocketPath = "/var/run/gamemoded.socket"
	// DefaultConfigPath is the default path of the settings file.
	DefaultConfigPath = "/etc/gamemoded/config.yaml"
	// DefaultWatchDebounce is the default config-watch debounce window.
	DefaultWatchDebounce = 100 * time.Millisecond
)

// Settings holds the daemon-process configuration.
type Settings struct {
	Socket SocketSettings `yaml:"socket"`
	Watch  WatchSettings  `yaml:"watch"`
}

// SocketSettings holds control-socket configuration.
type SocketSettings struct {
	Path string `yaml:"path"`
}

// WatchSettings holds config-watch configuration.
type WatchSettings struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Provider defines the interface for loading daemon settings.
type Provider interface {
	Load() (*Settings, error)
}

// FSProvider implements Provider against a filesystem.
type FSProvider struct {
	fs   filesys.ReadWriteFS
	path string
}

var _ Provider = (*FSProvider)(nil)

// New creates a provider reading from the default settings path.
func New() Provider {
	return NewWithPath(filesys.OS(), DefaultConfigPath)
}

// NewWithPath creates a provider with a specific filesystem and path.
func NewWithPath(fs filesys.ReadWriteFS, path string) Provider {
	return &FSProvider{fs: fs, path: path}
}

// Default returns the settings used when no file exists.
func Default() *Settings {
	return &Settings{
		Socket: SocketSettings{Path: DefaultSocketPath},
		Watch:  WatchSettings{Debounce: DefaultWatchDebounce},
	}
}

// Load reads and validates the settings, falling back to defaults when the
// file is missing.
func (p *FSProvider) Load() (*Settings, error) {
	_ = p.ensureConfigDir()

	set, err := p.loadAndParse()
	if err != nil {
		if errors.Is(err, ErrNoSettings) {
			return Default(), nil
		}
		return nil, err
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	return set, nil
}

// Validate checks that all required fields are usable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Socket.Path) == "" {
		return errors.New("socket path cannot be empty")
	}
	if s.Watch.Debounce < 10*time.Millisecond {
		return errors.New("watch debounce must be at least 10ms")
	}
	return nil
}

func (p *FSProvider) ensureConfigDir() error {
	dir := filepath.Dir(p.path)
	if _, err := p.fs.Stat(dir); os.IsNotExist(err) {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	return nil
}

func (p *FSProvider) loadAndParse() (*Settings, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSettings
		}
		return nil, fmt.Errorf("opening settings file: %w", err)
	}
	defer f.Close()

	var set Settings
	if err := yaml.NewDecoder(f).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding settings file: %w", err)
	}

	return &set, nil
}
