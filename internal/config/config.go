// Package config provides configuration management for padkey.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"padkey/internal/osutils"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PADKEY_POINTER_ACCEL
const EnvPrefix = "PADKEY"

// Config represents the application configuration
type Config struct {
	// PollInterval is the fixed sleep between polling ticks
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// Pointer shapes left stick to pointer motion
	Pointer CurveConfig `mapstructure:"pointer"`

	// Scroll shapes right stick to wheel ticks
	Scroll CurveConfig `mapstructure:"scroll"`

	Nav     NavConfig     `mapstructure:"nav"`
	Focus   FocusConfig   `mapstructure:"focus"`
	Buttons ButtonsConfig `mapstructure:"buttons"`
	Overlay OverlayConfig `mapstructure:"overlay"`
	Input   InputConfig   `mapstructure:"input"`

	// DryRun logs synthetic input instead of injecting it
	DryRun bool `mapstructure:"dry_run"`

	Log LogConfig `mapstructure:"log"`
}

// CurveConfig is a dead zone plus a cubic acceleration curve
type CurveConfig struct {
	DeadZone float64 `mapstructure:"deadzone"`
	Base     float64 `mapstructure:"base"`
	Accel    float64 `mapstructure:"accel"`
}

// NavConfig tunes the overlay navigation stick
type NavConfig struct {
	// Threshold is the stick deflection at which a direction is entered
	Threshold float64 `mapstructure:"threshold"`
}

// FocusConfig tunes the focus guardian
type FocusConfig struct {
	// Settle is the pause after asking the OS to restore the target window
	Settle time.Duration `mapstructure:"settle"`
}

// ButtonsConfig binds logical controller buttons to actions. Values are
// button names such as "start", "south" or "rt".
type ButtonsConfig struct {
	Toggle     []string `mapstructure:"toggle"`
	LeftClick  string   `mapstructure:"left_click"`
	RightClick string   `mapstructure:"right_click"`
	Menu       string   `mapstructure:"menu"`
	Confirm    string   `mapstructure:"confirm"`
	Back       string   `mapstructure:"back"`
	Shift      string   `mapstructure:"shift"`
}

// OverlayConfig configures the front-end channel
type OverlayConfig struct {
	// Addr is the listen address of the websocket/HTTP server
	Addr string `mapstructure:"addr"`

	// Token is an optional bearer token required from clients
	Token string `mapstructure:"token"`
}

// InputConfig configures the platform injector
type InputConfig struct {
	// UinputPath is the uinput device node (Linux only)
	UinputPath string `mapstructure:"uinput_path"`
}

// LogConfig configures logging
type LogConfig struct {
	// File, when set, receives a copy of the log
	File string `mapstructure:"file"`
}

// defaults lists every key with its built-in value
var defaults = map[string]interface{}{
	"poll_interval":       10 * time.Millisecond,
	"pointer.deadzone":    0.1,
	"pointer.base":        1.0,
	"pointer.accel":       24.0,
	"scroll.deadzone":     0.1,
	"scroll.base":         0.0,
	"scroll.accel":        1.02,
	"nav.threshold":       0.5,
	"focus.settle":        10 * time.Millisecond,
	"buttons.toggle":      []string{"start", "select"},
	"buttons.left_click":  "rt",
	"buttons.right_click": "lt",
	"buttons.menu":        "start",
	"buttons.confirm":     "south",
	"buttons.back":        "east",
	"buttons.shift":       "select",
	"overlay.addr":        "127.0.0.1:17321",
	"overlay.token":       "",
	"input.uinput_path":   "/dev/uinput",
	"dry_run":             false,
	"log.file":            "",
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"dry-run":      "dry_run",
	"overlay-addr": "overlay.addr",
}

// DefaultConfig returns a new Config with the built-in defaults
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// defaults are static; this only fails on a programming error
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Manager handles loading, watching and saving configuration
type Manager struct {
	mu         sync.Mutex
	v          *viper.Viper
	configPath string
	config     *Config
	onChanged  []func(*Config)
}

// NewManager creates a manager for the file at path. An empty path selects
// config.yaml in the per-user configuration directory.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		dir, err := osutils.ConfigDir("padkey")
		if err != nil {
			return nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}

	v := newViper()
	v.SetConfigFile(path)
	return &Manager{
		v:          v,
		configPath: path,
		config:     DefaultConfig(),
	}, nil
}

// Path returns the configuration file path
func (m *Manager) Path() string {
	return m.configPath
}

// BindFlags lets command-line flags override file and environment values.
// Only flags the user actually set take effect.
func (m *Manager) BindFlags(flags *pflag.FlagSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := m.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the configuration file. A missing file is not an error: the
// defaults, environment and flags still apply.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", m.configPath, err)
		}
		log.Printf("Config: %s not found, using defaults", m.configPath)
	} else {
		log.Printf("Config: loaded %s", m.configPath)
	}
	return m.decodeLocked()
}

func (m *Manager) decodeLocked() error {
	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	m.config = cfg
	return nil
}

// Get returns the current configuration. Callers must not modify it.
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// RegisterChangeCallback registers a function to be called with the new
// configuration after the file changes on disk
func (m *Manager) RegisterChangeCallback(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = append(m.onChanged, fn)
}

// Watch starts watching the configuration file for changes
func (m *Manager) Watch() {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		m.mu.Lock()
		if err := m.decodeLocked(); err != nil {
			m.mu.Unlock()
			log.Printf("Config: ignoring change to %s: %v", e.Name, err)
			return
		}
		cfg := m.config
		callbacks := append([]func(*Config){}, m.onChanged...)
		m.mu.Unlock()

		log.Printf("Config: reloaded after %s on %s", e.Op, e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	m.v.WatchConfig()
}

// Save writes the current settings, defaults included, to the configuration file
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	log.Printf("Config: Saving configuration to %s", m.configPath)
	return m.v.WriteConfigAs(m.configPath)
}
