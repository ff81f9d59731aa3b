package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/llmctx/internal/collector"
	"github.com/nao1215/llmctx/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "llmctx"

	// DefaultDataDir is where data.json is written, relative to the working directory.
	DefaultDataDir = "data"

	// DataFileName is the name of the persisted document.
	DataFileName = "data.json"

	// DefaultListenAddr is the web form address. Port 8501 is what users of
	// the previous Streamlit tool already have bookmarked.
	DefaultListenAddr = "127.0.0.1:8501"

	// DefaultCommandTimeout bounds each collector subprocess. pip freeze on a
	// large environment is the slowest command and usually finishes in seconds.
	DefaultCommandTimeout = 30 * time.Second

	// DefaultPingTarget is the host used for the connectivity check.
	DefaultPingTarget = collector.DefaultPingTarget

	// DefaultPingCount is the number of echo requests.
	DefaultPingCount = collector.DefaultPingCount

	// DefaultPingTimeout bounds the whole ping command.
	DefaultPingTimeout = collector.DefaultPingTimeout

	// DefaultConcurrency is how many collectors run at the same time.
	DefaultConcurrency = collector.DefaultConcurrency

	// HistoryDBName is the SQLite file holding saved document snapshots.
	HistoryDBName = "history.db"
)

// Config holds all configuration options for llmctx.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed explicitly to the components that need it.
type Config struct {
	// DataDir is the directory holding data.json. Created on first save.
	DataDir string

	// ListenAddr is the host:port of the web form.
	ListenAddr string

	// CommandTimeout bounds every collector subprocess except ping.
	CommandTimeout time.Duration

	// PingTarget is the host pinged by the connectivity check.
	PingTarget string

	// PingCount is the number of echo requests sent.
	PingCount int

	// PingTimeout bounds the ping command as a whole.
	PingTimeout time.Duration

	// Concurrency is the number of collectors that run in parallel.
	// 1 runs them one after another.
	Concurrency int

	// HistoryDir is the directory of the snapshot database.
	// Empty disables history.
	HistoryDir string

	// Options are the choices offered by the form.
	Options model.FormOptions

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the config file that was loaded, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DataDir:        DefaultDataDir,
		ListenAddr:     DefaultListenAddr,
		CommandTimeout: DefaultCommandTimeout,
		PingTarget:     DefaultPingTarget,
		PingCount:      DefaultPingCount,
		PingTimeout:    DefaultPingTimeout,
		Concurrency:    DefaultConcurrency,
		HistoryDir:     XDGDataDir(),
		Options:        model.DefaultFormOptions(),
	}
}

// DataFile returns the path of data.json.
func (c *Config) DataFile() string {
	return filepath.Join(c.DataDir, DataFileName)
}

// Apply overrides the configuration with every value set in f.
// Zero values in f leave the current value untouched.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
	if f.ListenAddr != "" {
		c.ListenAddr = f.ListenAddr
	}
	if f.CommandTimeout > 0 {
		c.CommandTimeout = f.CommandTimeout
	}
	if f.Concurrency > 0 {
		c.Concurrency = f.Concurrency
	}
	if f.HistoryDir != nil {
		c.HistoryDir = *f.HistoryDir
	}
	if f.Ping.Target != "" {
		c.PingTarget = f.Ping.Target
	}
	if f.Ping.Count > 0 {
		c.PingCount = f.Ping.Count
	}
	if f.Ping.Timeout > 0 {
		c.PingTimeout = f.Ping.Timeout
	}
	c.Options = f.Options.Merge(c.Options)
}

// CollectorSettings returns the collection settings held by c.
func (c *Config) CollectorSettings() collector.Settings {
	return collector.Settings{
		PingTarget:  c.PingTarget,
		PingCount:   c.PingCount,
		PingTimeout: c.PingTimeout,
		Concurrency: c.Concurrency,
	}
}

// XDGDataDir returns the XDG data directory for llmctx.
// On Linux: ~/.local/share/llmctx
// On macOS: ~/Library/Application Support/llmctx
// On Windows: %LOCALAPPDATA%\llmctx
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for llmctx.
// On Linux: ~/.config/llmctx
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrEmptyDataDir
	}
	if c.CommandTimeout <= 0 {
		return ErrInvalidCommandTimeout
	}
	if c.PingTarget == "" {
		return ErrEmptyPingTarget
	}
	if c.PingCount <= 0 {
		return ErrInvalidPingCount
	}
	if c.PingTimeout <= 0 {
		return ErrInvalidPingTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if len(c.Options.IDEs) == 0 || len(c.Options.Shells) == 0 ||
		len(c.Options.CIProviders) == 0 || len(c.Options.DeploymentTargets) == 0 {
		return ErrEmptyOptions
	}
	return nil
}
