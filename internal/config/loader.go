package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/llmctx/internal/model"
)

// DefaultConfigFile is the configuration file name looked up in the
// current and home directories.
const DefaultConfigFile = ".llmctx"

// xdgConfigFile is the file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .llmctx configuration file.
type File struct {
	// DataDir overrides where data.json is written.
	DataDir string `yaml:"dataDir,omitempty"`

	// ListenAddr overrides the web form address.
	ListenAddr string `yaml:"listenAddr,omitempty"`

	// CommandTimeout overrides the per-command timeout, e.g. "45s".
	CommandTimeout time.Duration `yaml:"commandTimeout,omitempty"`

	// Concurrency overrides how many collectors run at once.
	Concurrency int `yaml:"concurrency,omitempty"`

	// HistoryDir overrides the snapshot database directory.
	// An explicit empty string disables history.
	HistoryDir *string `yaml:"historyDir,omitempty"`

	// Ping configures the connectivity check.
	Ping PingFile `yaml:"ping,omitempty"`

	// Options replaces the form's choice lists. Lists left out keep their defaults.
	Options model.FormOptions `yaml:"options,omitempty"`
}

// PingFile is the ping section of the configuration file.
type PingFile struct {
	Target  string        `yaml:"target,omitempty"`
	Count   int           `yaml:"count,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .llmctx in the current directory
// 3. Look for .llmctx in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Load builds the configuration from defaults and the config file.
// An explicitly given path that does not exist is an error; a missing
// file found by search is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, ErrConfigNotFound
		}
		return cfg, nil
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Apply(f)
	cfg.ConfigFilePath = path
	return cfg, nil
}
