package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"chatgrep/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version   int            `toml:"version"`
	LogsRoot  string         `toml:"logs_root"`  // directory tree with transcript .jsonl files
	OutputDir string         `toml:"output_dir"` // where extracted conversations are written
	Search    SearchSettings `toml:"search"`
	UI        UISettings     `toml:"ui"`
	Semantic  Semantic       `toml:"semantic"`
}

// SearchSettings tunes the debounced search worker
type SearchSettings struct {
	DebounceMS    int  `toml:"debounce_ms"`
	PollMS        int  `toml:"poll_ms"`
	MaxResults    int  `toml:"max_results"`
	CaseSensitive bool `toml:"case_sensitive"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowPreview    bool `toml:"show_preview"`
	VisibleResults int  `toml:"visible_results"`
}

// Semantic configures the optional semantic search capability
type Semantic struct {
	Enabled   bool   `toml:"enabled"`
	APIKeyEnv string `toml:"api_key_env"` // env var holding the embedding API key
	Model     string `toml:"model"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.LogsRoot == "" {
		c.LogsRoot = defaultLogsRoot()
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir()
	}
	if c.Search.DebounceMS == 0 {
		c.Search.DebounceMS = 300
	}
	if c.Search.PollMS == 0 {
		c.Search.PollMS = 50
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 20
	}
	if c.UI.VisibleResults == 0 {
		c.UI.VisibleResults = 10
	}
	if c.Semantic.APIKeyEnv == "" {
		c.Semantic.APIKeyEnv = "OPENAI_API_KEY"
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.Search.DebounceMS < 0 || c.Search.PollMS < 0 {
		return fmt.Errorf("search intervals must not be negative")
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("max_results must be at least 1")
	}
	return nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "chatgrep", "config.toml")
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultPath()}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Load loads the configuration from the default path, falling back to
// defaults when no file exists yet.
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cs.notifyLoaded(cfg)
		return cfg, nil
	}

	cfg, err := cs.LoadFromPath(cs.filePath)
	if err != nil {
		return nil, err
	}
	cs.notifyLoaded(cfg)
	return cfg, nil
}

// Save saves the configuration to the default path
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (cs *configService) notifyLoaded(cfg *Config) {
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			LogsRoot:  cfg.LogsRoot,
			OutputDir: cfg.OutputDir,
		})
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func defaultLogsRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".claude", "projects")
}

func defaultOutputDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".claude", "claude_conversations")
}
