// Package config loads settings from the JSON file under the user config
// dir, then applies PRISM_* environment overrides on top. The file is
// optional; defaults apply when it is absent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kelseyhightower/envconfig"
)

type UIConfig struct {
	RefreshIntervalSeconds int    `json:"refresh_interval_seconds" envconfig:"PRISM_REFRESH_INTERVAL_SECONDS"`
	Theme                  string `json:"theme" envconfig:"PRISM_THEME"`
}

type ServerConfig struct {
	Addr    string `json:"addr" envconfig:"PRISM_ADDR"`
	Verbose bool   `json:"verbose" envconfig:"PRISM_VERBOSE"`
}

type AggregateConfig struct {
	RequestTokenScale  int64   `json:"request_token_scale" envconfig:"PRISM_REQUEST_TOKEN_SCALE"`
	InputCostPerToken  float64 `json:"input_cost_per_token" envconfig:"PRISM_INPUT_COST_PER_TOKEN"`
	OutputCostPerToken float64 `json:"output_cost_per_token" envconfig:"PRISM_OUTPUT_COST_PER_TOKEN"`
}

type Config struct {
	Identity  string          `json:"identity" envconfig:"PRISM_IDENTITY"`
	DataDir   string          `json:"data_dir" envconfig:"PRISM_DATA_DIR"`
	DBPath    string          `json:"db_path" envconfig:"PRISM_DB_PATH"`
	UI        UIConfig        `json:"ui"`
	Server    ServerConfig    `json:"server"`
	Aggregate AggregateConfig `json:"aggregate"`
}

func DefaultConfig() Config {
	return Config{
		DataDir: filepath.Join(ConfigDir(), "integrations"),
		DBPath:  filepath.Join(ConfigDir(), "history.db"),
		UI: UIConfig{
			RefreshIntervalSeconds: 30,
			Theme:                  "Catppuccin Mocha",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8497",
		},
		Aggregate: AggregateConfig{
			RequestTokenScale:  1000,
			InputCostPerToken:  3e-6,
			OutputCostPerToken: 15e-6,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "prism")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "prism")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the file, fills gaps with defaults, then lets PRISM_*
// environment variables win over both.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("applying env overrides: %w", err)
	}

	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = 30
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = DefaultConfig().UI.Theme
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultConfig().Server.Addr
	}
	if cfg.Aggregate.RequestTokenScale <= 0 {
		cfg.Aggregate.RequestTokenScale = 1000
	}
	if cfg.Aggregate.InputCostPerToken <= 0 {
		cfg.Aggregate.InputCostPerToken = 3e-6
	}
	if cfg.Aggregate.OutputCostPerToken <= 0 {
		cfg.Aggregate.OutputCostPerToken = 15e-6
	}

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
