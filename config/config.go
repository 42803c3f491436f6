package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"dashplatform/core"
	"dashplatform/fees"
)

// Storage backend names accepted by Config.Backend.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Config drives a node process: where chain state lives, how proposer
// payouts mature, and how logs and telemetry leave the process.
type Config struct {
	DataDir              string `toml:"DataDir"`
	Backend              string `toml:"Backend"`
	ProposerPayoutDelay  uint64 `toml:"ProposerPayoutDelay"`
	DefaultFeeMultiplier byte   `toml:"DefaultFeeMultiplier"`

	Log       Log       `toml:"Log"`
	Telemetry Telemetry `toml:"Telemetry"`
}

// Default returns the configuration a fresh node starts from.
func Default() Config {
	return Config{
		DataDir:              "./drive-data",
		Backend:              BackendLevelDB,
		ProposerPayoutDelay:  core.DefaultProposerPayoutDelay,
		DefaultFeeMultiplier: fees.DefaultMultiplierByte,
		Log: Log{
			Service:     "drive",
			Environment: "local",
			MaxSizeMB:   100,
			MaxBackups:  5,
			MaxAgeDays:  28,
		},
		Telemetry: Telemetry{
			Endpoint: "localhost:4318",
			Insecure: true,
			Metrics:  true,
			Traces:   true,
		},
	}
}

// Load loads the configuration from the given path. A missing file is
// not an error: the defaults are written there so operators have a
// file to edit.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) normalize() {
	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.DataDir == "" {
		c.DataDir = Default().DataDir
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendLevelDB
	}
	if strings.TrimSpace(c.Log.Service) == "" {
		c.Log.Service = Default().Log.Service
	}
}
