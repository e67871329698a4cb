package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all entropymem configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Journal JournalConfig `yaml:"journal"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	// Capacity is the record's buffer size ceiling. One byte is reserved,
	// so at most Capacity-1 content bytes are ever stored. Fixed at deploy
	// time; the decay rate and alphabet are not configurable.
	Capacity int `yaml:"capacity"`
}

type JournalConfig struct {
	Path string `yaml:"path"` // resolved at runtime via store.DefaultDBPath() when empty
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 39777,
		},
		Storage: StorageConfig{
			Capacity: 1024,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not
// an error; callers get the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Storage.Capacity < 2 {
		return cfg, fmt.Errorf("config %s: storage.capacity must be at least 2, got %d", path, cfg.Storage.Capacity)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
