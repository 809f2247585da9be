package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Roster    RosterConfig    `yaml:"roster"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	APIToken   string `yaml:"api_token"`
	AdminToken string `yaml:"admin_token"`
}

type RosterConfig struct {
	Capacity int `yaml:"capacity"`
}

type KeepaliveConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

// UnmarshalYAML accepts Go duration strings such as "1m" or "6h".
func (k *KeepaliveConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		SweepInterval string `yaml:"sweep_interval"`
		IdleTimeout   string `yaml:"idle_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.SweepInterval != "" {
		d, err := time.ParseDuration(raw.SweepInterval)
		if err != nil {
			return fmt.Errorf("invalid sweep_interval: %w", err)
		}
		k.SweepInterval = d
	}
	if raw.IdleTimeout != "" {
		d, err := time.ParseDuration(raw.IdleTimeout)
		if err != nil {
			return fmt.Errorf("invalid idle_timeout: %w", err)
		}
		k.IdleTimeout = d
	}
	return nil
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "fivestack.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Roster: RosterConfig{
			Capacity: 5,
		},
		Keepalive: KeepaliveConfig{
			SweepInterval: time.Minute,
			IdleTimeout:   0,
		},
	}

	if path := os.Getenv("FIVESTACK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("FIVESTACK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("FIVESTACK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FIVESTACK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("FIVESTACK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("FIVESTACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if token := os.Getenv("FIVESTACK_API_TOKEN"); token != "" {
		cfg.Auth.APIToken = token
	}
	if token := os.Getenv("FIVESTACK_ADMIN_TOKEN"); token != "" {
		cfg.Auth.AdminToken = token
	}
	if capStr := os.Getenv("FIVESTACK_CAPACITY"); capStr != "" {
		capacity, err := strconv.Atoi(capStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FIVESTACK_CAPACITY: %w", err)
		}
		cfg.Roster.Capacity = capacity
	}
	if idleStr := os.Getenv("FIVESTACK_IDLE_TIMEOUT"); idleStr != "" {
		idle, err := time.ParseDuration(idleStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FIVESTACK_IDLE_TIMEOUT: %w", err)
		}
		cfg.Keepalive.IdleTimeout = idle
	}

	if cfg.Roster.Capacity < 1 {
		return Config{}, fmt.Errorf("roster capacity must be at least 1, got %d", cfg.Roster.Capacity)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
