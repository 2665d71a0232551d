package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/distkv/distkv/worker/internal/storage"
)

// WorkerConfig identifies this worker to the coordinator and binds its RPC server
type WorkerConfig struct {
	ID              string        `yaml:"id"`
	Address         string        `yaml:"address"` // advertised to the coordinator
	Host            string        `yaml:"host"`    // listen host
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ControllerConfig holds the heartbeat client configuration
type ControllerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	ReconnectBackoff  time.Duration `yaml:"reconnect_backoff"`
	SyncTimeout       time.Duration `yaml:"sync_timeout"`
}

// BoltConfig holds bolt engine configuration
type BoltConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds postgres engine configuration
type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Database       string `yaml:"database"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	MaxConnections int    `yaml:"max_connections"`
	MinConnections int    `yaml:"min_connections"`
}

// StorageConfig selects the local storage engine
type StorageConfig struct {
	Engine   string         `yaml:"engine"`
	Bolt     BoltConfig     `yaml:"bolt"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete configuration for a worker
type Config struct {
	Worker     WorkerConfig     `yaml:"worker"`
	Controller ControllerConfig `yaml:"controller"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoadConfig loads configuration from filePath if it exists, applies
// defaults and environment overrides, then validates
func LoadConfig(filePath string) (*Config, error) {
	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// environment and defaults only
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(&cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for unspecified configuration
func setDefaults(cfg *Config) {
	if cfg.Worker.Host == "" {
		cfg.Worker.Host = "0.0.0.0"
	}
	if cfg.Worker.Port == 0 {
		cfg.Worker.Port = 8001
	}
	if cfg.Worker.Address == "" {
		if hostname, err := os.Hostname(); err == nil {
			cfg.Worker.Address = hostname
		} else {
			cfg.Worker.Address = "localhost"
		}
	}
	if cfg.Worker.ShutdownTimeout == 0 {
		cfg.Worker.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Controller.Host == "" {
		cfg.Controller.Host = "kv-controller"
	}
	if cfg.Controller.Port == 0 {
		cfg.Controller.Port = 9090
	}
	if cfg.Controller.HeartbeatInterval == 0 {
		cfg.Controller.HeartbeatInterval = 2 * time.Second
	}
	if cfg.Controller.ReconnectBackoff == 0 {
		cfg.Controller.ReconnectBackoff = 5 * time.Second
	}
	if cfg.Controller.SyncTimeout == 0 {
		cfg.Controller.SyncTimeout = 10 * time.Second
	}

	if cfg.Storage.Engine == "" {
		cfg.Storage.Engine = storage.EngineBolt
	}
	if cfg.Storage.Bolt.Path == "" {
		cfg.Storage.Bolt.Path = "/var/lib/distkv/" + cfg.Worker.ID + ".db"
	}
	if cfg.Storage.Postgres.Host == "" {
		cfg.Storage.Postgres.Host = "localhost"
	}
	if cfg.Storage.Postgres.Port == 0 {
		cfg.Storage.Postgres.Port = 5432
	}
	if cfg.Storage.Postgres.Database == "" {
		cfg.Storage.Postgres.Database = "distkv"
	}
	if cfg.Storage.Postgres.User == "" {
		cfg.Storage.Postgres.User = "postgres"
	}
	if cfg.Storage.Postgres.MaxConnections == 0 {
		cfg.Storage.Postgres.MaxConnections = 10
	}
	if cfg.Storage.Postgres.MinConnections == 0 {
		cfg.Storage.Postgres.MinConnections = 2
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9091
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvironmentOverrides applies environment variable overrides
func applyEnvironmentOverrides(cfg *Config) error {
	strs := map[string]*string{
		"CONTROLLER_HOST":   &cfg.Controller.Host,
		"WORKER_ID":         &cfg.Worker.ID,
		"WORKER_ADDRESS":    &cfg.Worker.Address,
		"STORAGE_ENGINE":    &cfg.Storage.Engine,
		"BOLT_PATH":         &cfg.Storage.Bolt.Path,
		"DATABASE_HOST":     &cfg.Storage.Postgres.Host,
		"DATABASE_NAME":     &cfg.Storage.Postgres.Database,
		"DATABASE_USER":     &cfg.Storage.Postgres.User,
		"DATABASE_PASSWORD": &cfg.Storage.Postgres.Password,
		"LOG_LEVEL":         &cfg.Logging.Level,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CONTROLLER_PORT":  &cfg.Controller.Port,
		"GRPC_SERVER_PORT": &cfg.Worker.Port,
		"DATABASE_PORT":    &cfg.Storage.Postgres.Port,
	}
	for env, dst := range ints {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", env, v, err)
		}
		*dst = n
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Worker.ID == "" {
		return fmt.Errorf("worker.id is required")
	}
	if c.Worker.Port < 1 || c.Worker.Port > 65535 {
		return fmt.Errorf("worker.port must be between 1 and 65535")
	}
	if c.Controller.Port < 1 || c.Controller.Port > 65535 {
		return fmt.Errorf("controller.port must be between 1 and 65535")
	}
	switch c.Storage.Engine {
	case storage.EngineBolt, storage.EnginePostgres, storage.EngineMemory:
	default:
		return fmt.Errorf("storage.engine must be one of bolt, postgres, memory; got %q", c.Storage.Engine)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port must be between 1 and 65535")
	}
	return nil
}

// ControllerAddress is the coordinator's heartbeat endpoint
func (c *Config) ControllerAddress() string {
	return fmt.Sprintf("%s:%d", c.Controller.Host, c.Controller.Port)
}

// StorageOptions converts the storage section for storage.Open
func (c *Config) StorageOptions() storage.Options {
	pg := c.Storage.Postgres
	return storage.Options{
		Engine:   c.Storage.Engine,
		BoltPath: c.Storage.Bolt.Path,
		Postgres: storage.PostgresOptions{
			Host:           pg.Host,
			Port:           pg.Port,
			Database:       pg.Database,
			User:           pg.User,
			Password:       pg.Password,
			MaxConnections: pg.MaxConnections,
			MinConnections: pg.MinConnections,
		},
	}
}
