package config

import (
	"errors"
	"time"
)

// Config represents the coordinator service configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Membership  MembershipConfig  `mapstructure:"membership"`
	RPC         RPCConfig         `mapstructure:"rpc"`
	Background  BackgroundConfig  `mapstructure:"background"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents the gRPC and HTTP listener configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MembershipConfig represents ring and liveness configuration
type MembershipConfig struct {
	VirtualNodes     int           `mapstructure:"virtual_nodes"`
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout"`
	ReapInterval     time.Duration `mapstructure:"reap_interval"`
}

// RPCConfig represents deadlines for calls to workers
type RPCConfig struct {
	UnaryTimeout  time.Duration `mapstructure:"unary_timeout"`
	StreamTimeout time.Duration `mapstructure:"stream_timeout"`
}

// BackgroundConfig sizes the pool running async replication, read repair
// and recovery
type BackgroundConfig struct {
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

// CatalogConfig selects the key catalog backend
type CatalogConfig struct {
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents Redis key catalog configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimiterConfig represents HTTP rate limiting configuration
type RateLimiterConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	// CatalogBackendMemory keeps the catalog in process memory
	CatalogBackendMemory = "memory"
	// CatalogBackendRedis keeps the catalog in a Redis set
	CatalogBackendRedis = "redis"
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if !validPort(c.Server.GRPCPort) {
		return errors.New("server.grpc_port must be between 1 and 65535")
	}
	if !validPort(c.Server.HTTPPort) {
		return errors.New("server.http_port must be between 1 and 65535")
	}
	if c.Server.GRPCPort == c.Server.HTTPPort {
		return errors.New("server.grpc_port and server.http_port must differ")
	}
	if c.Membership.VirtualNodes <= 0 {
		return errors.New("membership.virtual_nodes must be positive")
	}
	if c.Membership.HeartbeatTimeout <= 0 {
		return errors.New("membership.heartbeat_timeout must be positive")
	}
	if c.Membership.ReapInterval <= 0 {
		return errors.New("membership.reap_interval must be positive")
	}
	if c.RPC.UnaryTimeout <= 0 || c.RPC.StreamTimeout <= 0 {
		return errors.New("rpc timeouts must be positive")
	}
	switch c.Catalog.Backend {
	case CatalogBackendMemory:
	case CatalogBackendRedis:
		if c.Catalog.Redis.Host == "" {
			return errors.New("catalog.redis.host is required for the redis backend")
		}
	default:
		return errors.New("catalog.backend must be one of: memory, redis")
	}
	if c.RateLimiter.Enabled && (c.RateLimiter.RequestsPerSecond <= 0 || c.RateLimiter.BurstSize <= 0) {
		return errors.New("rate_limiter requires positive requests_per_second and burst_size")
	}
	if c.Metrics.Enabled && !validPort(c.Metrics.Port) {
		return errors.New("metrics.port must be between 1 and 65535")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	return nil
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			GRPCPort:        9090,
			HTTPPort:        8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Membership: MembershipConfig{
			VirtualNodes:     100,
			HeartbeatTimeout: 6 * time.Second,
			ReapInterval:     2 * time.Second,
		},
		RPC: RPCConfig{
			UnaryTimeout:  5 * time.Second,
			StreamTimeout: 10 * time.Second,
		},
		Background: BackgroundConfig{
			Workers:     8,
			QueueSize:   1024,
			StopTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Backend: CatalogBackendMemory,
			Redis: RedisConfig{
				Host: "localhost",
				Port: 6379,
				DB:   0,
			},
		},
		RateLimiter: RateLimiterConfig{
			Enabled:           false,
			RequestsPerSecond: 1000,
			BurstSize:         2000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9100,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
