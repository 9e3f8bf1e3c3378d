package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Client  ClientConfig  `mapstructure:"client"`
	Stub    StubConfig    `mapstructure:"stub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ClientConfig configures the outbound API client and local state
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	StateDir       string        `mapstructure:"state_dir"`
}

// StubConfig configures the development stub backend
type StubConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Client
	v.SetDefault("client.base_url", "http://localhost:8090/api/v1")
	v.SetDefault("client.request_timeout", "30s")
	v.SetDefault("client.poll_interval", "5s")
	v.SetDefault("client.state_dir", defaultStateDir())

	// Stub server
	v.SetDefault("stub.server.host", "0.0.0.0")
	v.SetDefault("stub.server.port", 8090)
	v.SetDefault("stub.server.read_timeout", "30s")
	v.SetDefault("stub.server.write_timeout", "30s")
	v.SetDefault("stub.server.shutdown_timeout", "10s")

	// Stub storage
	v.SetDefault("stub.database.path", "./deskflow-stub.db")

	// Stub auth
	v.SetDefault("stub.auth.jwt_secret", "dev-only-secret-change-me")
	v.SetDefault("stub.auth.token_ttl", "24h")

	// Stub redis rate limiter (off unless explicitly enabled)
	v.SetDefault("stub.redis.enabled", false)
	v.SetDefault("stub.redis.host", "localhost")
	v.SetDefault("stub.redis.port", 6379)
	v.SetDefault("stub.redis.db", 0)
	v.SetDefault("stub.security.rate_limit.requests_per_minute", 60)
	v.SetDefault("stub.security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("client.base_url", "DESKFLOW_API_URL")
	v.BindEnv("client.state_dir", "DESKFLOW_STATE_DIR")
	v.BindEnv("client.poll_interval", "DESKFLOW_POLL_INTERVAL")

	v.BindEnv("stub.server.port", "STUB_PORT")
	v.BindEnv("stub.database.path", "STUB_DB_PATH")
	v.BindEnv("stub.auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("stub.redis.enabled", "REDIS_ENABLED")
	v.BindEnv("stub.redis.password", "REDIS_PASSWORD")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deskflow"
	}
	return filepath.Join(home, ".deskflow")
}
