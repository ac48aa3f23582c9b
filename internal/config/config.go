// Package config loads runtime configuration from a TOML file with
// environment overrides for deployment-specific values and secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"drs/internal/storage"
)

const (
	DefaultListenAddr     = "127.0.0.1:5000"
	DefaultServiceBaseURL = "http://127.0.0.1:5000"
	DefaultDBFileName     = "drs.db"
	DefaultDataDirName    = "drs-data"
	DefaultLogLevel       = "info"

	DefaultMaxUploadBytes     int64 = 1 << 30 // 1 GiB
	DefaultMultipartMaxMemory int64 = 8 << 20 // 8 MiB

	configPathEnvKey = "DRS_CONFIG"
	envPrefix        = "drs"
)

// S3Config parameterizes the object-store backend. Credentials are not read
// from the file; they come from DRS_S3_ACCESS_KEY / DRS_S3_SECRET_KEY.
type S3Config struct {
	Endpoint string `toml:"endpoint"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	UseHTTPS bool   `toml:"use_https"`
}

// AuthzConfig points at the authorization service.
type AuthzConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
}

// Config defines runtime configuration for the service.
type Config struct {
	ListenAddr         string      `toml:"listen_addr"`
	ServiceBaseURL     string      `toml:"service_base_url"`
	DBPath             string      `toml:"db_path"`
	Backend            string      `toml:"backend"`
	DataDir            string      `toml:"data_dir"`
	TempDir            string      `toml:"temp_dir"`
	LogLevel           string      `toml:"log_level"`
	Environment        string      `toml:"environment"`
	MaxUploadBytes     int64       `toml:"max_upload_bytes"`
	MultipartMaxMemory int64       `toml:"multipart_max_memory"`
	S3                 S3Config    `toml:"s3"`
	Authz              AuthzConfig `toml:"authz"`

	// Populated from the environment only.
	S3AccessKey string `toml:"-"`
	S3SecretKey string `toml:"-"`
}

// envOverrides are environment variables that take precedence over the file.
// envconfig keys are prefixed with DRS_.
type envOverrides struct {
	ListenAddr  string `envconfig:"LISTEN_ADDR"`
	DBPath      string `envconfig:"DB_PATH"`
	Backend     string `envconfig:"BACKEND"`
	DataDir     string `envconfig:"DATA_DIR"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		ListenAddr:         DefaultListenAddr,
		ServiceBaseURL:     DefaultServiceBaseURL,
		Backend:            storage.KindLocal,
		LogLevel:           DefaultLogLevel,
		Environment:        "prod",
		MaxUploadBytes:     DefaultMaxUploadBytes,
		MultipartMaxMemory: DefaultMultipartMaxMemory,
	}
}

// Load reads configuration from the file named by DRS_CONFIG (when set),
// applies environment overrides, and fills derived defaults.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(configPathEnvKey)); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, err
	}
	applyOverrides(&cfg, env)

	if err := fillDerivedDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Backend {
	case storage.KindLocal:
		if c.DataDir == "" {
			return fmt.Errorf("data_dir is required for the local backend")
		}
	case storage.KindS3:
		if strings.TrimSpace(c.S3.Bucket) == "" {
			return fmt.Errorf("s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Authz.Enabled && strings.TrimSpace(c.Authz.URL) == "" {
		return fmt.Errorf("authz.url is required when authorization is enabled")
	}
	return nil
}

// StorageConfig maps the loaded configuration onto the backend factory.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Kind:    c.Backend,
		DataDir: c.DataDir,
		S3: storage.S3Options{
			Endpoint:  c.S3.Endpoint,
			Region:    c.S3.Region,
			Bucket:    c.S3.Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			UseHTTPS:  c.S3.UseHTTPS,
		},
	}
}

func applyOverrides(cfg *Config, env envOverrides) {
	if env.ListenAddr != "" {
		cfg.ListenAddr = env.ListenAddr
	}
	if env.DBPath != "" {
		cfg.DBPath = env.DBPath
	}
	if env.Backend != "" {
		cfg.Backend = env.Backend
	}
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.S3AccessKey != "" {
		cfg.S3AccessKey = env.S3AccessKey
	}
	if env.S3SecretKey != "" {
		cfg.S3SecretKey = env.S3SecretKey
	}
}

func fillDerivedDefaults(cfg *Config) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(home, DefaultDBFileName)
	}
	if cfg.Backend == storage.KindLocal && cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(home, DefaultDataDirName)
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return nil
}
