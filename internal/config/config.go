// Package config handles loading, validating and regenerating the proxy's
// YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel is the closed set of logging verbosity levels understood by
// internal/logging.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "info"
	LogLevelDebug    LogLevel = "debug"
	LogLevelWarn     LogLevel = "warn"
	LogLevelCritical LogLevel = "critical"
	LogLevelOff      LogLevel = "off"
)

// Config is the top-level configuration for the caching reverse proxy.
type Config struct {
	LogLevel    LogLevel           `yaml:"log_level"`
	Server      ServerConfig       `yaml:"server"`
	Middlewares []MiddlewareConfig `yaml:"middlewares"`
	Client      ClientConfig       `yaml:"client"`
	Webhook     WebhookConfig      `yaml:"webhook"`
	AuditLog    AuditLogConfig     `yaml:"audit_log"`
}

// ServerConfig holds front-server listener settings.
type ServerConfig struct {
	Host               string      `yaml:"host"`
	Port               int         `yaml:"port"`
	BaseDomain         string      `yaml:"base_domain"`
	ValidateCredentials bool       `yaml:"validate_credentials"`
	Credentials        *Credential `yaml:"credentials"`
	ShutdownTimeout    int         `yaml:"shutdown_timeout"` // seconds
}

// Credential is a single static S3 access key / secret key pair.
type Credential struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// MiddlewareConfig is one element of the ordered middleware list. Type
// selects the stage; Cache is only read when Type is "cache".
type MiddlewareConfig struct {
	Type  string              `yaml:"type"` // "identity" | "cache"
	Cache *CacheMiddlewareConfig `yaml:"cache,omitempty"`
}

// CacheMiddlewareConfig configures the cache engine middleware.
type CacheMiddlewareConfig struct {
	CacheSize    int64             `yaml:"cache_size"`
	MaxEntrySize int64             `yaml:"max_entry_size"`
	TTL          *time.Duration    `yaml:"ttl"`
	TTI          *time.Duration    `yaml:"tti"`
	Ops          CacheOpsConfig    `yaml:"ops"`
}

// CacheOpsConfig enumerates per-operation cache settings for the six
// cacheable S3 read operations.
type CacheOpsConfig struct {
	GetObject         CacheOpConfig `yaml:"get_object"`
	HeadObject        CacheOpConfig `yaml:"head_object"`
	ListObjects       CacheOpConfig `yaml:"list_objects"`
	ListObjectVersions CacheOpConfig `yaml:"list_object_versions"`
	HeadBucket        CacheOpConfig `yaml:"head_bucket"`
	ListBuckets       CacheOpConfig `yaml:"list_buckets"`
}

// CacheOpConfig is the per-operation enable flag and TTL/TTI override.
type CacheOpConfig struct {
	Enabled bool           `yaml:"enabled"`
	TTL     *time.Duration `yaml:"ttl"`
	TTI     *time.Duration `yaml:"tti"`
}

// ClientConfig describes the upstream S3-compatible origin the proxy
// forwards requests to.
type ClientConfig struct {
	EndpointURL     string `yaml:"endpoint_url"`
	Region          string `yaml:"region"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxRetries      int    `yaml:"max_retries"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// WebhookConfig holds the secondary webhook-ingress listener settings.
type WebhookConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuditLogConfig configures the supplemental invalidation audit log.
type AuditLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns a Config populated with the built-in defaults used when
// no configuration file is present.
func Default() *Config {
	return &Config{
		LogLevel: LogLevelCritical,
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                4356,
			ValidateCredentials: false,
			ShutdownTimeout:     30,
		},
		Middlewares: []MiddlewareConfig{
			{Type: "cache", Cache: defaultCacheConfig()},
		},
		Client: ClientConfig{
			EndpointURL:    "http://localhost:9000",
			Region:         "us-east-1",
			ForcePathStyle: true,
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Webhook: WebhookConfig{
			Host: "0.0.0.0",
			Port: 4357,
		},
		AuditLog: AuditLogConfig{
			Enabled: true,
			Path:    "./data/invalidations.db",
		},
	}
}

func defaultCacheConfig() *CacheMiddlewareConfig {
	enabled := CacheOpConfig{Enabled: true}
	return &CacheMiddlewareConfig{
		CacheSize: 500_000_000,
		Ops: CacheOpsConfig{
			GetObject:          enabled,
			HeadObject:         enabled,
			ListObjects:        enabled,
			ListObjectVersions: enabled,
			HeadBucket:         enabled,
			ListBuckets:        enabled,
		},
	}
}

// Load reads and parses the YAML configuration file at path, applying
// defaults for any fields the file leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Generate writes the built-in default configuration to path, creating
// parent directories as needed. It overwrites any existing file.
func Generate(path string) (*Config, error) {
	cfg := Default()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing config file: %w", err)
	}
	return cfg, nil
}

// LoadOrGenerate implements the CLI's --regenerate / --generate-if-missing
// semantics:
//   - regenerate: delete (if present) and recreate the file with defaults.
//   - generateIfMissing: create the file with defaults only if absent.
//   - neither, file missing: return built-in defaults without touching disk.
func LoadOrGenerate(path string, regenerate, generateIfMissing bool) (*Config, error) {
	if regenerate {
		_ = os.Remove(path)
		return Generate(path)
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		return Load(path)
	case os.IsNotExist(err) && generateIfMissing:
		return Generate(path)
	case os.IsNotExist(err):
		return Default(), nil
	default:
		return nil, fmt.Errorf("checking config file: %w", err)
	}
}

// validate enforces cross-field invariants, mirroring the original source's
// requirement that validate_credentials=true implies credentials are present.
func validate(cfg *Config) error {
	if cfg.Server.ValidateCredentials && cfg.Server.Credentials == nil {
		return fmt.Errorf("server.validate_credentials is true but server.credentials is not set")
	}
	return nil
}
