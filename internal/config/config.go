package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the wired service configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Frame    FrameConfig    `toml:"frame"`
	Inspect  InspectConfig  `toml:"inspect"`
}

type DatabaseConfig struct {
	Project  string `toml:"project"`
	Database string `toml:"database"`
}

type FrameConfig struct {
	MaxMessageBytes uint64 `toml:"max_message_bytes"`
	SegmentBytes    int    `toml:"segment_bytes"`
}

type InspectConfig struct {
	Name        string    `toml:"name"`
	Addr        string    `toml:"addr"`
	LogLevel    string    `toml:"log_level"`
	CorsOrigins []string  `toml:"cors_origins"`
	TLS         TLSConfig `toml:"tls"`
}

// TLSConfig serves the inspect surface over HTTPS. Setting either file
// enables it and Validate then requires both.
type TLSConfig struct {
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

func (t TLSConfig) Enabled() bool {
	return strings.TrimSpace(t.CertFile) != "" || strings.TrimSpace(t.KeyFile) != ""
}

const (
	DefaultName = "wired"
	DefaultAddr = ":9400"
)

func Default() Config {
	limits := defaultLimits()
	return Config{
		Database: DatabaseConfig{Database: defaultDatabase},
		Frame: FrameConfig{
			MaxMessageBytes: limits.MaxMessageBytes,
			SegmentBytes:    limits.SegmentBytes,
		},
		Inspect: InspectConfig{Name: DefaultName, Addr: DefaultAddr, LogLevel: "info"},
	}
}

// Load reads path, fills unset values from Default and validates.
func Load(path string) (Config, error) {
	var cfg Config
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Database.Database == "" {
		cfg.Database.Database = def.Database.Database
	}
	if cfg.Frame.MaxMessageBytes == 0 {
		cfg.Frame.MaxMessageBytes = def.Frame.MaxMessageBytes
	}
	if cfg.Frame.SegmentBytes == 0 {
		cfg.Frame.SegmentBytes = def.Frame.SegmentBytes
	}
	if cfg.Inspect.Name == "" {
		cfg.Inspect.Name = def.Inspect.Name
	}
	if cfg.Inspect.Addr == "" {
		cfg.Inspect.Addr = def.Inspect.Addr
	}
	if cfg.Inspect.LogLevel == "" {
		cfg.Inspect.LogLevel = def.Inspect.LogLevel
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Database.Project) == "" {
		return fmt.Errorf("database config missing project")
	}
	if strings.ContainsRune(cfg.Database.Project, '/') || strings.ContainsRune(cfg.Database.Database, '/') {
		return fmt.Errorf("database config ids must not contain '/'")
	}
	if cfg.Frame.SegmentBytes < 0 {
		return fmt.Errorf("frame config segment_bytes must be positive")
	}
	if cfg.Frame.MaxMessageBytes > 1<<32-1 {
		return fmt.Errorf("frame config max_message_bytes exceeds the length prefix")
	}
	if strings.TrimSpace(cfg.Inspect.Addr) == "" {
		return fmt.Errorf("inspect config missing addr")
	}
	if tls := cfg.Inspect.TLS; tls.Enabled() {
		if strings.TrimSpace(tls.CertFile) == "" {
			return fmt.Errorf("inspect tls config missing cert_file")
		}
		if strings.TrimSpace(tls.KeyFile) == "" {
			return fmt.Errorf("inspect tls config missing key_file")
		}
	}
	return nil
}
