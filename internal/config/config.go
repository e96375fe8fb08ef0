package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values come from defaults, then
// config/default.yaml, then config/<env>.yaml, then environment variables.
type Config struct {
	Name        string   `yaml:"name"`         // Application name shown at startup
	Env         string   `yaml:"env"`          // development, production, ...
	ListenAddr  string   `yaml:"listen_addr"`  // HTTP listen address
	PublicDir   string   `yaml:"public_dir"`   // Directory of static files
	IDStrategy  string   `yaml:"id_strategy"`  // "count" or "monotonic"
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins

	ConfigDir string `yaml:"-"` // Directory holding the YAML files
}

// IsDevelopment reports whether request logging and other dev-only
// behavior should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load builds the configuration from files and the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		Name:        "usuarios",
		Env:         envOrDefault("APP_ENV", "development"),
		ListenAddr:  ":3000",
		PublicDir:   "public",
		IDStrategy:  "count",
		CORSOrigins: []string{"*"},
		ConfigDir:   envOrDefault("CONFIG_DIR", "config"),
	}

	if err := cfg.mergeFile("default.yaml"); err != nil {
		return nil, err
	}
	if err := cfg.mergeFile(cfg.Env + ".yaml"); err != nil {
		return nil, err
	}

	cfg.Name = envOrDefault("APP_NAME", cfg.Name)
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	cfg.ListenAddr = envOrDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.PublicDir = envOrDefault("PUBLIC_DIR", cfg.PublicDir)
	cfg.IDStrategy = envOrDefault("ID_STRATEGY", cfg.IDStrategy)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	switch cfg.IDStrategy {
	case "count", "monotonic":
	default:
		return nil, fmt.Errorf("invalid id strategy %q: want count or monotonic", cfg.IDStrategy)
	}

	return cfg, nil
}

// mergeFile overlays a YAML file from ConfigDir. Missing files are skipped.
// The environment is fixed before any file is read, so an env key inside a
// file is ignored.
func (c *Config) mergeFile(name string) error {
	path := filepath.Join(c.ConfigDir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	env, dir := c.Env, c.ConfigDir
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Env, c.ConfigDir = env, dir
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
