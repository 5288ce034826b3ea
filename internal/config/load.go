package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "github.com/ultravioletrs/cube-docs/internal/foundation/errors"
	"github.com/ultravioletrs/cube-docs/internal/logfields"
)

// envFiles are tried in order next to the configuration file; the first one
// found is loaded. Variables already set in the process environment win.
var envFiles = []string{".env", ".env.local"}

// EnvFiles returns the names of the env files read next to the configuration.
func EnvFiles() []string {
	return slices.Clone(envFiles)
}

// Load reads, expands, decodes, defaults and validates the site configuration
// at configPath. Any failure is a fatal config ClassifiedError.
func Load(configPath string) (*SiteConfig, error) {
	loadEnvFile(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("Site configuration loaded", logfields.Path(configPath), slog.String("title", cfg.Title))
	return cfg, nil
}

// Parse decodes YAML configuration bytes after expanding ${VAR} references,
// then applies defaults and validates. Unknown keys are rejected.
func Parse(data []byte) (*SiteConfig, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg SiteConfig
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ferrors.ConfigError("configuration file is empty").Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			UserAction().
			Build()
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads the first env file found in dir. A missing file is not an error.
func loadEnvFile(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(path), logfields.Error(err))
			return
		}
		slog.Debug("Loaded environment variables", logfields.Path(path))
		return
	}
}

// Init writes the example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create config directory").Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
