package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/bulkren/internal/hash"
	"github.com/danieljhkim/bulkren/internal/rename"
)

// Settings is the content of config.yaml. Command-line flags override it.
type Settings struct {
	// DefaultMode is the overwrite mode used when --mode is not given.
	DefaultMode string `yaml:"default_mode"`

	// LogLevel is a zap level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// RollbackOnFailure reverses partial progress when a run fails.
	RollbackOnFailure bool `yaml:"rollback_on_failure"`

	// Verify hashes content before and after a run.
	Verify bool `yaml:"verify"`

	// VerifyAlgorithm selects the digest used by Verify.
	VerifyAlgorithm string `yaml:"verify_algorithm"`

	// HistoryLimit caps the number of journal entries kept. Zero keeps all.
	HistoryLimit int `yaml:"history_limit"`
}

// DefaultSettings returns the settings used when config.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		DefaultMode:       rename.ModeError.String(),
		LogLevel:          "warn",
		RollbackOnFailure: true,
		Verify:            false,
		VerifyAlgorithm:   hash.SHA256,
		HistoryLimit:      50,
	}
}

// LoadSettings reads path over the defaults. A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return settings, nil
}

// Validate rejects unknown modes, levels and algorithms.
func (s Settings) Validate() error {
	if _, err := rename.ParseOverwriteMode(s.DefaultMode); err != nil {
		return fmt.Errorf("default_mode: %w", err)
	}
	if _, err := zapcore.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := hash.New(s.VerifyAlgorithm); err != nil {
		return fmt.Errorf("verify_algorithm: %w", err)
	}
	if s.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", s.HistoryLimit)
	}
	return nil
}

// Mode returns DefaultMode parsed.
func (s Settings) Mode() rename.OverwriteMode {
	mode, err := rename.ParseOverwriteMode(s.DefaultMode)
	if err != nil {
		return rename.ModeError
	}
	return mode
}

// Marshal renders the settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
