// Package config loads and saves the mcpdock settings file. Persistence is
// an explicit load/save pair at process boundaries; there is no ambient
// global settings state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"mcpdock/pkg/logging"
)

const (
	userConfigDir  = ".config/mcpdock"
	configFileName = "config.yaml"

	// maxStoredNotifications caps the persisted notification history.
	maxStoredNotifications = 100
)

// StoredNotification is one persisted operator notification.
type StoredNotification struct {
	Time     time.Time `yaml:"time"`
	Severity string    `yaml:"severity"`
	Title    string    `yaml:"title"`
	Body     string    `yaml:"body"`
}

// Settings is the persisted configuration.
type Settings struct {
	BackendURL            string               `yaml:"backendUrl,omitempty"`
	PreviewTimeoutSeconds int                  `yaml:"previewTimeoutSeconds,omitempty"`
	CatalogPageSize       int                  `yaml:"catalogPageSize,omitempty"`
	LogLevel              string               `yaml:"logLevel,omitempty"`
	ActiveProfiles        []string             `yaml:"activeProfiles,omitempty"`
	Notifications         []StoredNotification `yaml:"notifications,omitempty"`
}

// Default returns the settings used when no config file exists.
func Default() Settings {
	return Settings{
		PreviewTimeoutSeconds: 45,
		CatalogPageSize:       30,
		LogLevel:              "info",
	}
}

// PreviewTimeout converts the configured seconds into a duration.
func (s Settings) PreviewTimeout() time.Duration {
	if s.PreviewTimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(s.PreviewTimeoutSeconds) * time.Second
}

// AppendNotification records a notification in the persisted history,
// trimming the oldest entries beyond the cap.
func (s *Settings) AppendNotification(severity, title, body string) {
	s.Notifications = append(s.Notifications, StoredNotification{
		Time:     time.Now().UTC(),
		Severity: severity,
		Title:    title,
		Body:     body,
	})
	if overflow := len(s.Notifications) - maxStoredNotifications; overflow > 0 {
		s.Notifications = s.Notifications[overflow:]
	}
}

// DefaultPath returns the per-user settings file path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// Load reads settings from path. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No config file at %s, using defaults", path)
			return settings, nil
		}
		return Settings{}, err
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	logging.Info("Config", "Loaded configuration from %s", path)
	return settings, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	logging.Debug("Config", "Saved configuration to %s", path)
	return nil
}
