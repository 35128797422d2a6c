package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyHost             = "db.host"
	KeyPort             = "db.port"
	KeyUsername         = "db.username"
	KeyPassword         = "db.password"
	KeyTLS              = "db.tls"
	KeyDirectConnection = "db.direct_connection"
	KeyDatabase         = "db.database"
	KeyRateLimit        = "db.rate_limit"
	KeyTimeoutSeconds   = "db.timeout_seconds"
	KeyMirrorDir        = "mirror.dir"
)

// SettingKeys lists every supported configuration key.
func SettingKeys() []string {
	return []string{
		KeyHost, KeyPort, KeyUsername, KeyPassword, KeyTLS, KeyDirectConnection,
		KeyDatabase, KeyRateLimit, KeyTimeoutSeconds, KeyMirrorDir,
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, falling back to defaults
// for unset keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	if s.configStore == nil {
		return &defaults, nil
	}
	d := defaults.Connection

	settings := &domain.AppSettings{
		Connection: domain.ConnectionSettings{
			Host:             s.getString(KeyHost, d.Host),
			Port:             s.getInt(KeyPort, d.Port),
			Username:         s.getString(KeyUsername, d.Username),
			Password:         s.getString(KeyPassword, d.Password),
			TLS:              s.getBool(KeyTLS, d.TLS),
			DirectConnection: s.getBool(KeyDirectConnection, d.DirectConnection),
			Database:         s.getString(KeyDatabase, d.Database),
			RateLimit:        s.getFloat(KeyRateLimit, d.RateLimit),
			Timeout:          time.Duration(s.getInt(KeyTimeoutSeconds, int(d.Timeout/time.Second))) * time.Second,
		},
		Mirror: domain.MirrorSettings{
			Dir: s.configStore.GetString(KeyMirrorDir),
		},
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if err := settings.Connection.Validate(); err != nil {
		return err
	}
	c := settings.Connection
	values := []struct {
		key   string
		value any
	}{
		{KeyHost, c.Host},
		{KeyPort, c.Port},
		{KeyUsername, c.Username},
		{KeyPassword, c.Password},
		{KeyTLS, c.TLS},
		{KeyDirectConnection, c.DirectConnection},
		{KeyDatabase, c.Database},
		{KeyRateLimit, c.RateLimit},
		{KeyTimeoutSeconds, int(c.Timeout / time.Second)},
		{KeyMirrorDir, settings.Mirror.Dir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates a single setting from its string form.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	c := &settings.Connection
	switch key {
	case KeyHost:
		c.Host = value
	case KeyUsername:
		c.Username = value
	case KeyPassword:
		c.Password = value
	case KeyDatabase:
		c.Database = value
	case KeyMirrorDir:
		settings.Mirror.Dir = value
	case KeyPort:
		if c.Port, err = strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
	case KeyTimeoutSeconds:
		secs, err := strconv.Atoi(value)
		if err != nil || secs <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, key)
		}
		c.Timeout = time.Duration(secs) * time.Second
	case KeyRateLimit:
		if c.RateLimit, err = strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
	case KeyTLS, KeyDirectConnection:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		if key == KeyTLS {
			c.TLS = b
		} else {
			c.DirectConnection = b
		}
	default:
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(SettingKeys(), ", "))
	}
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Watch reloads settings whenever the config store reports a change.
// Settings that fail validation are logged and not passed on.
func (s *SettingsService) Watch(ctx context.Context, onChange func(*domain.AppSettings)) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	return s.configStore.Watch(ctx, func() {
		settings, err := s.Get()
		if err == nil {
			err = settings.Connection.Validate()
		}
		if err != nil {
			logger.Warn("Ignoring changed settings in %s: %v", s.configStore.Path(), err)
			return
		}
		logger.Debug("Reloaded settings from %s", s.configStore.Path())
		onChange(settings)
	})
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return defaultVal
	}
}
