package driving

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates a single setting by its configuration key.
	Set(key, value string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Watch calls onChange with the reloaded settings whenever the stored
	// configuration changes. It blocks until ctx is cancelled.
	Watch(ctx context.Context, onChange func(*domain.AppSettings)) error
}
