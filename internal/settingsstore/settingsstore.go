package settingsstore

import (
	"github.com/avasilyev/shelfserve/internal/database"
)

// SettingsStore resolves runtime-tunable settings.
// Priority: database > environment > default
type SettingsStore struct {
	db *database.Database
}

func New(db *database.Database) *SettingsStore {
	return &SettingsStore{db: db}
}
