package settingsstore

import (
	"os"
	"strconv"

	"github.com/avasilyev/shelfserve/internal/entities"
)

// RemoteStorageConfig represents the effective remote cover storage
// configuration.
type RemoteStorageConfig struct {
	Enabled bool   `json:"enabled"`
	BaseURL string `json:"base_url"`
}

// GetUseRemoteStorage returns whether covers are served from a remote
// storage host (database > env > default)
func (s *SettingsStore) GetUseRemoteStorage() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyUseRemoteStorage)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	if envVal := os.Getenv("REMOTE_STORAGE_ENABLED"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: serve covers from the local filesystem
	return false
}

// SetUseRemoteStorage saves the remote storage toggle to database
func (s *SettingsStore) SetUseRemoteStorage(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeyUseRemoteStorage, strconv.FormatBool(enabled))
}

// GetRemoteBaseURL returns the remote storage base URL (database > env > "")
func (s *SettingsStore) GetRemoteBaseURL() string {
	setting, err := s.db.GetSetting(entities.SettingKeyRemoteBaseURL)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envVal := os.Getenv("REMOTE_STORAGE_BASE_URL"); envVal != "" {
		return envVal
	}

	return ""
}

// SetRemoteBaseURL saves the remote storage base URL to database
func (s *SettingsStore) SetRemoteBaseURL(url string) error {
	return s.db.SetSetting(entities.SettingKeyRemoteBaseURL, url)
}

// GetRemoteStorageConfig returns the effective remote storage configuration
func (s *SettingsStore) GetRemoteStorageConfig() RemoteStorageConfig {
	return RemoteStorageConfig{
		Enabled: s.GetUseRemoteStorage(),
		BaseURL: s.GetRemoteBaseURL(),
	}
}
