package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Cover storage settings
	SettingKeyUseRemoteStorage = "covers_use_remote_storage"
	SettingKeyRemoteBaseURL    = "covers_remote_base_url"

	// Cover cache cleanup settings
	SettingKeyCoverCleanupEnabled  = "cover_cleanup_enabled"
	SettingKeyCoverCleanupSchedule = "cover_cleanup_schedule"
	SettingKeyCoverCleanupLastAt   = "cover_cleanup_last_at"
	SettingKeyCoverCleanupStatus   = "cover_cleanup_last_status"
	SettingKeyCoverCleanupMessage  = "cover_cleanup_last_message"
)
