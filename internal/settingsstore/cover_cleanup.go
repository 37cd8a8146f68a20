package settingsstore

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avasilyev/shelfserve/internal/entities"
)

// CoverCleanupConfig represents the effective configuration for the
// scheduled cover cache cleanup.
type CoverCleanupConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

// CoverCleanupConfigInfo includes source information for each field
type CoverCleanupConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"` // "database", "environment", "default"

	Schedule       string `json:"schedule"`
	ScheduleSource string `json:"schedule_source"`
}

// CoverCleanupStatus represents the last cleanup run
type CoverCleanupStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"`  // "success", "failed", ""
	Message   string     `json:"message,omitempty"` // Error message or stats summary
}

// GetCoverCleanupEnabled returns whether cleanup is enabled (database > env > default)
func (s *SettingsStore) GetCoverCleanupEnabled() bool {
	setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupEnabled)
	if err == nil && setting.Value != "" {
		return setting.Value == "true" || setting.Value == "1"
	}

	if envVal := os.Getenv("COVER_CLEANUP_ENABLED"); envVal != "" {
		return envVal == "true" || envVal == "1"
	}

	// Default: enabled
	return true
}

// GetCoverCleanupEnabledSource returns the source of the enabled setting
func (s *SettingsStore) GetCoverCleanupEnabledSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupEnabled)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("COVER_CLEANUP_ENABLED"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetCoverCleanupEnabled saves the enabled setting to database
func (s *SettingsStore) SetCoverCleanupEnabled(enabled bool) error {
	return s.db.SetSetting(entities.SettingKeyCoverCleanupEnabled, strconv.FormatBool(enabled))
}

// GetCoverCleanupSchedule returns the cron schedule (database > env > default)
func (s *SettingsStore) GetCoverCleanupSchedule() string {
	setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupSchedule)
	if err == nil && setting.Value != "" {
		return setting.Value
	}

	if envVal := os.Getenv("COVER_CLEANUP_SCHEDULE"); envVal != "" {
		return envVal
	}

	// Default: daily at 03:00
	return "0 3 * * *"
}

// GetCoverCleanupScheduleSource returns the source of the schedule setting
func (s *SettingsStore) GetCoverCleanupScheduleSource() string {
	setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupSchedule)
	if err == nil && setting.Value != "" {
		return "database"
	}
	if envVal := os.Getenv("COVER_CLEANUP_SCHEDULE"); envVal != "" {
		return "environment"
	}
	return "default"
}

// SetCoverCleanupSchedule saves the schedule to database
func (s *SettingsStore) SetCoverCleanupSchedule(schedule string) error {
	return s.db.SetSetting(entities.SettingKeyCoverCleanupSchedule, schedule)
}

// GetCoverCleanupConfig returns the effective configuration
func (s *SettingsStore) GetCoverCleanupConfig() CoverCleanupConfig {
	return CoverCleanupConfig{
		Enabled:  s.GetCoverCleanupEnabled(),
		Schedule: s.GetCoverCleanupSchedule(),
	}
}

// GetCoverCleanupConfigInfo returns the configuration with source information
func (s *SettingsStore) GetCoverCleanupConfigInfo() CoverCleanupConfigInfo {
	return CoverCleanupConfigInfo{
		Enabled:        s.GetCoverCleanupEnabled(),
		EnabledSource:  s.GetCoverCleanupEnabledSource(),
		Schedule:       s.GetCoverCleanupSchedule(),
		ScheduleSource: s.GetCoverCleanupScheduleSource(),
	}
}

// GetCoverCleanupStatus returns the last cleanup status
func (s *SettingsStore) GetCoverCleanupStatus() CoverCleanupStatus {
	status := CoverCleanupStatus{}

	if setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupLastAt); err == nil && setting.Value != "" {
		if ts, err := time.Parse(time.RFC3339, setting.Value); err == nil {
			status.LastRunAt = &ts
		}
	}

	if setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupStatus); err == nil {
		status.Status = setting.Value
	}

	if setting, err := s.db.GetSetting(entities.SettingKeyCoverCleanupMessage); err == nil {
		status.Message = setting.Value
	}

	return status
}

// SetCoverCleanupStatus updates the cleanup status after a run
func (s *SettingsStore) SetCoverCleanupStatus(status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.db.SetSetting(entities.SettingKeyCoverCleanupLastAt, now); err != nil {
		return err
	}
	if err := s.db.SetSetting(entities.SettingKeyCoverCleanupStatus, status); err != nil {
		return err
	}
	return s.db.SetSetting(entities.SettingKeyCoverCleanupMessage, message)
}

// ClearCoverCleanupSettings clears all database overrides, reverting to env/default
func (s *SettingsStore) ClearCoverCleanupSettings() error {
	keys := []string{
		entities.SettingKeyCoverCleanupEnabled,
		entities.SettingKeyCoverCleanupSchedule,
	}
	for _, key := range keys {
		if err := s.db.DeleteSetting(key); err != nil {
			// Ignore not found errors
			continue
		}
	}
	return nil
}

// ValidateCronSchedule validates a cron schedule string
func ValidateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 3 * * *":
		return "Daily at 03:00"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next cleanup will run based on the schedule
func GetNextRunTime(schedule string) (*time.Time, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
