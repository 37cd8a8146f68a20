package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/database"
	"github.com/avasilyev/shelfserve/internal/http"
	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/storage"
	"github.com/avasilyev/shelfserve/internal/storage/providers/covershost"
	"github.com/avasilyev/shelfserve/internal/tasks"
)

// =============================================================================
// Remote Storage
// =============================================================================

var _ storage.Client = (*covershost.Client)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.BookStore = (*database.Database)(nil)
var _ http.CoverBookStore = (*database.Database)(nil)
var _ http.ShelfStore = (*database.Database)(nil)
var _ http.KoboStore = (*database.Database)(nil)

// =============================================================================
// Settings
// =============================================================================

var _ http.RemoteStorageSettings = (*settingsstore.SettingsStore)(nil)
var _ tasks.CleanupStatusRecorder = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ tasks.BookUUIDLister = (*database.Database)(nil)
var _ tasks.CoveredBookLister = (*database.Database)(nil)
var _ tasks.CoverCacheCleaner = (*covers.Cache)(nil)
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
