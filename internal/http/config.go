package http

import (
	"github.com/avasilyev/shelfserve/internal/auth"
	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/database"
	"github.com/avasilyev/shelfserve/internal/scheduler"
	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/storage/providers/covershost"
	"github.com/avasilyev/shelfserve/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	SettingsStore *settingsstore.SettingsStore

	// Cover serving
	CoverCache    *covers.Cache
	RemoteStorage *covershost.Client // nil when covers are local only
	LibraryDir    string

	// Background work
	TaskClient       *tasks.Client
	CleanupScheduler *scheduler.CoverCleanupScheduler

	// Authentication
	AuthService    *auth.Service
	AuthController *auth.Controller
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool

	// Kobo sync
	KoboSyncEnabled bool

	// Application info
	Version string
}
