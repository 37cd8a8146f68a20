package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/auth"
	"github.com/avasilyev/shelfserve/internal/config"
	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/database"
	http_controllers "github.com/avasilyev/shelfserve/internal/http"
	"github.com/avasilyev/shelfserve/internal/scheduler"
	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/storage/providers/covershost"
	"github.com/avasilyev/shelfserve/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	// SIGKILL cannot be caught so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue and scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting ShelfServe v%s", version)

	// The library directory must exist before we serve anything out of it
	log.Printf("Checking library directory: %s\n", cfg.Library.Dir)
	if cfg.Library.Dir == "" {
		log.Fatalf("Library directory is not set")
		return
	}
	if info, err := os.Stat(cfg.Library.Dir); os.IsNotExist(err) {
		log.Fatalf("Library directory %s does not exist", cfg.Library.Dir)
		return
	} else if err == nil && !info.IsDir() {
		log.Fatalf("Library path %s is not a directory", cfg.Library.Dir)
		return
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Settings persisted in the database, with env var fallbacks
	settingsStore := settingsstore.New(db)

	// Create cover cache for locally caching book covers
	coverCacheDir := cfg.Covers.CacheDir
	if coverCacheDir == "" {
		coverCacheDir = filepath.Join(filepath.Dir(cfg.Database.Path), "covers")
	}
	coverCache, err := covers.NewCache(coverCacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize cover cache: %v", err)
	}
	log.Printf("Cover cache initialized at %s", coverCacheDir)

	// Remote cover host client, only when a base URL is configured. Whether
	// covers are actually served from it is a runtime setting.
	var remoteStorage *covershost.Client
	if baseURL := settingsStore.GetRemoteBaseURL(); baseURL != "" {
		remoteStorage = covershost.NewClient(baseURL, cfg.RemoteStorage.Token)
		log.Printf("Remote cover storage configured at %s", baseURL)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewCleanupCoverCacheQueue(db, coverCache, settingsStore),
			tasks.NewWarmCoverCacheQueue(db, coverCache),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Cover cleanup runs on a cron schedule when the task queue is available
	var cleanupScheduler *scheduler.CoverCleanupScheduler
	if taskClient != nil {
		cleanupScheduler = scheduler.NewCoverCleanupScheduler(taskClient, settingsStore)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: Failed to start cover cleanup scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authController *auth.Controller
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		authController = auth.NewController(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		// Check if setup is needed
		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST to /setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:         db,
		SettingsStore:    settingsStore,
		CoverCache:       coverCache,
		RemoteStorage:    remoteStorage,
		LibraryDir:       cfg.Library.Dir,
		TaskClient:       taskClient,
		CleanupScheduler: cleanupScheduler,
		AuthService:      authService,
		AuthController:   authController,
		AuthMiddleware:   authMiddleware,
		SessionManager:   sessionManager,
		CSRFSecret:       csrfSecret,
		SecureCookies:    cfg.Auth.SecureCookies,
		KoboSyncEnabled:  cfg.Kobo.SyncEnabled,
		Version:          version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
