package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/auth"
	"github.com/avasilyev/shelfserve/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers on all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF protection if auth is enabled.
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's
	// request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Auth endpoints (login, logout, setup, tokens)
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	// Controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Database)
	shelvesController := NewShelvesController(cfg.Database)

	var coversController *CoversController
	if cfg.CoverCache != nil {
		coversController = NewCoversController(cfg.Database, cfg.CoverCache, cfg.RemoteStorage, cfg.SettingsStore, cfg.LibraryDir)
	}

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Books API
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/search", booksController.SearchBooks)
	router.GET("/api/books/stats", booksController.GetBookStats)
	router.GET("/api/books/:uuid", booksController.GetBook)
	router.PATCH("/api/books/:uuid/cover",
		auth.Protect(booksController.UpdateCover, auth.RequireRole(entities.UserRoleEditor)))
	router.DELETE("/api/books/:uuid",
		auth.Protect(booksController.DeleteBook, auth.RequireRole(entities.UserRoleEditor)))

	// Cover serving
	if coversController != nil {
		router.GET("/api/books/:uuid/cover", coversController.GetCover)
		router.DELETE("/api/books/:uuid/cover/cache",
			auth.Protect(coversController.InvalidateCover, auth.RequireRole(entities.UserRoleEditor)))
	}

	// Shelves API
	router.GET("/api/shelves", shelvesController.ListShelves)
	router.POST("/api/shelves", shelvesController.CreateShelf)
	router.GET("/api/shelves/:id", shelvesController.GetShelf)
	router.DELETE("/api/shelves/:id", shelvesController.DeleteShelf)
	router.POST("/api/shelves/:id/books", shelvesController.AddBook)
	router.DELETE("/api/shelves/:id/books/:uuid", shelvesController.RemoveBook)

	// Kobo sync: device management under session auth, sync endpoints under
	// the per-device URL token
	if cfg.KoboSyncEnabled && coversController != nil {
		koboController := NewKoboController(cfg.Database, coversController)
		router.POST("/api/kobo/devices", koboController.RegisterDevice)
		router.GET("/api/kobo/devices", koboController.ListDevices)
		router.DELETE("/api/kobo/devices/:id", koboController.DeleteDevice)
		router.GET("/kobo/:token/v1/library", koboController.Library)
		router.GET("/kobo/:token/v1/books/:uuid/image", koboController.BookImage)
	}

	// Admin endpoints for cover storage and cache cleanup
	if cfg.SettingsStore != nil {
		adminController := NewAdminController(cfg.SettingsStore, cfg.CleanupScheduler, cfg.TaskClient)
		admin := func(handler gin.HandlerFunc) gin.HandlerFunc {
			return auth.Protect(handler, auth.RequireAdmin())
		}
		router.GET("/api/admin/covers/cleanup", admin(adminController.GetCleanupSettings))
		router.PUT("/api/admin/covers/cleanup", admin(adminController.UpdateCleanupSettings))
		router.POST("/api/admin/covers/cleanup/reset", admin(adminController.ResetCleanupSettings))
		router.POST("/api/admin/covers/cleanup/run", admin(adminController.RunCleanupNow))
		router.POST("/api/admin/covers/warm", admin(adminController.WarmCovers))
		router.GET("/api/admin/covers/storage", admin(adminController.GetStorageSettings))
		router.PUT("/api/admin/covers/storage", admin(adminController.UpdateStorageSettings))
	}

	return router
}
