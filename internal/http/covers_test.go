package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/database"
	"github.com/avasilyev/shelfserve/internal/entities"
	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/storage/providers/covershost"
)

const coverTestUUID = "0c9bd07f-6a53-4f5e-bbf7-778ed1e4d6c0"

type coverTestEnv struct {
	db         *database.Database
	cache      *covers.Cache
	settings   *settingsstore.SettingsStore
	libraryDir string
	router     *gin.Engine
}

func setupCoverTest(t *testing.T, remote *covershost.Client) *coverTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "covers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache, err := covers.NewCache(t.TempDir())
	require.NoError(t, err)

	libraryDir := t.TempDir()
	settings := settingsstore.New(db)

	controller := NewCoversController(db, cache, remote, settings, libraryDir)

	router := gin.New()
	router.GET("/api/books/:uuid/cover", controller.GetCover)
	router.DELETE("/api/books/:uuid/cover/cache", controller.InvalidateCover)

	return &coverTestEnv{
		db:         db,
		cache:      cache,
		settings:   settings,
		libraryDir: libraryDir,
		router:     router,
	}
}

// addLocalBook creates a book whose cover file sits next to it in the
// library directory, with a fixed mtime so the image ID is predictable.
func (env *coverTestEnv) addLocalBook(t *testing.T, mtime time.Time) *entities.Book {
	t.Helper()

	book := &entities.Book{
		UUID:     coverTestUUID,
		Title:    "The Go Programming Language",
		Author:   "Donovan & Kernighan",
		Path:     "donovan/gopl.epub",
		HasCover: true,
	}
	require.NoError(t, env.db.SaveBook(book))

	bookDir := filepath.Join(env.libraryDir, "donovan")
	require.NoError(t, os.MkdirAll(bookDir, 0755))

	coverPath := filepath.Join(bookDir, "cover.jpg")
	require.NoError(t, os.WriteFile(coverPath, []byte("jpeg-bytes"), 0644))
	require.NoError(t, os.Chtimes(coverPath, mtime, mtime))

	return book
}

func (env *coverTestEnv) get(path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	env.router.ServeHTTP(w, req)
	return w
}

func TestCoversController_LocalCover(t *testing.T) {
	mtime := time.Unix(1700000123, 0)

	t.Run("serves file with mtime-derived etag", func(t *testing.T) {
		env := setupCoverTest(t, nil)
		env.addLocalBook(t, mtime)

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `"`+coverTestUUID+`-1700000123"`, w.Header().Get("ETag"))
		assert.Equal(t, "jpeg-bytes", w.Body.String())
	})

	t.Run("returns 304 when client holds current etag", func(t *testing.T) {
		env := setupCoverTest(t, nil)
		env.addLocalBook(t, mtime)

		etag := `"` + coverTestUUID + `-1700000123"`
		w := env.get("/api/books/"+coverTestUUID+"/cover", map[string]string{
			"If-None-Match": etag,
		})

		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("stale etag gets a full response", func(t *testing.T) {
		env := setupCoverTest(t, nil)
		env.addLocalBook(t, mtime)

		w := env.get("/api/books/"+coverTestUUID+"/cover", map[string]string{
			"If-None-Match": `"` + coverTestUUID + `-1600000000"`,
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("suffixed uuid resolves to the same book", func(t *testing.T) {
		env := setupCoverTest(t, nil)
		env.addLocalBook(t, mtime)

		w := env.get("/api/books/"+coverTestUUID+"-1700000123/cover", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `"`+coverTestUUID+`-1700000123"`, w.Header().Get("ETag"))
	})

	t.Run("unknown book returns 404", func(t *testing.T) {
		env := setupCoverTest(t, nil)

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("book without any cover returns 404", func(t *testing.T) {
		env := setupCoverTest(t, nil)
		require.NoError(t, env.db.SaveBook(&entities.Book{
			UUID:  coverTestUUID,
			Title: "No Cover",
			Path:  "misc/nocover.epub",
		}))

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCoversController_RemoteCoverURL(t *testing.T) {
	t.Run("missing local file falls back to cover url via cache", func(t *testing.T) {
		imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("downloaded-jpeg"))
		}))
		defer imageServer.Close()

		env := setupCoverTest(t, nil)
		require.NoError(t, env.db.SaveBook(&entities.Book{
			UUID:     coverTestUUID,
			Title:    "Remote Cover",
			Path:     "misc/remote.epub",
			CoverURL: imageServer.URL + "/cover.jpg",
		}))

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "downloaded-jpeg", w.Body.String())
		// No local file, so the image ID is the bare UUID
		assert.Equal(t, `"`+coverTestUUID+`"`, w.Header().Get("ETag"))
	})

	t.Run("unreachable cover url redirects to the original", func(t *testing.T) {
		env := setupCoverTest(t, nil)
		require.NoError(t, env.db.SaveBook(&entities.Book{
			UUID:     coverTestUUID,
			Title:    "Dead URL",
			Path:     "misc/dead.epub",
			CoverURL: "http://127.0.0.1:1/cover.jpg",
		}))

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "http://127.0.0.1:1/cover.jpg", w.Header().Get("Location"))
	})
}

func TestCoversController_RemoteStorage(t *testing.T) {
	// 2026-02-05T12:30:00Z
	modifiedAt := time.Date(2026, 2, 5, 12, 30, 0, 0, time.UTC)

	newHost := func(t *testing.T) *httptest.Server {
		t.Helper()
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/meta/") {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"name":"%s.jpg","size":9,"modified_at":"%s"}`,
					coverTestUUID, modifiedAt.Format(time.RFC3339))
				return
			}
			w.Write([]byte("host-jpeg"))
		}))
	}

	t.Run("etag derives from remote modification time", func(t *testing.T) {
		host := newHost(t)
		defer host.Close()

		env := setupCoverTest(t, covershost.NewClient(host.URL, ""))
		require.NoError(t, env.settings.SetUseRemoteStorage(true))
		require.NoError(t, env.db.SaveBook(&entities.Book{
			UUID:     coverTestUUID,
			Title:    "Hosted Cover",
			Path:     "misc/hosted.epub",
			HasCover: true,
		}))

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `"`+coverTestUUID+`-1770294600"`, w.Header().Get("ETag"))
		assert.Equal(t, "host-jpeg", w.Body.String())
	})

	t.Run("304 short-circuits before downloading", func(t *testing.T) {
		host := newHost(t)
		defer host.Close()

		env := setupCoverTest(t, covershost.NewClient(host.URL, ""))
		require.NoError(t, env.settings.SetUseRemoteStorage(true))
		require.NoError(t, env.db.SaveBook(&entities.Book{
			UUID:     coverTestUUID,
			Title:    "Hosted Cover",
			Path:     "misc/hosted.epub",
			HasCover: true,
		}))

		w := env.get("/api/books/"+coverTestUUID+"/cover", map[string]string{
			"If-None-Match": `"` + coverTestUUID + `-1770294600"`,
		})

		assert.Equal(t, http.StatusNotModified, w.Code)
	})

	t.Run("metadata 404 degrades to bare uuid etag", func(t *testing.T) {
		host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/meta/") {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte("host-jpeg"))
		}))
		defer host.Close()

		env := setupCoverTest(t, covershost.NewClient(host.URL, ""))
		require.NoError(t, env.settings.SetUseRemoteStorage(true))
		require.NoError(t, env.db.SaveBook(&entities.Book{
			UUID:     coverTestUUID,
			Title:    "Hosted Cover",
			Path:     "misc/hosted.epub",
			HasCover: true,
		}))

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `"`+coverTestUUID+`"`, w.Header().Get("ETag"))
	})

	t.Run("remote disabled in settings keeps covers local", func(t *testing.T) {
		host := newHost(t)
		defer host.Close()

		env := setupCoverTest(t, covershost.NewClient(host.URL, ""))
		env.addLocalBook(t, time.Unix(1700000123, 0))

		w := env.get("/api/books/"+coverTestUUID+"/cover", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `"`+coverTestUUID+`-1700000123"`, w.Header().Get("ETag"))
		assert.Equal(t, "jpeg-bytes", w.Body.String())
	})
}

func TestCoversController_InvalidateCover(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("downloaded-jpeg"))
	}))
	defer imageServer.Close()

	env := setupCoverTest(t, nil)
	require.NoError(t, env.db.SaveBook(&entities.Book{
		UUID:     coverTestUUID,
		Title:    "Cached Cover",
		Path:     "misc/cached.epub",
		CoverURL: imageServer.URL + "/cover.jpg",
	}))

	// Prime the cache
	w := env.get("/api/books/"+coverTestUUID+"/cover", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, cached := env.cache.CachedPath(coverTestUUID)
	require.True(t, cached)

	w = httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/books/"+coverTestUUID+"/cover/cache", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	_, cached = env.cache.CachedPath(coverTestUUID)
	assert.False(t, cached)
}
