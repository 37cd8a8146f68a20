package http

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/entities"
	"github.com/avasilyev/shelfserve/internal/settingsstore"
	"github.com/avasilyev/shelfserve/internal/storage"
	"github.com/avasilyev/shelfserve/internal/storage/providers/covershost"
)

// coverCacheControl keeps browsers from hammering the cover endpoint while
// still revalidating via ETag when the image changes.
const coverCacheControl = "public, max-age=3600"

// RemoteStorageSettings resolves whether covers live on a remote host.
type RemoteStorageSettings interface {
	GetRemoteStorageConfig() settingsstore.RemoteStorageConfig
}

// CoversController serves book cover images with cache-friendly identifiers.
// The ETag of a cover is its image ID: the book UUID plus a modification
// timestamp suffix, so clients revalidate cheaply and pick up replaced
// covers without manual cache busting.
type CoversController struct {
	books      CoverBookStore
	cache      *covers.Cache
	remote     storage.Client
	remoteURL  func(path string) string
	settings   RemoteStorageSettings
	libraryDir string
}

// NewCoversController creates a new CoversController. remote may be nil when
// no remote storage host is configured.
func NewCoversController(books CoverBookStore, cache *covers.Cache, remote *covershost.Client, settings RemoteStorageSettings, libraryDir string) *CoversController {
	cc := &CoversController{
		books:      books,
		cache:      cache,
		settings:   settings,
		libraryDir: libraryDir,
	}
	if remote != nil {
		cc.remote = remote
		cc.remoteURL = remote.ObjectURL
	}
	return cc
}

// GetCover serves a book cover image.
// GET /api/books/:uuid/cover
//
// The :uuid parameter may carry a numeric cache-busting suffix appended by
// clients; it is normalized before lookup.
func (cc *CoversController) GetCover(c *gin.Context) {
	bookUUID := covers.NormalizeUUID(c.Param("uuid"))

	book, err := cc.books.GetBookByUUID(bookUUID)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if !book.HasCover && book.CoverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	if cc.useRemoteStorage() {
		cc.serveRemoteCover(c, book)
		return
	}

	cc.serveLocalCover(c, book)
}

// useRemoteStorage reports whether covers should be resolved against the
// remote storage host.
func (cc *CoversController) useRemoteStorage() bool {
	if cc.remote == nil || cc.settings == nil {
		return false
	}
	return cc.settings.GetRemoteStorageConfig().Enabled
}

// serveRemoteCover resolves the cover against the remote storage host. The
// image ID is derived from the object's modification time; if the metadata
// lookup fails the bare UUID is used so the cover still renders.
func (cc *CoversController) serveRemoteCover(c *gin.Context, book *entities.Book) {
	objectPath := remoteCoverPath(book)

	var lastModified time.Time
	meta, err := cc.remote.GetMetadata(c.Request.Context(), objectPath)
	switch {
	case err == nil:
		lastModified = meta.ModifiedAt
	case errors.Is(err, covershost.ErrNotFound):
		// Object missing upstream, fall through with a bare-UUID image ID
	default:
		log.Printf("Cover metadata lookup failed for book %s: %v", book.UUID, err)
	}

	imageID, _ := covers.BuildImageID(book.UUID, true, lastModified, "")
	if cc.writeNotModified(c, imageID) {
		return
	}

	coverURL := cc.remoteURL(objectPath)
	cachePath, err := cc.cache.GetCover(book.UUID, coverURL)
	if err != nil || cachePath == "" {
		// Fallback: let the client fetch from the host directly
		c.Redirect(http.StatusTemporaryRedirect, coverURL)
		return
	}

	cc.setCoverHeaders(c, imageID)
	c.File(cachePath)
}

// serveLocalCover serves a cover from the library directory, falling back to
// the cached remote cover URL if the book has one.
func (cc *CoversController) serveLocalCover(c *gin.Context, book *entities.Book) {
	coverPath := cc.localCoverPath(book)

	imageID, err := covers.BuildImageID(book.UUID, false, time.Time{}, coverPath)
	if err != nil {
		// Stat failed for a reason other than absence; serve with the bare
		// UUID so the response still works, but record the anomaly.
		log.Printf("Cover stat failed for book %s: %v", book.UUID, err)
	}

	if cc.writeNotModified(c, imageID) {
		return
	}

	if coverPath != "" && imageID != book.UUID {
		// Image ID carries an mtime suffix, so the file exists
		cc.setCoverHeaders(c, imageID)
		c.File(coverPath)
		return
	}

	if book.CoverURL != "" {
		cachePath, err := cc.cache.GetCover(book.UUID, book.CoverURL)
		if err != nil || cachePath == "" {
			c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
			return
		}
		cc.setCoverHeaders(c, imageID)
		c.File(cachePath)
		return
	}

	c.Status(http.StatusNotFound)
}

// InvalidateCover drops the cached cover for a book so the next request
// re-fetches it.
// DELETE /api/books/:uuid/cover/cache
func (cc *CoversController) InvalidateCover(c *gin.Context) {
	bookUUID := covers.NormalizeUUID(c.Param("uuid"))

	book, err := cc.books.GetBookByUUID(bookUUID)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	if err := cc.cache.InvalidateCover(book.UUID); err != nil {
		respondInternalError(c, err, "invalidate cover")
		return
	}

	respondSuccess(c, "cover cache invalidated")
}

// localCoverPath returns the expected path of a book's cover file in the
// library directory, or empty when the book has no local cover.
func (cc *CoversController) localCoverPath(book *entities.Book) string {
	if !book.HasCover || book.Path == "" {
		return ""
	}
	return filepath.Join(cc.libraryDir, filepath.Dir(book.Path), "cover.jpg")
}

// writeNotModified responds with 304 when the client already holds the
// current cover. Reports whether the response was written.
func (cc *CoversController) writeNotModified(c *gin.Context, imageID string) bool {
	if match := c.GetHeader("If-None-Match"); match != "" && match == etagFor(imageID) {
		cc.setCoverHeaders(c, imageID)
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

func (cc *CoversController) setCoverHeaders(c *gin.Context, imageID string) {
	c.Header("ETag", etagFor(imageID))
	c.Header("Cache-Control", coverCacheControl)
}

func etagFor(imageID string) string {
	return `"` + imageID + `"`
}

// remoteCoverPath is the object key for a book's cover on the storage host.
func remoteCoverPath(book *entities.Book) string {
	return "covers/" + book.UUID + ".jpg"
}
