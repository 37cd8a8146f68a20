package covers

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache handles local caching of book cover images, keyed by book UUID.
// Identifiers carrying a cache-busting suffix are normalized before lookup so
// "uuid-1700000123" and "uuid" hit the same entry.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new cover cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetCover returns the cached cover for a book, or fetches and caches it if
// not present. Returns the file path to the cached cover, or empty string if
// unavailable.
func (c *Cache) GetCover(bookUUID, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	filename := c.coverFilename(NormalizeUUID(bookUUID), coverURL)
	cachePath := filepath.Join(c.cacheDir, filename)

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(coverURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// CachedPath returns the path of a cached cover if one exists, without
// fetching. The second return value reports whether the entry exists.
func (c *Cache) CachedPath(bookUUID string) (string, bool) {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%s_*", NormalizeUUID(bookUUID)))
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// InvalidateCover removes the cached cover for a book.
func (c *Cache) InvalidateCover(bookUUID string) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("cover_%s_*", NormalizeUUID(bookUUID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// CleanupExcept removes cached covers whose book UUID is not in keep.
// Returns the number of entries removed.
func (c *Cache) CleanupExcept(keep []string) (int, error) {
	keepSet := make(map[string]bool, len(keep))
	for _, u := range keep {
		keepSet[NormalizeUUID(u)] = true
	}

	matches, err := filepath.Glob(filepath.Join(c.cacheDir, "cover_*"))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, match := range matches {
		bookUUID, ok := uuidFromFilename(filepath.Base(match))
		if !ok || keepSet[bookUUID] {
			continue
		}
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// coverFilename generates a unique filename based on book UUID and URL hash.
func (c *Cache) coverFilename(bookUUID, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%s_%x.jpg", bookUUID, hash[:8])
}

// uuidFromFilename extracts the book UUID from a cache entry filename of the
// form "cover_<uuid>_<hash>.jpg".
func uuidFromFilename(name string) (string, bool) {
	trimmed := strings.TrimPrefix(name, "cover_")
	if trimmed == name {
		return "", false
	}
	idx := strings.LastIndex(trimmed, "_")
	if idx <= 0 {
		return "", false
	}
	return trimmed[:idx], true
}

// fetchAndCache downloads a cover image and saves it to the cache.
func (c *Cache) fetchAndCache(url, cachePath string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "ShelfServe/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	_, err = io.Copy(tmpFile, resp.Body)
	if err != nil {
		return err
	}

	tmpFile.Close()

	// Atomic rename
	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
