package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilyev/shelfserve/internal/database"
	"github.com/avasilyev/shelfserve/internal/entities"
)

func setupBooksTest(t *testing.T) (*database.Database, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	controller := NewBooksController(db)

	router := gin.New()
	router.GET("/api/books", controller.ListBooks)
	router.GET("/api/books/search", controller.SearchBooks)
	router.GET("/api/books/stats", controller.GetBookStats)
	router.GET("/api/books/:uuid", controller.GetBook)
	router.PATCH("/api/books/:uuid/cover", controller.UpdateCover)
	router.DELETE("/api/books/:uuid", controller.DeleteBook)

	return db, router
}

func seedBook(t *testing.T, db *database.Database, bookUUID, title, author string) *entities.Book {
	t.Helper()
	book := &entities.Book{
		UUID:   bookUUID,
		Title:  title,
		Author: author,
		Path:   strings.ToLower(strings.ReplaceAll(title, " ", "-")) + ".epub",
	}
	require.NoError(t, db.SaveBook(book))
	return book
}

func TestBooksController_ListBooks(t *testing.T) {
	t.Run("returns empty page when no books", func(t *testing.T) {
		_, router := setupBooksTest(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(0), response.Total)
		assert.False(t, response.HasMore)
	})

	t.Run("paginates results", func(t *testing.T) {
		db, router := setupBooksTest(t)
		seedBook(t, db, "11111111-1111-4111-8111-111111111111", "Book One", "Author A")
		seedBook(t, db, "22222222-2222-4222-8222-222222222222", "Book Two", "Author B")
		seedBook(t, db, "33333333-3333-4333-8333-333333333333", "Book Three", "Author C")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books?limit=2&offset=0", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response PaginatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, int64(3), response.Total)
		assert.Equal(t, 2, response.Limit)
		assert.True(t, response.HasMore)
	})
}

func TestBooksController_GetBook(t *testing.T) {
	t.Run("returns book by uuid", func(t *testing.T) {
		db, router := setupBooksTest(t)
		seedBook(t, db, "11111111-1111-4111-8111-111111111111", "Book One", "Author A")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/11111111-1111-4111-8111-111111111111", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var book entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, "Book One", book.Title)
	})

	t.Run("normalizes suffixed uuid", func(t *testing.T) {
		db, router := setupBooksTest(t)
		seedBook(t, db, "11111111-1111-4111-8111-111111111111", "Book One", "Author A")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/11111111-1111-4111-8111-111111111111-1700000123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown uuid returns 404", func(t *testing.T) {
		_, router := setupBooksTest(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/99999999-9999-4999-8999-999999999999", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_SearchBooks(t *testing.T) {
	t.Run("requires query parameter", func(t *testing.T) {
		_, router := setupBooksTest(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/search", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("matches title substring", func(t *testing.T) {
		db, router := setupBooksTest(t)
		seedBook(t, db, "11111111-1111-4111-8111-111111111111", "The Go Programming Language", "Donovan")
		seedBook(t, db, "22222222-2222-4222-8222-222222222222", "Learning Python", "Lutz")

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/search?q=Go", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Books []entities.Book `json:"books"`
			Count int             `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "The Go Programming Language", response.Books[0].Title)
	})
}

func TestBooksController_UpdateCover(t *testing.T) {
	db, router := setupBooksTest(t)
	book := seedBook(t, db, "11111111-1111-4111-8111-111111111111", "Book One", "Author A")

	body := strings.NewReader(`{"has_cover": true, "cover_url": "https://covers.example.com/1.jpg"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/api/books/"+book.UUID+"/cover", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	updated, err := db.GetBookByUUID(book.UUID)
	require.NoError(t, err)
	assert.True(t, updated.HasCover)
	assert.Equal(t, "https://covers.example.com/1.jpg", updated.CoverURL)
}

func TestBooksController_DeleteBook(t *testing.T) {
	db, router := setupBooksTest(t)
	book := seedBook(t, db, "11111111-1111-4111-8111-111111111111", "Book One", "Author A")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/books/"+book.UUID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	_, err := db.GetBookByUUID(book.UUID)
	assert.ErrorIs(t, err, database.ErrBookNotFound)
}
