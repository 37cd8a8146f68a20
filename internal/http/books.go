package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/database"
)

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{
		store: store,
	}
}

// ListBooks returns a paginated list of books.
// GET /api/books
func (controller *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c, 50, 200)

	books, total, err := controller.store.GetAllBooks(limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    books,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(books)) < total,
	})
}

// GetBook returns a single book by UUID.
// GET /api/books/:uuid
func (controller *BooksController) GetBook(c *gin.Context) {
	bookUUID := covers.NormalizeUUID(c.Param("uuid"))

	book, err := controller.store.GetBookByUUID(bookUUID)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	c.JSON(http.StatusOK, book)
}

// SearchBooks searches books by title, author or ISBN.
// GET /api/books/search?q=...
func (controller *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	limit, _ := parsePagination(c, 25, 100)

	books, err := controller.store.SearchBooks(query, limit)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBookStats returns aggregate library statistics.
// GET /api/books/stats
func (controller *BooksController) GetBookStats(c *gin.Context) {
	totalBooks, withCovers, err := controller.store.GetBookStats()
	if err != nil {
		respondInternalError(c, err, "book stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_books": totalBooks,
		"with_covers": withCovers,
	})
}

type updateCoverRequest struct {
	HasCover bool   `json:"has_cover"`
	CoverURL string `json:"cover_url"`
}

// UpdateCover sets a book's cover metadata.
// PATCH /api/books/:uuid/cover
func (controller *BooksController) UpdateCover(c *gin.Context) {
	bookUUID := covers.NormalizeUUID(c.Param("uuid"))

	book, err := controller.store.GetBookByUUID(bookUUID)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	var req updateCoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := controller.store.SetBookCover(book.ID, req.HasCover, req.CoverURL); err != nil {
		respondInternalError(c, err, "update cover")
		return
	}

	respondSuccess(c, "cover updated")
}

// DeleteBook removes a book from the library.
// DELETE /api/books/:uuid
func (controller *BooksController) DeleteBook(c *gin.Context) {
	bookUUID := covers.NormalizeUUID(c.Param("uuid"))

	book, err := controller.store.GetBookByUUID(bookUUID)
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	if err := controller.store.DeleteBook(book.ID); err != nil {
		if err == database.ErrBookNotFound {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}
