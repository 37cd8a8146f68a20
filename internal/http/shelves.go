package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasilyev/shelfserve/internal/covers"
	"github.com/avasilyev/shelfserve/internal/database"
)

type ShelvesController struct {
	store ShelfStore
}

func NewShelvesController(store ShelfStore) *ShelvesController {
	return &ShelvesController{
		store: store,
	}
}

type createShelfRequest struct {
	Name     string `json:"name" binding:"required"`
	IsPublic bool   `json:"is_public"`
}

// CreateShelf creates a new shelf for the current user.
// POST /api/shelves
func (controller *ShelvesController) CreateShelf(c *gin.Context) {
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	shelf, err := controller.store.CreateShelf(req.Name, GetUserID(c), req.IsPublic)
	if err != nil {
		if err == database.ErrShelfExists {
			respondError(c, http.StatusConflict, "shelf already exists")
			return
		}
		respondInternalError(c, err, "create shelf")
		return
	}

	respondCreated(c, shelf)
}

// ListShelves returns the current user's shelves plus public ones.
// GET /api/shelves
func (controller *ShelvesController) ListShelves(c *gin.Context) {
	shelves, err := controller.store.GetShelvesForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list shelves")
		return
	}

	c.JSON(http.StatusOK, gin.H{"shelves": shelves, "count": len(shelves)})
}

// GetShelf returns a shelf with its books.
// GET /api/shelves/:id
func (controller *ShelvesController) GetShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shelf, err := controller.store.GetShelfByID(id)
	if err != nil {
		respondNotFound(c, "shelf")
		return
	}

	if !controller.canView(c, shelf.UserID, shelf.IsPublic) {
		respondError(c, http.StatusForbidden, "shelf is private")
		return
	}

	c.JSON(http.StatusOK, shelf)
}

// DeleteShelf removes a shelf. Books on the shelf are not deleted.
// DELETE /api/shelves/:id
func (controller *ShelvesController) DeleteShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shelf, err := controller.store.GetShelfByID(id)
	if err != nil {
		respondNotFound(c, "shelf")
		return
	}

	if !controller.canModify(c, shelf.UserID) {
		respondError(c, http.StatusForbidden, "not your shelf")
		return
	}

	if err := controller.store.DeleteShelf(id); err != nil {
		respondInternalError(c, err, "delete shelf")
		return
	}

	respondSuccess(c, "shelf deleted")
}

type shelfBookRequest struct {
	BookUUID string `json:"book_uuid" binding:"required"`
}

// AddBook places a book on a shelf.
// POST /api/shelves/:id/books
func (controller *ShelvesController) AddBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req shelfBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_uuid is required")
		return
	}

	shelf, err := controller.store.GetShelfByID(id)
	if err != nil {
		respondNotFound(c, "shelf")
		return
	}

	if !controller.canModify(c, shelf.UserID) {
		respondError(c, http.StatusForbidden, "not your shelf")
		return
	}

	book, err := controller.store.GetBookByUUID(covers.NormalizeUUID(req.BookUUID))
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	if err := controller.store.AddBookToShelf(id, book.ID); err != nil {
		respondInternalError(c, err, "add book to shelf")
		return
	}

	respondSuccess(c, "book added to shelf")
}

// RemoveBook takes a book off a shelf.
// DELETE /api/shelves/:id/books/:uuid
func (controller *ShelvesController) RemoveBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shelf, err := controller.store.GetShelfByID(id)
	if err != nil {
		respondNotFound(c, "shelf")
		return
	}

	if !controller.canModify(c, shelf.UserID) {
		respondError(c, http.StatusForbidden, "not your shelf")
		return
	}

	book, err := controller.store.GetBookByUUID(covers.NormalizeUUID(c.Param("uuid")))
	if err != nil {
		respondNotFound(c, "book")
		return
	}

	if err := controller.store.RemoveBookFromShelf(id, book.ID); err != nil {
		respondInternalError(c, err, "remove book from shelf")
		return
	}

	respondSuccess(c, "book removed from shelf")
}

// canView allows owners and anyone when the shelf is public. User ID 0 means
// auth is disabled, which implies a single trusted user.
func (controller *ShelvesController) canView(c *gin.Context, ownerID uint, isPublic bool) bool {
	userID := GetUserID(c)
	return isPublic || userID == ownerID || userID == 0
}

func (controller *ShelvesController) canModify(c *gin.Context, ownerID uint) bool {
	userID := GetUserID(c)
	return userID == ownerID || userID == 0
}
