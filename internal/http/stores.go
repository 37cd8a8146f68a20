package http

import "github.com/avasilyev/shelfserve/internal/entities"

// This file consolidates the store interface definitions used by HTTP
// controllers. Each controller depends only on the methods it actually uses.

// BookStore provides book access for the books controller.
type BookStore interface {
	GetBookByUUID(bookUUID string) (*entities.Book, error)
	GetAllBooks(limit, offset int) ([]entities.Book, int64, error)
	SearchBooks(query string, limit int) ([]entities.Book, error)
	GetBookStats() (totalBooks int64, withCovers int64, err error)
	SetBookCover(id uint, hasCover bool, coverURL string) error
	DeleteBook(id uint) error
}

// CoverBookStore is the minimal book access the covers controller needs.
type CoverBookStore interface {
	GetBookByUUID(bookUUID string) (*entities.Book, error)
}

// ShelfStore provides shelf management for the shelves controller.
type ShelfStore interface {
	CreateShelf(name string, userID uint, isPublic bool) (*entities.Shelf, error)
	GetShelfByID(id uint) (*entities.Shelf, error)
	GetShelvesForUser(userID uint) ([]entities.Shelf, error)
	DeleteShelf(id uint) error
	AddBookToShelf(shelfID, bookID uint) error
	RemoveBookFromShelf(shelfID, bookID uint) error
	GetBookByUUID(bookUUID string) (*entities.Book, error)
}

// KoboStore provides device and book access for the Kobo sync controller.
type KoboStore interface {
	RegisterKoboDevice(userID uint, deviceName string) (*entities.KoboDevice, error)
	GetKoboDeviceByToken(token string) (*entities.KoboDevice, error)
	GetKoboDevicesForUser(userID uint) ([]entities.KoboDevice, error)
	TouchKoboDevice(id uint) error
	DeleteKoboDevice(id uint, userID uint) error
	GetAllBooks(limit, offset int) ([]entities.Book, int64, error)
	GetBookByUUID(bookUUID string) (*entities.Book, error)
}
