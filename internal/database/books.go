package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avasilyev/shelfserve/internal/entities"
)

var ErrBookNotFound = errors.New("book not found")

func (d *Database) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Preload("Shelves").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetBookByUUID(bookUUID string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Where("uuid = ?", bookUUID).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetBookByPath(path string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Where("path = ?", path).First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetAllBooks(limit, offset int) ([]entities.Book, int64, error) {
	var total int64
	if err := d.DB.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := d.DB.Order("author ASC, title ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var books []entities.Book
	err := query.Find(&books).Error
	return books, total, err
}

func (d *Database) SearchBooks(query string, limit int) ([]entities.Book, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + query + "%"
	var books []entities.Book
	err := d.DB.
		Where("title LIKE ? OR author LIKE ?", pattern, pattern).
		Order("author ASC, title ASC").
		Limit(limit).
		Find(&books).Error
	return books, err
}

// SaveBook upserts a book, deduplicating by UUID first and library path second.
func (d *Database) SaveBook(book *entities.Book) error {
	var existing entities.Book
	result := d.DB.Where("uuid = ?", book.UUID).First(&existing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) && book.Path != "" {
		result = d.DB.Where("path = ?", book.Path).First(&existing)
	}

	if result.Error == nil {
		book.ID = existing.ID
		return d.DB.Save(book).Error
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return d.DB.Create(book).Error
}

func (d *Database) DeleteBook(id uint) error {
	result := d.DB.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (d *Database) SetBookCover(id uint, hasCover bool, coverURL string) error {
	result := d.DB.Model(&entities.Book{}).Where("id = ?", id).Updates(map[string]any{
		"has_cover": hasCover,
		"cover_url": coverURL,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update book cover: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetBookUUIDs returns the UUIDs of all non-deleted books. Used by the cover
// cache cleanup task to evict entries for books that no longer exist.
func (d *Database) GetBookUUIDs() ([]string, error) {
	var uuids []string
	err := d.DB.Model(&entities.Book{}).Pluck("uuid", &uuids).Error
	return uuids, err
}

// GetBooksWithCovers returns all books that have a cover, for cache warming.
func (d *Database) GetBooksWithCovers() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Where("has_cover = ? OR cover_url <> ''", true).Find(&books).Error
	return books, err
}

func (d *Database) GetBookStats() (totalBooks int64, withCovers int64, err error) {
	if err = d.DB.Model(&entities.Book{}).Count(&totalBooks).Error; err != nil {
		return 0, 0, err
	}
	err = d.DB.Model(&entities.Book{}).Where("has_cover = ?", true).Count(&withCovers).Error
	return totalBooks, withCovers, err
}
