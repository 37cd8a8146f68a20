package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avasilyev/shelfserve/internal/entities"
)

var (
	ErrShelfNotFound = errors.New("shelf not found")
	ErrShelfExists   = errors.New("shelf already exists")
)

func (d *Database) CreateShelf(name string, userID uint, isPublic bool) (*entities.Shelf, error) {
	var existing entities.Shelf
	err := d.DB.Where("name = ? AND user_id = ?", name, userID).First(&existing).Error
	if err == nil {
		return nil, ErrShelfExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shelf := &entities.Shelf{
		Name:     name,
		UserID:   userID,
		IsPublic: isPublic,
	}
	if err := d.DB.Create(shelf).Error; err != nil {
		return nil, err
	}
	return shelf, nil
}

func (d *Database) GetShelfByID(id uint) (*entities.Shelf, error) {
	var shelf entities.Shelf
	err := d.DB.Preload("Books").First(&shelf, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, err
	}
	return &shelf, nil
}

// GetShelvesForUser returns the user's own shelves plus public ones.
func (d *Database) GetShelvesForUser(userID uint) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	err := d.DB.
		Where("user_id = ? OR is_public = ?", userID, true).
		Order("name ASC").
		Find(&shelves).Error
	return shelves, err
}

func (d *Database) DeleteShelf(id uint) error {
	shelf, err := d.GetShelfByID(id)
	if err != nil {
		return err
	}
	if err := d.DB.Model(shelf).Association("Books").Clear(); err != nil {
		return err
	}
	return d.DB.Delete(shelf).Error
}

func (d *Database) AddBookToShelf(shelfID, bookID uint) error {
	shelf, err := d.GetShelfByID(shelfID)
	if err != nil {
		return err
	}
	book, err := d.GetBookByID(bookID)
	if err != nil {
		return err
	}
	return d.DB.Model(shelf).Association("Books").Append(book)
}

func (d *Database) RemoveBookFromShelf(shelfID, bookID uint) error {
	shelf, err := d.GetShelfByID(shelfID)
	if err != nil {
		return err
	}
	book, err := d.GetBookByID(bookID)
	if err != nil {
		return err
	}
	return d.DB.Model(shelf).Association("Books").Delete(book)
}
