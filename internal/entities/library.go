package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:128" json:"-"`
	Role         UserRole `gorm:"size:20;default:'viewer'" json:"role"`

	// API token (only the hash is stored)
	TokenHash      string     `gorm:"index;size:64" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`

	// Login tracking and lockout
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Book is a single e-book in the library. UUID is the stable identifier
// embedded in cover URLs and Kobo sync payloads; Path is relative to the
// configured library directory.
type Book struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UUID            string `gorm:"uniqueIndex;size:36" json:"uuid"`
	Title           string `gorm:"index;size:512" json:"title"`
	Author          string `gorm:"index;size:256" json:"author"`
	ISBN            string `gorm:"index;size:20" json:"isbn,omitempty"`
	Publisher       string `gorm:"size:256" json:"publisher,omitempty"`
	PublicationYear int    `json:"publication_year,omitempty"`
	Language        string `gorm:"size:10" json:"language,omitempty"`

	Path     string `gorm:"size:1024" json:"path,omitempty"`
	FileHash string `gorm:"index;size:64" json:"file_hash,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Format   string `gorm:"size:16" json:"format,omitempty"`

	// Cover metadata. HasCover means a cover file exists next to the book in
	// the library; CoverURL points at the remote storage object when covers
	// are hosted externally.
	HasCover bool   `gorm:"default:false" json:"has_cover"`
	CoverURL string `gorm:"size:2048" json:"cover_url,omitempty"`

	Shelves []Shelf `gorm:"many2many:shelf_books;" json:"shelves,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Shelf is a named collection of books owned by a user.
type Shelf struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index" json:"user_id"`
	Name     string `gorm:"size:256" json:"name"`
	IsPublic bool   `gorm:"default:false" json:"is_public"`

	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Books []Book `gorm:"many2many:shelf_books;" json:"books,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// KoboDevice holds the per-device sync token a Kobo reader presents in the
// URL path of sync requests.
type KoboDevice struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index" json:"user_id"`
	Token      string     `gorm:"uniqueIndex;size:64" json:"-"`
	DeviceName string     `gorm:"size:256" json:"device_name,omitempty"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
