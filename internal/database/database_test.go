package database

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilyev/shelfserve/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestBook(title, author string) *entities.Book {
	return &entities.Book{
		UUID:   uuid.NewString(),
		Title:  title,
		Author: author,
		Path:   author + "/" + title + "/" + title + ".epub",
		Format: "epub",
	}
}

func TestSaveBook_CreatesAndUpserts(t *testing.T) {
	db := setupTestDB(t)

	book := newTestBook("The Dispossessed", "Ursula K. Le Guin")
	require.NoError(t, db.SaveBook(book))
	assert.NotZero(t, book.ID)

	// Saving again with the same UUID updates in place
	book.Title = "The Dispossessed: An Ambiguous Utopia"
	require.NoError(t, db.SaveBook(book))

	got, err := db.GetBookByUUID(book.UUID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, got.ID)
	assert.Equal(t, "The Dispossessed: An Ambiguous Utopia", got.Title)

	_, total, err := db.GetAllBooks(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSaveBook_DeduplicatesByPath(t *testing.T) {
	db := setupTestDB(t)

	book := newTestBook("Hyperion", "Dan Simmons")
	require.NoError(t, db.SaveBook(book))

	// A rescan of the library produces a fresh UUID but the same path
	rescanned := newTestBook("Hyperion", "Dan Simmons")
	rescanned.Path = book.Path
	require.NoError(t, db.SaveBook(rescanned))

	assert.Equal(t, book.ID, rescanned.ID)
}

func TestGetBookByUUID_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBookByUUID(uuid.NewString())
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSetBookCover(t *testing.T) {
	db := setupTestDB(t)

	book := newTestBook("Solaris", "Stanislaw Lem")
	require.NoError(t, db.SaveBook(book))

	require.NoError(t, db.SetBookCover(book.ID, true, "https://covers.example.com/solaris.jpg"))

	got, err := db.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.True(t, got.HasCover)
	assert.Equal(t, "https://covers.example.com/solaris.jpg", got.CoverURL)

	err = db.SetBookCover(99999, true, "")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestShelves(t *testing.T) {
	db := setupTestDB(t)

	book := newTestBook("Blindsight", "Peter Watts")
	require.NoError(t, db.SaveBook(book))

	shelf, err := db.CreateShelf("To Read", 1, false)
	require.NoError(t, err)

	_, err = db.CreateShelf("To Read", 1, false)
	assert.ErrorIs(t, err, ErrShelfExists)

	require.NoError(t, db.AddBookToShelf(shelf.ID, book.ID))

	got, err := db.GetShelfByID(shelf.ID)
	require.NoError(t, err)
	require.Len(t, got.Books, 1)
	assert.Equal(t, book.UUID, got.Books[0].UUID)

	require.NoError(t, db.RemoveBookFromShelf(shelf.ID, book.ID))
	got, err = db.GetShelfByID(shelf.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Books)

	require.NoError(t, db.DeleteShelf(shelf.ID))
	_, err = db.GetShelfByID(shelf.ID)
	assert.ErrorIs(t, err, ErrShelfNotFound)
}

func TestGetShelvesForUser_IncludesPublic(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.CreateShelf("Mine", 1, false)
	require.NoError(t, err)
	_, err = db.CreateShelf("Theirs Private", 2, false)
	require.NoError(t, err)
	_, err = db.CreateShelf("Theirs Public", 2, true)
	require.NoError(t, err)

	shelves, err := db.GetShelvesForUser(1)
	require.NoError(t, err)
	names := make([]string, 0, len(shelves))
	for _, s := range shelves {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Mine", "Theirs Public"}, names)
}

func TestKoboDevices(t *testing.T) {
	db := setupTestDB(t)

	device, err := db.RegisterKoboDevice(1, "Kobo Libra 2")
	require.NoError(t, err)
	assert.Len(t, device.Token, 64)

	got, err := db.GetKoboDeviceByToken(device.Token)
	require.NoError(t, err)
	assert.Equal(t, device.ID, got.ID)

	_, err = db.GetKoboDeviceByToken("bogus")
	assert.ErrorIs(t, err, ErrKoboDeviceNotFound)

	require.NoError(t, db.TouchKoboDevice(device.ID))
	got, err = db.GetKoboDeviceByToken(device.Token)
	require.NoError(t, err)
	assert.NotNil(t, got.LastSyncAt)

	// Deleting with the wrong user must not succeed
	err = db.DeleteKoboDevice(device.ID, 2)
	assert.ErrorIs(t, err, ErrKoboDeviceNotFound)

	require.NoError(t, db.DeleteKoboDevice(device.ID, 1))
}

func TestSettings(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSetting(entities.SettingKeyCoverCleanupSchedule)
	assert.Error(t, err)

	require.NoError(t, db.SetSetting(entities.SettingKeyCoverCleanupSchedule, "0 4 * * *"))
	setting, err := db.GetSetting(entities.SettingKeyCoverCleanupSchedule)
	require.NoError(t, err)
	assert.Equal(t, "0 4 * * *", setting.Value)

	require.NoError(t, db.SetSetting(entities.SettingKeyCoverCleanupSchedule, "30 4 * * *"))
	setting, err = db.GetSetting(entities.SettingKeyCoverCleanupSchedule)
	require.NoError(t, err)
	assert.Equal(t, "30 4 * * *", setting.Value)

	require.NoError(t, db.DeleteSetting(entities.SettingKeyCoverCleanupSchedule))
}
